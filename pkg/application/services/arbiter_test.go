package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

func buildShortlist(t *testing.T) []entities.AlternativeCandidate {
	t.Helper()
	return []entities.AlternativeCandidate{
		{
			Product:             buildProduct(t, "ALT-1", "CAISSE CARTON 400X300", 500, 0, 0, 1, "2 semaines"),
			TechnicalSimilarity: 0.8,
			Margin:              decimal.NewFromFloat(0.15),
			MarginSufficient:    true,
			StockSufficient:     true,
			CompositeScore:      0.85,
		},
		{
			Product:             buildProduct(t, "ALT-2", "CAISSE CARTON 300X200", 100, 0, 0, 1, "2 semaines"),
			TechnicalSimilarity: 0.6,
			CompositeScore:      0.55,
		},
	}
}

func TestRuleBasedArbiter_PicksTopCandidate(t *testing.T) {
	arbiter := NewRuleBasedArbiter()
	original := buildProduct(t, "ORIG", "CAISSE US SC", 0, 0, 0, 1, "2 semaines")

	decision := arbiter.Arbitrate(context.Background(), original, entities.ProblemShortage, 50, buildShortlist(t))

	if decision.Selected == nil || decision.Selected.Product.ID != "ALT-1" {
		t.Fatalf("selected = %+v, want top-scored ALT-1", decision.Selected)
	}
	if !decision.RuleBased {
		t.Error("decision must be flagged rule-based")
	}
}

func TestRuleBasedArbiter_EmptyShortlist(t *testing.T) {
	arbiter := NewRuleBasedArbiter()
	original := buildProduct(t, "ORIG", "CAISSE US SC", 0, 0, 0, 1, "2 semaines")

	decision := arbiter.Arbitrate(context.Background(), original, entities.ProblemShortage, 50, nil)
	if decision.Selected != nil {
		t.Error("empty shortlist must select nothing")
	}
	if decision.Reason == "" {
		t.Error("decision must carry a reason")
	}
}

func TestModelArbiter_AcceptsMatchedAnswer(t *testing.T) {
	chat := func(ctx context.Context, prompt string) (string, error) {
		return `The best fit is: {"selected": "alt-2", "reason": "closer dimensions", "confidence": 0.8}`, nil
	}
	arbiter := NewModelArbiter(chat, 0)
	original := buildProduct(t, "ORIG", "CAISSE US SC", 0, 0, 0, 1, "2 semaines")

	decision := arbiter.Arbitrate(context.Background(), original, entities.ProblemShortage, 50, buildShortlist(t))

	if decision.Selected == nil || decision.Selected.Product.ID != "ALT-2" {
		t.Fatalf("selected = %+v, want ALT-2", decision.Selected)
	}
	if decision.RuleBased {
		t.Error("a matched model answer is not rule-based")
	}
	if decision.Reason != "closer dimensions" || decision.Confidence != 0.8 {
		t.Errorf("reason=%q confidence=%v", decision.Reason, decision.Confidence)
	}
}

func TestModelArbiter_NoneIsRespected(t *testing.T) {
	chat := func(ctx context.Context, prompt string) (string, error) {
		return `{"selected": "none", "reason": "nothing interchangeable", "confidence": 0.9}`, nil
	}
	arbiter := NewModelArbiter(chat, 0)
	original := buildProduct(t, "ORIG", "CAISSE US SC", 0, 0, 0, 1, "2 semaines")

	decision := arbiter.Arbitrate(context.Background(), original, entities.ProblemShortage, 50, buildShortlist(t))
	if decision.Selected != nil {
		t.Errorf("model declined but %s was selected", decision.Selected.Product.ID)
	}
}

func TestModelArbiter_FallsBackOnCallFailure(t *testing.T) {
	chat := func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model timed out")
	}
	arbiter := NewModelArbiter(chat, 0)
	original := buildProduct(t, "ORIG", "CAISSE US SC", 0, 0, 0, 1, "2 semaines")

	decision := arbiter.Arbitrate(context.Background(), original, entities.ProblemShortage, 50, buildShortlist(t))

	if decision.Selected == nil || decision.Selected.Product.ID != "ALT-1" {
		t.Fatalf("fallback selected = %+v, want rule-based ALT-1", decision.Selected)
	}
	if !decision.RuleBased {
		t.Error("fallback decision must be flagged rule-based")
	}
}

func TestModelArbiter_FallsBackOnUnmatchableAnswer(t *testing.T) {
	chat := func(ctx context.Context, prompt string) (string, error) {
		return `{"selected": "PRODUIT-INVENTE", "reason": "?", "confidence": 0.2}`, nil
	}
	arbiter := NewModelArbiter(chat, 0)
	original := buildProduct(t, "ORIG", "CAISSE US SC", 0, 0, 0, 1, "2 semaines")

	decision := arbiter.Arbitrate(context.Background(), original, entities.ProblemShortage, 50, buildShortlist(t))

	if decision.Selected == nil || decision.Selected.Product.ID != "ALT-1" {
		t.Fatalf("fallback selected = %+v, want rule-based ALT-1", decision.Selected)
	}
	if !decision.RuleBased {
		t.Error("fallback decision must be flagged rule-based")
	}
}

func TestModelArbiter_MatchesByName(t *testing.T) {
	chat := func(ctx context.Context, prompt string) (string, error) {
		return `{"selected": "CAISSE CARTON 300X200", "reason": "format", "confidence": 0.7}`, nil
	}
	arbiter := NewModelArbiter(chat, 0)
	original := buildProduct(t, "ORIG", "CAISSE US SC", 0, 0, 0, 1, "2 semaines")

	decision := arbiter.Arbitrate(context.Background(), original, entities.ProblemShortage, 50, buildShortlist(t))
	if decision.Selected == nil || decision.Selected.Product.ID != "ALT-2" {
		t.Fatalf("selected = %+v, want ALT-2 matched by name", decision.Selected)
	}
}
