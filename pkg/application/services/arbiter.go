package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/VincentNinIA/butv2/pkg/application/dto"
	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

// AlternativeArbiter chooses among already-filtered alternatives. It is
// advisory only; implementations must degrade rather than fail, so the
// orchestrator always receives a decision.
type AlternativeArbiter interface {
	Arbitrate(
		ctx context.Context,
		original *entities.Product,
		problem entities.ProblemType,
		requested entities.Quantity,
		shortlist []entities.AlternativeCandidate,
	) dto.Arbitration
}

// RuleBasedArbiter picks the top-scored candidate. It is the default and
// the fallback when the model-backed arbiter is unavailable.
type RuleBasedArbiter struct{}

// Verify interface compliance
var _ AlternativeArbiter = (*RuleBasedArbiter)(nil)

func NewRuleBasedArbiter() *RuleBasedArbiter {
	return &RuleBasedArbiter{}
}

func (a *RuleBasedArbiter) Arbitrate(
	_ context.Context,
	_ *entities.Product,
	_ entities.ProblemType,
	_ entities.Quantity,
	shortlist []entities.AlternativeCandidate,
) dto.Arbitration {
	if len(shortlist) == 0 {
		return dto.Arbitration{
			Reason:    "no alternative passed the similarity floor",
			RuleBased: true,
		}
	}
	top := shortlist[0]
	return dto.Arbitration{
		Selected:   &top,
		Reason:     fmt.Sprintf("highest composite score (%.2f)", top.CompositeScore),
		Confidence: top.CompositeScore,
		RuleBased:  true,
	}
}

// ChatFunc sends one prompt to the language-model collaborator and returns
// its raw answer.
type ChatFunc func(ctx context.Context, prompt string) (string, error)

// modelAnswer is the JSON shape the model is asked to produce.
type modelAnswer struct {
	Selected   string  `json:"selected"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// ModelArbiter asks the language-model collaborator to pick among the
// shortlist. Any failure, timeout or unmatchable answer falls back to the
// rule-based decision with the fallback reason recorded.
type ModelArbiter struct {
	chat     ChatFunc
	timeout  time.Duration
	fallback *RuleBasedArbiter
}

// Verify interface compliance
var _ AlternativeArbiter = (*ModelArbiter)(nil)

func NewModelArbiter(chat ChatFunc, timeout time.Duration) *ModelArbiter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ModelArbiter{
		chat:     chat,
		timeout:  timeout,
		fallback: NewRuleBasedArbiter(),
	}
}

func (a *ModelArbiter) Arbitrate(
	ctx context.Context,
	original *entities.Product,
	problem entities.ProblemType,
	requested entities.Quantity,
	shortlist []entities.AlternativeCandidate,
) dto.Arbitration {
	if len(shortlist) == 0 || a.chat == nil {
		return a.fallback.Arbitrate(ctx, original, problem, requested, shortlist)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	answer, err := a.chat(callCtx, buildArbitrationPrompt(original, problem, requested, shortlist))
	if err != nil {
		log.Printf("model arbiter: call failed, using rule-based ranking: %v", err)
		return a.fallbackWithReason(ctx, original, problem, requested, shortlist,
			"model unavailable, rule-based ranking used")
	}

	var parsed modelAnswer
	if err := json.Unmarshal([]byte(extractJSON(answer)), &parsed); err != nil {
		log.Printf("model arbiter: unparsable answer, using rule-based ranking: %v", err)
		return a.fallbackWithReason(ctx, original, problem, requested, shortlist,
			"model answer unparsable, rule-based ranking used")
	}

	if strings.EqualFold(strings.TrimSpace(parsed.Selected), "none") {
		return dto.Arbitration{
			Reason:     nonEmpty(parsed.Reason, "model declined every alternative"),
			Confidence: parsed.Confidence,
		}
	}

	selected := matchCandidate(parsed.Selected, shortlist)
	if selected == nil {
		return a.fallbackWithReason(ctx, original, problem, requested, shortlist,
			"model answer did not match the shortlist, rule-based ranking used")
	}

	return dto.Arbitration{
		Selected:   selected,
		Reason:     nonEmpty(parsed.Reason, "selected by advisory model"),
		Confidence: parsed.Confidence,
	}
}

func (a *ModelArbiter) fallbackWithReason(
	ctx context.Context,
	original *entities.Product,
	problem entities.ProblemType,
	requested entities.Quantity,
	shortlist []entities.AlternativeCandidate,
	reason string,
) dto.Arbitration {
	decision := a.fallback.Arbitrate(ctx, original, problem, requested, shortlist)
	decision.Reason = reason
	return decision
}

func buildArbitrationPrompt(
	original *entities.Product,
	problem entities.ProblemType,
	requested entities.Quantity,
	shortlist []entities.AlternativeCandidate,
) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A customer ordered %d units of %s (%s) but the line cannot be fulfilled (%s).\n",
		requested, original.Name, original.ID, problem)
	b.WriteString("Pick the best substitute from this shortlist, or answer \"none\".\n\n")
	for i, c := range shortlist {
		fmt.Fprintf(&b, "%d. %s (%s) similarity=%.2f margin_ok=%t stock_ok=%t score=%.2f\n",
			i+1, c.Product.Name, c.Product.ID,
			c.TechnicalSimilarity, c.MarginSufficient, c.StockSufficient, c.CompositeScore)
	}
	b.WriteString("\nAnswer with JSON only: {\"selected\": \"<product id or none>\", \"reason\": \"...\", \"confidence\": 0.0}\n")
	return b.String()
}

// matchCandidate resolves the model's answer back to a shortlisted
// candidate by identifier or name, case-insensitively.
func matchCandidate(answer string, shortlist []entities.AlternativeCandidate) *entities.AlternativeCandidate {
	needle := strings.ToLower(strings.TrimSpace(answer))
	if needle == "" {
		return nil
	}
	for i := range shortlist {
		c := &shortlist[i]
		if strings.EqualFold(strings.TrimSpace(string(c.Product.ID)), needle) ||
			strings.EqualFold(strings.TrimSpace(c.Product.Name), needle) {
			return c
		}
	}
	return nil
}

// extractJSON tolerates answers that wrap the JSON object in prose or
// markdown fences.
func extractJSON(answer string) string {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start == -1 || end == -1 || end < start {
		return answer
	}
	return answer[start : end+1]
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
