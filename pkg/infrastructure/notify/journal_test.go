package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

func TestJournal_EscalateStampsNotice(t *testing.T) {
	j := NewJournal()

	err := j.Escalate(entities.EscalationNotice{
		Problem:           entities.ProblemShortage,
		ProductID:         "A1",
		ProductName:       "Caisse",
		RequestedQuantity: 300,
		Deficit:           100,
	})
	if err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}

	notices := j.Notices()
	if len(notices) != 1 {
		t.Fatalf("journal holds %d notices, want 1", len(notices))
	}
	if notices[0].ID == "" {
		t.Error("notice ID was not assigned")
	}
	if notices[0].RaisedAt.IsZero() {
		t.Error("notice timestamp was not assigned")
	}
}

func TestJournal_PreservesExplicitStamps(t *testing.T) {
	j := NewJournal()
	raised := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := j.Escalate(entities.EscalationNotice{
		ID:       "notice-1",
		Problem:  entities.ProblemUnknownProduct,
		RaisedAt: raised,
	}); err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}

	got := j.Notices()[0]
	if got.ID != "notice-1" {
		t.Errorf("notice ID = %q, want notice-1", got.ID)
	}
	if !got.RaisedAt.Equal(raised) {
		t.Errorf("notice RaisedAt = %v, want %v", got.RaisedAt, raised)
	}
}

func TestJournal_SubscriberFanOut(t *testing.T) {
	j := NewJournal()

	var received []entities.EscalationNotice
	j.Subscribe(func(n entities.EscalationNotice) error {
		received = append(received, n)
		return nil
	})
	// A failing subscriber must not block the journal or other handlers.
	j.Subscribe(func(n entities.EscalationNotice) error {
		return errors.New("smtp relay down")
	})

	if err := j.Escalate(entities.EscalationNotice{Problem: entities.ProblemDelayExceeded}); err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("subscriber received %d notices, want 1", len(received))
	}
	if len(j.Notices()) != 1 {
		t.Errorf("journal holds %d notices, want 1", len(j.Notices()))
	}
}
