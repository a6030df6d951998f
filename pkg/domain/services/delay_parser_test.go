package services

import (
	"testing"
	"time"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

func TestDelayParser_Parse(t *testing.T) {
	parser := NewDelayParser()

	testCases := []struct {
		name      string
		text      string
		wantKind  entities.DelayKind
		wantWeeks int
		wantCond  string
	}{
		{"fixed plural", "4 weeks", entities.DelayKindFixed, 4, ""},
		{"fixed singular", "1 week", entities.DelayKindFixed, 1, ""},
		{"fixed french", "3 semaines", entities.DelayKindFixed, 3, ""},
		{"fixed french singular", "10 semaine", entities.DelayKindFixed, 10, ""},
		{"fixed uppercase", "2 WEEKS", entities.DelayKindFixed, 2, ""},
		{"fixed padded", "  5 weeks  ", entities.DelayKindFixed, 5, ""},
		{"conditional", "2 weeks after proof approval", entities.DelayKindConditional, 2, "proof approval"},
		{"conditional french", "2 semaines après validation bat", entities.DelayKindConditional, 2, "validation bat"},
		{"conditional no accent", "2 semaines apres validation bat", entities.DelayKindConditional, 2, "validation bat"},
		{"invalid free text", "whenever the supplier feels like it", entities.DelayKindInvalid, 0, ""},
		{"invalid empty", "", entities.DelayKindInvalid, 0, ""},
		{"invalid missing number", "weeks", entities.DelayKindInvalid, 0, ""},
		{"invalid days unit", "4 days", entities.DelayKindInvalid, 0, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := parser.Parse(tc.text)
			if got.Kind != tc.wantKind {
				t.Errorf("Expected kind %s, got %s", tc.wantKind, got.Kind)
			}
			if got.Weeks != tc.wantWeeks {
				t.Errorf("Expected %d weeks, got %d", tc.wantWeeks, got.Weeks)
			}
			if got.Condition != tc.wantCond {
				t.Errorf("Expected condition %q, got %q", tc.wantCond, got.Condition)
			}
		})
	}
}

func TestDelayParser_InvalidHasNoWeeks(t *testing.T) {
	parser := NewDelayParser()
	got := parser.Parse("standard")
	if got.Kind != entities.DelayKindInvalid || got.Weeks != 0 || got.Condition != "" {
		t.Errorf("Invalid delay must carry zero weeks and no condition, got %+v", got)
	}
}

func TestDelayParser_ProjectDelivery_Fixed(t *testing.T) {
	parser := NewDelayParser()
	orderDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	delay := parser.Parse("3 weeks")
	date, status := parser.ProjectDelivery(delay, orderDate, false)
	if date == nil {
		t.Fatalf("Expected a projected date for a fixed delay, got none (%s)", status)
	}
	want := orderDate.AddDate(0, 0, 21)
	if !date.Equal(want) {
		t.Errorf("Expected delivery %s, got %s", want, date)
	}

	// Conditions are irrelevant to fixed delays.
	dateSatisfied, _ := parser.ProjectDelivery(delay, orderDate, true)
	if dateSatisfied == nil || !dateSatisfied.Equal(want) {
		t.Errorf("Fixed delay projection must not depend on condition flag")
	}
}

func TestDelayParser_ProjectDelivery_Conditional(t *testing.T) {
	parser := NewDelayParser()
	orderDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	delay := parser.Parse("2 weeks after proof approval")

	date, status := parser.ProjectDelivery(delay, orderDate, false)
	if date != nil {
		t.Errorf("Unsatisfied condition must not yield a date, got %s", date)
	}
	if status != "pending condition: proof approval" {
		t.Errorf("Unexpected pending status %q", status)
	}

	date, _ = parser.ProjectDelivery(delay, orderDate, true)
	if date == nil {
		t.Fatalf("Satisfied condition must yield a date")
	}
	want := orderDate.AddDate(0, 0, 14)
	if !date.Equal(want) {
		t.Errorf("Expected delivery %s, got %s", want, date)
	}
}

func TestDelayParser_ProjectDelivery_Invalid(t *testing.T) {
	parser := NewDelayParser()
	orderDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	date, status := parser.ProjectDelivery(parser.Parse("n/a"), orderDate, true)
	if date != nil {
		t.Errorf("Invalid delay must not yield a date, got %s", date)
	}
	if status != "invalid delay: n/a" {
		t.Errorf("Unexpected invalid status %q", status)
	}
}
