package services

import (
	"testing"
	"time"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

var orderDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestAvailabilityService_ImmediateWhenFreeStockCovers(t *testing.T) {
	svc := NewAvailabilityService()
	p := buildProduct(t, "A1", "Caisse", 100, 20, 0, 1, "2 semaines")

	a := svc.Assess(p, 50, orderDate, nil)

	if a.State != entities.StateImmediate {
		t.Errorf("state = %v, want Immediate", a.State)
	}
	if a.AlertLevel != entities.AlertInfo {
		t.Errorf("alert = %v, want Info", a.AlertLevel)
	}
	if a.NeedsEscalation {
		t.Error("immediate lines never escalate")
	}
	if a.EstimatedDelivery == nil || !a.EstimatedDelivery.Equal(orderDate.AddDate(0, 0, 1)) {
		t.Errorf("estimated delivery = %v, want next day", a.EstimatedDelivery)
	}
}

func TestAvailabilityService_WithIncomingProjectsDelivery(t *testing.T) {
	svc := NewAvailabilityService()
	p := buildProduct(t, "B1", "Caisse", 30, 0, 50, 1, "3 weeks")
	p.ReplenishmentDelay = entities.DelayInfo{Kind: entities.DelayKindFixed, Weeks: 3, RawText: "3 weeks"}

	a := svc.Assess(p, 70, orderDate, nil)

	if a.State != entities.StateWithIncoming {
		t.Errorf("state = %v, want WithIncoming", a.State)
	}
	if a.AlertLevel != entities.AlertWarning {
		t.Errorf("alert = %v, want Warning", a.AlertLevel)
	}
	if a.NeedsEscalation {
		t.Error("in-time replenishment must not escalate")
	}
	want := orderDate.AddDate(0, 0, 21)
	if a.EstimatedDelivery == nil || !a.EstimatedDelivery.Equal(want) {
		t.Errorf("estimated delivery = %v, want %v", a.EstimatedDelivery, want)
	}
}

func TestAvailabilityService_DelayExceededEscalates(t *testing.T) {
	svc := NewAvailabilityService()
	p := buildProduct(t, "B1", "Caisse", 30, 0, 50, 1, "3 weeks")
	p.ReplenishmentDelay = entities.DelayInfo{Kind: entities.DelayKindFixed, Weeks: 3, RawText: "3 weeks"}
	desired := orderDate.AddDate(0, 0, 7)

	a := svc.Assess(p, 70, orderDate, &desired)

	if a.State != entities.StateWithIncoming {
		t.Errorf("state = %v, want WithIncoming", a.State)
	}
	if a.AlertLevel != entities.AlertError {
		t.Errorf("alert = %v, want Error", a.AlertLevel)
	}
	if !a.NeedsEscalation || !a.DelayExceeded {
		t.Errorf("escalation=%t delayExceeded=%t, want both true", a.NeedsEscalation, a.DelayExceeded)
	}
}

func TestAvailabilityService_ConditionalDelayHasNoDate(t *testing.T) {
	svc := NewAvailabilityService()
	p := buildProduct(t, "B1", "Caisse", 30, 0, 50, 1, "2 semaines après validation BAT")
	p.ReplenishmentDelay = entities.DelayInfo{
		Kind:      entities.DelayKindConditional,
		Weeks:     2,
		Condition: "validation BAT",
		RawText:   "2 semaines après validation BAT",
	}

	a := svc.Assess(p, 70, orderDate, nil)

	if a.State != entities.StateWithIncoming {
		t.Errorf("state = %v, want WithIncoming", a.State)
	}
	if a.EstimatedDelivery != nil {
		t.Errorf("unsatisfied condition must not yield a date, got %v", a.EstimatedDelivery)
	}
}

func TestAvailabilityService_ShortageReportsDeficit(t *testing.T) {
	svc := NewAvailabilityService()
	p := buildProduct(t, "D1", "Caisse", 10, 5, 5, 1, "2 semaines")

	a := svc.Assess(p, 50, orderDate, nil)

	if a.State != entities.StateShortage {
		t.Errorf("state = %v, want Shortage", a.State)
	}
	if a.Deficit != 40 {
		t.Errorf("deficit = %d, want 40", a.Deficit)
	}
	if a.AlertLevel != entities.AlertError || !a.NeedsEscalation {
		t.Errorf("alert=%v escalation=%t, want Error and true", a.AlertLevel, a.NeedsEscalation)
	}
}

func TestAvailabilityService_ThresholdExactness(t *testing.T) {
	svc := NewAvailabilityService()

	// Free stock exactly equals the request.
	exactFree := buildProduct(t, "T1", "Caisse", 50, 0, 0, 1, "2 semaines")
	if a := svc.Assess(exactFree, 50, orderDate, nil); a.State != entities.StateImmediate {
		t.Errorf("available == requested resolved to %v, want Immediate", a.State)
	}

	// Net available exactly equals the request.
	exactNet := buildProduct(t, "T2", "Caisse", 30, 10, 30, 1, "2 semaines")
	if a := svc.Assess(exactNet, 50, orderDate, nil); a.State == entities.StateShortage {
		t.Error("net available == requested must never resolve to Shortage")
	}
}

func TestAvailabilityService_OversoldStockDeepensDeficit(t *testing.T) {
	svc := NewAvailabilityService()
	// Pending promises exceed physical stock; net available is negative
	// and the deficit exceeds the requested quantity.
	p := buildProduct(t, "O1", "Caisse", 10, 30, 0, 1, "2 semaines")

	a := svc.Assess(p, 50, orderDate, nil)
	if a.State != entities.StateShortage {
		t.Fatalf("state = %v, want Shortage", a.State)
	}
	if a.Deficit != 70 {
		t.Errorf("deficit = %d, want 70", a.Deficit)
	}
}

func TestAvailabilityService_UnknownIdentifier(t *testing.T) {
	svc := NewAvailabilityService()

	a := svc.AssessUnknown("ZZZ-000", 10, orderDate, nil)

	if a.State != entities.StateNonexistent {
		t.Errorf("state = %v, want Nonexistent", a.State)
	}
	if a.AlertLevel != entities.AlertError || !a.NeedsEscalation {
		t.Errorf("alert=%v escalation=%t, want Error and true", a.AlertLevel, a.NeedsEscalation)
	}
	if a.Product == nil || a.Product.ID != "ZZZ-000" {
		t.Error("placeholder product must carry the requested identifier")
	}
}
