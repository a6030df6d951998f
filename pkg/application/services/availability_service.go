package services

import (
	"fmt"
	"time"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	domainservices "github.com/VincentNinIA/butv2/pkg/domain/services"
)

// AvailabilityService classifies how one requested quantity of one product
// can be fulfilled. States are evaluated in a fixed order and every input
// produces exactly one assessment, synchronously.
type AvailabilityService struct {
	delayParser *domainservices.DelayParser
}

func NewAvailabilityService() *AvailabilityService {
	return &AvailabilityService{delayParser: domainservices.NewDelayParser()}
}

// AssessUnknown builds the assessment for an identifier that resolved to no
// product. The placeholder keeps downstream rendering uniform.
func (s *AvailabilityService) AssessUnknown(
	id entities.ProductID,
	requested entities.Quantity,
	orderDate time.Time,
	desired *time.Time,
) entities.AvailabilityAssessment {
	return entities.AvailabilityAssessment{
		Product:           entities.PlaceholderProduct(id),
		RequestedQuantity: requested,
		OrderDate:         orderDate,
		DesiredDelivery:   desired,
		State:             entities.StateNonexistent,
		AlertLevel:        entities.AlertError,
		NeedsEscalation:   true,
		PrincipalMessage:  fmt.Sprintf("product %s does not exist in the catalog", id),
		DetailedMessage:   "the identifier resolved to no catalog record; check the reference or propose an alternative",
		RequiredAction:    "verify the product reference with the customer",
	}
}

// Assess runs the availability state machine for a resolved product.
// A product exactly at a threshold counts as sufficient, never as shortage.
func (s *AvailabilityService) Assess(
	product *entities.Product,
	requested entities.Quantity,
	orderDate time.Time,
	desired *time.Time,
) entities.AvailabilityAssessment {
	a := entities.AvailabilityAssessment{
		Product:           product,
		RequestedQuantity: requested,
		OrderDate:         orderDate,
		DesiredDelivery:   desired,
	}

	free := product.FreeStock()
	net := product.NetAvailable()

	switch {
	case free >= requested:
		a.State = entities.StateImmediate
		a.AlertLevel = entities.AlertInfo
		// Picking and shipping take one working day.
		estimate := orderDate.AddDate(0, 0, 1)
		a.EstimatedDelivery = &estimate
		a.PrincipalMessage = fmt.Sprintf("%d units of %s available immediately", requested, product.Name)
		a.DetailedMessage = fmt.Sprintf("free stock %d covers the requested %d units", free, requested)

	case net >= requested:
		a.State = entities.StateWithIncoming
		a.AlertLevel = entities.AlertWarning
		estimate, status := s.delayParser.ProjectDelivery(product.ReplenishmentDelay, orderDate, false)
		a.EstimatedDelivery = estimate
		a.PrincipalMessage = fmt.Sprintf(
			"%d units of %s available with incoming purchase orders", requested, product.Name)
		a.DetailedMessage = fmt.Sprintf(
			"free stock %d plus incoming %d covers the request; %s",
			free, product.IncomingPurchaseOrders, status)

		if desired != nil && estimate != nil && estimate.After(*desired) {
			a.AlertLevel = entities.AlertError
			a.NeedsEscalation = true
			a.DelayExceeded = true
			a.PrincipalMessage = fmt.Sprintf(
				"replenishment of %s arrives after the desired delivery date", product.Name)
			a.RequiredAction = fmt.Sprintf(
				"negotiate delivery on %s or propose an alternative", estimate.Format("02/01/2006"))
		}

	default:
		a.State = entities.StateShortage
		a.AlertLevel = entities.AlertError
		a.NeedsEscalation = true
		a.Deficit = requested - net
		a.PrincipalMessage = fmt.Sprintf(
			"shortage of %s: %d units missing even counting incoming orders", product.Name, a.Deficit)
		a.DetailedMessage = fmt.Sprintf(
			"net available %d (stock %d, pending %d, incoming %d) against requested %d",
			net, product.StockOnHand, product.PendingSalesOrders, product.IncomingPurchaseOrders, requested)
		a.RequiredAction = "propose an alternative or a partial delivery"
	}

	return a
}
