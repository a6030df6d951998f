package entities

import "time"

// AvailabilityState classifies how an order line can be fulfilled.
type AvailabilityState int

const (
	// StateImmediate: free stock covers the requested quantity today.
	StateImmediate AvailabilityState = iota
	// StateWithIncoming: free stock plus incoming purchase orders cover it.
	StateWithIncoming
	// StateShortage: not coverable even with incoming purchase orders.
	StateShortage
	// StateNonexistent: the identifier did not resolve to any product.
	StateNonexistent
)

// String method for AvailabilityState enum
func (s AvailabilityState) String() string {
	switch s {
	case StateImmediate:
		return "Immediate"
	case StateWithIncoming:
		return "WithIncoming"
	case StateShortage:
		return "Shortage"
	case StateNonexistent:
		return "Nonexistent"
	default:
		return "Unknown"
	}
}

// AlertLevel grades how loudly an assessment should be surfaced.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertError
)

// String method for AlertLevel enum
func (l AlertLevel) String() string {
	switch l {
	case AlertInfo:
		return "Info"
	case AlertWarning:
		return "Warning"
	case AlertError:
		return "Error"
	default:
		return "Unknown"
	}
}

// AvailabilityAssessment is the outcome of resolving one product against one
// requested quantity. Every input produces exactly one assessment.
type AvailabilityAssessment struct {
	Product           *Product
	RequestedQuantity Quantity
	OrderDate         time.Time
	DesiredDelivery   *time.Time

	State             AvailabilityState
	AlertLevel        AlertLevel
	EstimatedDelivery *time.Time
	Deficit           Quantity
	NeedsEscalation   bool
	DelayExceeded     bool
	PrincipalMessage  string
	DetailedMessage   string
	RequiredAction    string
}
