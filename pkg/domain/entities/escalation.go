package entities

import "time"

// ProblemType names the condition that triggered a commercial escalation.
type ProblemType int

const (
	ProblemShortage ProblemType = iota
	ProblemDelayExceeded
	ProblemUnknownProduct
	ProblemInsufficientMargin
)

// String method for ProblemType enum
func (p ProblemType) String() string {
	switch p {
	case ProblemShortage:
		return "Shortage"
	case ProblemDelayExceeded:
		return "DelayExceeded"
	case ProblemUnknownProduct:
		return "UnknownProduct"
	case ProblemInsufficientMargin:
		return "InsufficientMargin"
	default:
		return "Unknown"
	}
}

// EscalationNotice carries everything a commercial contact needs to act on
// a problem line without recomputing anything: product identity, the four
// stock figures, the computed deficit or delay overrun, and the shortlist
// when one was built.
type EscalationNotice struct {
	ID      string
	Problem ProblemType

	ProductID   ProductID
	ProductName string

	RequestedQuantity      Quantity
	StockOnHand            Quantity
	PendingSalesOrders     Quantity
	IncomingPurchaseOrders Quantity
	NetAvailable           Quantity
	Deficit                Quantity

	OrderDate         time.Time
	DesiredDelivery   *time.Time
	EstimatedDelivery *time.Time
	DelayOverrunDays  int

	Alternatives []AlternativeCandidate
	RaisedAt     time.Time
}
