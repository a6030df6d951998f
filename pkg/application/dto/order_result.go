package dto

import (
	"github.com/shopspring/decimal"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/services"
)

// Arbitration is the outcome of choosing among shortlisted alternatives.
// RuleBased is true when the deterministic ranking decided, either by
// policy or because the advisory model failed or could not be matched.
type Arbitration struct {
	Selected   *entities.AlternativeCandidate
	Reason     string
	Confidence float64
	RuleBased  bool
}

// LineResult bundles everything computed for one order line.
type LineResult struct {
	Line        entities.OrderLine
	Assessment  *entities.AvailabilityAssessment
	Margin      *services.MarginAssessment
	Shortlist   []entities.AlternativeCandidate
	Arbitration *Arbitration
	Escalation  *entities.EscalationNotice
	SystemError string
}

// BatchStats aggregates one validated batch.
type BatchStats struct {
	TotalLines    int
	ParsedLines   int
	OKLines       int
	WarningLines  int
	ErrorLines    int
	TotalQuantity entities.Quantity
	TotalPrice    decimal.Decimal
}

// BatchResult is the full outcome of validating one order batch.
type BatchResult struct {
	Lines       []LineResult
	Stats       BatchStats
	Escalations []entities.EscalationNotice
	Summary     string
}
