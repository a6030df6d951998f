package entities

import "github.com/shopspring/decimal"

// AlternativeCandidate is one substitute product scored against an original
// order line. Candidates are request-scoped and recomputed per request.
type AlternativeCandidate struct {
	Product             *Product
	TechnicalSimilarity float64
	Description         string
	Margin              decimal.Decimal
	MarginSufficient    bool
	StockSufficient     bool
	CompositeScore      float64
}
