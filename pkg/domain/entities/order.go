package entities

import "github.com/shopspring/decimal"

// OrderLine is the structured form of one raw order line. When Parsed is
// false all numeric fields are zero and FailureReason explains why.
type OrderLine struct {
	RawText       string
	LineNumber    int
	Parsed        bool
	FailureReason string

	CandidateID  ProductID
	Designation  string
	Quantity     Quantity
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
	PriceGiven   bool
	ProductFound bool
}

// FailedOrderLine builds the result for text no grammar pattern matched.
func FailedOrderLine(raw string, lineNumber int, reason string) OrderLine {
	return OrderLine{
		RawText:       raw,
		LineNumber:    lineNumber,
		FailureReason: reason,
	}
}
