package services

import (
	"github.com/shopspring/decimal"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

// MarginAssessment is the outcome of evaluating a sale price against a
// product's purchase price and minimum margin.
type MarginAssessment struct {
	RetainedPrice decimal.Decimal
	Margin        decimal.Decimal
	MinimumMargin decimal.Decimal
	Sufficient    bool
	PriceProposed bool
}

// EvaluateMargin computes the realized margin for a product. When the
// requester proposed a price, the margin is proposed minus purchase price;
// otherwise it falls back to the recommended sale price. Absent price fields
// are zero decimals, so the result is a defined (possibly negative) margin.
// Pure function, never fails.
func EvaluateMargin(product *entities.Product, proposedPrice *decimal.Decimal) MarginAssessment {
	retained := product.RecommendedSalePrice
	proposed := false
	if proposedPrice != nil {
		retained = *proposedPrice
		proposed = true
	}

	margin := retained.Sub(product.PurchasePrice)
	return MarginAssessment{
		RetainedPrice: retained,
		Margin:        margin,
		MinimumMargin: product.MinimumMargin,
		Sufficient:    margin.GreaterThanOrEqual(product.MinimumMargin),
		PriceProposed: proposed,
	}
}
