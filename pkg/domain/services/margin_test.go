package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

func marginTestProduct(purchase, recommended, minimum float64) *entities.Product {
	return &entities.Product{
		ID:                   "P1",
		Name:                 "CAISSE US SC 450X300X230MM",
		PurchasePrice:        decimal.NewFromFloat(purchase),
		RecommendedSalePrice: decimal.NewFromFloat(recommended),
		MinimumMargin:        decimal.NewFromFloat(minimum),
	}
}

func TestEvaluateMargin_ProposedPrice(t *testing.T) {
	product := marginTestProduct(0.61, 0.70, 0.09)
	proposed := decimal.NewFromFloat(0.75)

	got := EvaluateMargin(product, &proposed)
	if !got.PriceProposed {
		t.Errorf("Expected the proposed price to be retained")
	}
	if !got.Margin.Equal(decimal.NewFromFloat(0.14)) {
		t.Errorf("Expected margin 0.14, got %s", got.Margin)
	}
	if !got.Sufficient {
		t.Errorf("Expected margin 0.14 >= minimum 0.09 to be sufficient")
	}
}

func TestEvaluateMargin_DefaultPrice(t *testing.T) {
	product := marginTestProduct(0.61, 0.70, 0.09)

	got := EvaluateMargin(product, nil)
	if got.PriceProposed {
		t.Errorf("Expected fallback to the recommended sale price")
	}
	if !got.RetainedPrice.Equal(decimal.NewFromFloat(0.70)) {
		t.Errorf("Expected retained price 0.70, got %s", got.RetainedPrice)
	}
	if !got.Sufficient {
		t.Errorf("Expected recommended-price margin to be sufficient")
	}
}

func TestEvaluateMargin_ExactThreshold(t *testing.T) {
	product := marginTestProduct(1.00, 1.15, 0.15)

	got := EvaluateMargin(product, nil)
	if !got.Sufficient {
		t.Errorf("Margin exactly at minimum must count as sufficient")
	}
}

func TestEvaluateMargin_NegativeMarginNotAnError(t *testing.T) {
	product := marginTestProduct(1.00, 0, 0.15)

	got := EvaluateMargin(product, nil)
	if !got.Margin.Equal(decimal.NewFromFloat(-1.00)) {
		t.Errorf("Expected defined negative margin -1.00, got %s", got.Margin)
	}
	if got.Sufficient {
		t.Errorf("Negative margin must not be sufficient")
	}
}
