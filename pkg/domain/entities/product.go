package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID represents a catalog identifier, typically a two-token code
// such as "76000 00420000".
type ProductID string

// Quantity represents an integer quantity of packaging units.
type Quantity int64

// Product is an immutable snapshot of one catalog article. Snapshots are
// created at catalog load and replaced wholesale on reload; consumers hold
// read-only references and never mutate shared state.
type Product struct {
	ID                     ProductID
	Name                   string
	StockOnHand            Quantity
	PendingSalesOrders     Quantity
	IncomingPurchaseOrders Quantity
	PurchasePrice          decimal.Decimal
	RecommendedSalePrice   decimal.Decimal
	MinimumMargin          decimal.Decimal
	ReplenishmentDelayText string
	ReplenishmentDelay     DelayInfo
}

// NewProduct creates a validated Product snapshot.
func NewProduct(
	id ProductID,
	name string,
	stockOnHand, pendingSalesOrders, incomingPurchaseOrders Quantity,
	purchasePrice, recommendedSalePrice, minimumMargin decimal.Decimal,
	delayText string,
	delay DelayInfo,
) (*Product, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if stockOnHand < 0 {
		return nil, fmt.Errorf("stock on hand cannot be negative, got %d", stockOnHand)
	}
	if pendingSalesOrders < 0 {
		return nil, fmt.Errorf("pending sales orders cannot be negative, got %d", pendingSalesOrders)
	}
	if incomingPurchaseOrders < 0 {
		return nil, fmt.Errorf("incoming purchase orders cannot be negative, got %d", incomingPurchaseOrders)
	}
	if purchasePrice.IsNegative() {
		return nil, fmt.Errorf("purchase price cannot be negative, got %s", purchasePrice)
	}

	return &Product{
		ID:                     id,
		Name:                   name,
		StockOnHand:            stockOnHand,
		PendingSalesOrders:     pendingSalesOrders,
		IncomingPurchaseOrders: incomingPurchaseOrders,
		PurchasePrice:          purchasePrice,
		RecommendedSalePrice:   recommendedSalePrice,
		MinimumMargin:          minimumMargin,
		ReplenishmentDelayText: delayText,
		ReplenishmentDelay:     delay,
	}, nil
}

// FreeStock returns the stock that can be promised today: units in the
// warehouse minus units already promised to other customers. May be
// negative; it is reported as computed, never clamped.
func (p *Product) FreeStock() Quantity {
	return p.StockOnHand - p.PendingSalesOrders
}

// NetAvailable returns stock on hand plus incoming purchase orders minus
// pending sales orders. May be negative; never clamped.
func (p *Product) NetAvailable() Quantity {
	return p.StockOnHand + p.IncomingPurchaseOrders - p.PendingSalesOrders
}

// PlaceholderProduct returns a zero-valued snapshot for an identifier that
// did not resolve. Downstream formatting relies on every assessment carrying
// a product, existing or not.
func PlaceholderProduct(id ProductID) *Product {
	return &Product{
		ID:                 id,
		Name:               "UNKNOWN PRODUCT",
		ReplenishmentDelay: DelayInfo{Kind: DelayKindInvalid},
	}
}
