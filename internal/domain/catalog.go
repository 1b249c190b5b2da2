// backend-go/internal/domain/catalog.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawProduct is a catalog product as delivered by the catalog source.
type RawProduct struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Vendor   string       `json:"vendor"`
	Variants []RawVariant `json:"variants"`
}

// RawVariant is a sellable configuration of a RawProduct.
type RawVariant struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity *int            `json:"inventory_quantity"`
	InventoryItemID   string          `json:"inventory_item_id"`
}

// RawOrder is an order with its nested line items and refunds.
type RawOrder struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Currency  string        `json:"currency"`
	Test      bool          `json:"test"`
	Tags      string        `json:"tags"`
	LineItems []RawLineItem `json:"line_items"`
	Refunds   []RawRefund   `json:"refunds"`
}

// RawLineItem is one line of a RawOrder. Identifiers may be empty when the
// variant or product no longer exists upstream.
type RawLineItem struct {
	ID                  string               `json:"id"`
	ProductID           string               `json:"product_id"`
	VariantID           string               `json:"variant_id"`
	SKU                 string               `json:"sku"`
	Title               string               `json:"title"`
	VariantTitle        string               `json:"variant_title"`
	Vendor              string               `json:"vendor"`
	Quantity            int                  `json:"quantity"`
	Price               decimal.Decimal      `json:"price"`
	TotalDiscount       decimal.Decimal      `json:"total_discount"`
	DiscountAllocations []DiscountAllocation `json:"discount_allocations"`
}

type DiscountAllocation struct {
	Amount decimal.Decimal `json:"amount"`
}

// RawRefund groups the refunded lines of one refund transaction.
type RawRefund struct {
	ID              string              `json:"id"`
	CreatedAt       time.Time           `json:"created_at"`
	RefundLineItems []RawRefundLineItem `json:"refund_line_items"`
}

type RawRefundLineItem struct {
	LineItemID string          `json:"line_item_id"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// ProductDetail is the descriptive metadata of a product looked up by id,
// used to name variants that are gone from the current catalog.
type ProductDetail struct {
	ProductID     string            `json:"product_id" db:"product_id"`
	Title         string            `json:"title" db:"title"`
	Brand         string            `json:"brand" db:"vendor"`
	VariantTitles map[string]string `json:"variant_titles" db:"-"`
	Found         bool              `json:"found" db:"-"`
}

// VariantTitle returns the title of the given variant, or "" when unknown.
func (d ProductDetail) VariantTitle(variantID string) string {
	if d.VariantTitles == nil || variantID == "" {
		return ""
	}
	return d.VariantTitles[variantID]
}

// Location is a stock location, passed through for the data endpoints.
type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
	IsActive bool   `json:"active"`
}
