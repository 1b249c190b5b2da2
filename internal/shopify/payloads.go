package shopify

import (
	"strconv"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

type productsResponse struct {
	Products []productPayload `json:"products"`
}

type productResponse struct {
	Product productPayload `json:"product"`
}

type productPayload struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Vendor   string           `json:"vendor"`
	Variants []variantPayload `json:"variants"`
}

type variantPayload struct {
	ID                int64           `json:"id"`
	ProductID         int64           `json:"product_id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity *int            `json:"inventory_quantity"`
	InventoryItemID   int64           `json:"inventory_item_id"`
}

type inventoryItemsResponse struct {
	InventoryItems []struct {
		ID   int64               `json:"id"`
		Cost decimal.NullDecimal `json:"cost"`
	} `json:"inventory_items"`
}

type ordersResponse struct {
	Orders []orderPayload `json:"orders"`
}

type orderPayload struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Currency  string            `json:"currency"`
	Test      bool              `json:"test"`
	Tags      string            `json:"tags"`
	LineItems []lineItemPayload `json:"line_items"`
	Refunds   []refundPayload   `json:"refunds"`
}

type lineItemPayload struct {
	ID                  int64           `json:"id"`
	ProductID           *int64          `json:"product_id"`
	VariantID           *int64          `json:"variant_id"`
	SKU                 string          `json:"sku"`
	Title               string          `json:"title"`
	VariantTitle        string          `json:"variant_title"`
	Vendor              string          `json:"vendor"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	TotalDiscount       decimal.Decimal `json:"total_discount"`
	DiscountAllocations []struct {
		Amount decimal.Decimal `json:"amount"`
	} `json:"discount_allocations"`
}

type refundPayload struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	RefundLineItems []struct {
		LineItemID int64           `json:"line_item_id"`
		Quantity   int             `json:"quantity"`
		Subtotal   decimal.Decimal `json:"subtotal"`
	} `json:"refund_line_items"`
}

type locationsResponse struct {
	Locations []struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		City    string `json:"city"`
		Country string `json:"country"`
		Active  bool   `json:"active"`
	} `json:"locations"`
}

func id(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func optionalID(v *int64) string {
	if v == nil {
		return ""
	}
	return id(*v)
}

func (p productPayload) toDomain() domain.RawProduct {
	product := domain.RawProduct{
		ID:     id(p.ID),
		Title:  p.Title,
		Vendor: p.Vendor,
	}
	for _, v := range p.Variants {
		product.Variants = append(product.Variants, domain.RawVariant{
			ID:                id(v.ID),
			ProductID:         id(v.ProductID),
			Title:             v.Title,
			SKU:               v.SKU,
			Price:             v.Price,
			InventoryQuantity: v.InventoryQuantity,
			InventoryItemID:   id(v.InventoryItemID),
		})
	}
	return product
}

func (p productPayload) toDetail() domain.ProductDetail {
	detail := domain.ProductDetail{
		ProductID:     id(p.ID),
		Title:         p.Title,
		Brand:         p.Vendor,
		VariantTitles: make(map[string]string, len(p.Variants)),
		Found:         true,
	}
	for _, v := range p.Variants {
		detail.VariantTitles[id(v.ID)] = v.Title
	}
	return detail
}

func (o orderPayload) toDomain() domain.RawOrder {
	order := domain.RawOrder{
		ID:        id(o.ID),
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
		Currency:  o.Currency,
		Test:      o.Test,
		Tags:      o.Tags,
	}
	for _, li := range o.LineItems {
		item := domain.RawLineItem{
			ID:            id(li.ID),
			ProductID:     optionalID(li.ProductID),
			VariantID:     optionalID(li.VariantID),
			SKU:           li.SKU,
			Title:         li.Title,
			VariantTitle:  li.VariantTitle,
			Vendor:        li.Vendor,
			Quantity:      li.Quantity,
			Price:         li.Price,
			TotalDiscount: li.TotalDiscount,
		}
		for _, a := range li.DiscountAllocations {
			item.DiscountAllocations = append(item.DiscountAllocations, domain.DiscountAllocation{Amount: a.Amount})
		}
		order.LineItems = append(order.LineItems, item)
	}
	for _, r := range o.Refunds {
		refund := domain.RawRefund{ID: id(r.ID), CreatedAt: r.CreatedAt}
		for _, rl := range r.RefundLineItems {
			refund.RefundLineItems = append(refund.RefundLineItems, domain.RawRefundLineItem{
				LineItemID: id(rl.LineItemID),
				Quantity:   rl.Quantity,
				Subtotal:   rl.Subtotal,
			})
		}
		order.Refunds = append(order.Refunds, refund)
	}
	return order
}
