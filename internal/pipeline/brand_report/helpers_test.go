package brand_report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func qty(n int) *int {
	return &n
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func testProducts() []domain.RawProduct {
	return []domain.RawProduct{
		{
			ID:     "p1",
			Title:  "Lipstick",
			Vendor: "Brand A",
			Variants: []domain.RawVariant{
				{ID: "v1", Title: "Red", SKU: "LIP-RED", Price: dec("20"), InventoryQuantity: qty(10), InventoryItemID: "i1"},
				{ID: "v2", Title: "Nude", SKU: "LIP-NUDE", Price: dec("20"), InventoryQuantity: qty(-5), InventoryItemID: "i2"},
			},
		},
		{
			ID:     "p2",
			Title:  "Serum",
			Vendor: " Brand B ",
			Variants: []domain.RawVariant{
				{ID: "v3", Title: "Default Title", SKU: "SER-01", Price: dec("50"), InventoryQuantity: qty(3), InventoryItemID: "i3"},
			},
		},
	}
}

func testCosts() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"i1": dec("8"),
		"i3": dec("20.5"),
	}
}

func lineItem(id, variantID, sku string, quantity int, price string) domain.RawLineItem {
	return domain.RawLineItem{
		ID:        id,
		VariantID: variantID,
		SKU:       sku,
		Quantity:  quantity,
		Price:     dec(price),
	}
}

func order(id string, createdAt time.Time, items ...domain.RawLineItem) domain.RawOrder {
	return domain.RawOrder{ID: id, Name: "#" + id, CreatedAt: createdAt, Currency: "EUR", LineItems: items}
}

// fakeDetailFetcher serves product details from a map and counts calls.
type fakeDetailFetcher struct {
	mu      sync.Mutex
	details map[string]domain.ProductDetail
	fail    map[string]bool
	calls   map[string]int
}

func newFakeDetailFetcher(details ...domain.ProductDetail) *fakeDetailFetcher {
	f := &fakeDetailFetcher{
		details: make(map[string]domain.ProductDetail),
		fail:    make(map[string]bool),
		calls:   make(map[string]int),
	}
	for _, d := range details {
		d.Found = true
		f.details[d.ProductID] = d
	}
	return f
}

func (f *fakeDetailFetcher) FetchProductDetail(_ context.Context, productID string) (domain.ProductDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[productID]++
	if f.fail[productID] {
		return domain.ProductDetail{}, errors.New("upstream unavailable")
	}
	if d, ok := f.details[productID]; ok {
		return d, nil
	}
	return domain.ProductDetail{ProductID: productID}, nil
}

func findRow(t interface{ Fatalf(string, ...any) }, report *domain.Report, product string) domain.ReportRow {
	for _, g := range report.Brands {
		for _, r := range g.Products {
			if r.Product == product {
				return r
			}
		}
	}
	t.Fatalf("row %q not found", product)
	return domain.ReportRow{}
}
