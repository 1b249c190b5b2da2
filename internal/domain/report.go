// backend-go/internal/domain/report.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Exporters and the dashboard read amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// UnknownBrand is used for rows whose brand is missing upstream.
const UnknownBrand = "Unknown"

// Window lengths in days, shortest first.
var WindowDays = [NumWindows]int{60, 120, 180, 365}

const NumWindows = 4

// Window indices into the per-window arrays.
const (
	W60 = iota
	W120
	W180
	W365
)

// Alert values of a report row.
const (
	AlertOK         = "OK"
	AlertOutOfStock = "Out of stock"
	AlertDeleted    = "Deleted"
)

// DeletedPrefix flags the product name of rows synthesized for deleted variants.
const DeletedPrefix = "[Deleted] "

// RowKind tags how a report row came to be.
type RowKind string

const (
	RowKindLive            RowKind = "live"
	RowKindDeleted         RowKind = "deleted"
	RowKindMergedDuplicate RowKind = "merged_duplicate"
)

// VariantRecord is one flattened inventory variant.
type VariantRecord struct {
	Brand           string          `json:"brand"`
	ProductName     string          `json:"product"`
	ProductID       string          `json:"product_id"`
	SKU             string          `json:"sku"`
	VariantID       string          `json:"variant_id"`
	InventoryItemID string          `json:"inventory_item_id"`
	Stock           int             `json:"stock"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// OrderLine holds the refund-adjusted financial facts of one order line item.
// Quantity and NetSales already exclude refunded units and amounts.
type OrderLine struct {
	OrderID          string          `json:"order_id"`
	LineItemID       string          `json:"line_item_id"`
	CreatedAt        time.Time       `json:"created_at"`
	SKU              string          `json:"sku"`
	VariantID        string          `json:"variant_id"`
	ProductID        string          `json:"product_id"`
	Title            string          `json:"title"`
	VariantTitle     string          `json:"variant_title"`
	Vendor           string          `json:"vendor"`
	OrderedQuantity  int             `json:"ordered_quantity"`
	RefundedQuantity int             `json:"refunded_quantity"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	GrossSales       decimal.Decimal `json:"gross_sales"`
	Discounts        decimal.Decimal `json:"discounts"`
	Refunds          decimal.Decimal `json:"refunds"`
	NetSales         decimal.Decimal `json:"net_sales"`
}

// Contributes reports whether the line counts toward any sales sum.
// Fully refunded lines and free items are kept but weigh nothing.
func (l OrderLine) Contributes() bool {
	return l.Quantity > 0 && l.UnitPrice.IsPositive()
}

// ReportRow is one line of the brand report.
type ReportRow struct {
	Kind         RowKind         `json:"kind"`
	Brand        string          `json:"brand"`
	Product      string          `json:"product"`
	SKU          string          `json:"sku"`
	VariantID    string          `json:"variant_id"`
	ProductID    string          `json:"product_id"`
	Identifiers  []string        `json:"identifiers"`
	Stock        int             `json:"stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	StockValue   decimal.Decimal `json:"stock_value"`
	CostValue    decimal.Decimal `json:"cost_value"`
	RetailValue  decimal.Decimal `json:"retail_value"`
	V60          int             `json:"v60"`
	V120         int             `json:"v120"`
	V180         int             `json:"v180"`
	V365         int             `json:"v365"`
	NetSalesV60  decimal.Decimal `json:"net_sales_v60"`
	NetSalesV120 decimal.Decimal `json:"net_sales_v120"`
	NetSalesV180 decimal.Decimal `json:"net_sales_v180"`
	NetSalesV365 decimal.Decimal `json:"net_sales_v365"`
	GrossSales   decimal.Decimal `json:"gross_sales"`
	Discounts    decimal.Decimal `json:"discounts"`
	Refunds      decimal.Decimal `json:"refunds"`
	NetSales     decimal.Decimal `json:"net_sales"`
	Suggestion3M decimal.Decimal `json:"suggestion_3m"`
	Alert        string          `json:"alert"`
	IsDeleted    bool            `json:"is_deleted"`
}

// Units returns the units sold per window, shortest first.
func (r ReportRow) Units() [NumWindows]int {
	return [NumWindows]int{r.V60, r.V120, r.V180, r.V365}
}

// WindowNetSales returns net sales per window, shortest first.
func (r ReportRow) WindowNetSales() [NumWindows]decimal.Decimal {
	return [NumWindows]decimal.Decimal{r.NetSalesV60, r.NetSalesV120, r.NetSalesV180, r.NetSalesV365}
}

// BrandTotals are the summed values of a brand's rows.
type BrandTotals struct {
	StockValue   decimal.Decimal `json:"stock_value"`
	CostValue    decimal.Decimal `json:"cost_value"`
	RetailValue  decimal.Decimal `json:"retail_value"`
	UnitsV60     int             `json:"units_v60"`
	UnitsV120    int             `json:"units_v120"`
	UnitsV180    int             `json:"units_v180"`
	UnitsV365    int             `json:"units_v365"`
	NetSalesV60  decimal.Decimal `json:"net_sales_v60"`
	NetSalesV120 decimal.Decimal `json:"net_sales_v120"`
	NetSalesV180 decimal.Decimal `json:"net_sales_v180"`
	NetSalesV365 decimal.Decimal `json:"net_sales_v365"`
}

// BrandGroup is the rows of one brand with their totals.
type BrandGroup struct {
	Brand    string      `json:"brand"`
	Products []ReportRow `json:"products"`
	Totals   BrandTotals `json:"totals"`
}

// WindowCutoff is the inclusive lower bound of one trailing window.
type WindowCutoff struct {
	Days   int       `json:"days"`
	Cutoff time.Time `json:"cutoff"`
}

// ReportDiagnostics counts how order lines were handled during a generation.
type ReportDiagnostics struct {
	InventoryVariants    int     `json:"inventory_variants"`
	OrdersReceived       int     `json:"orders_received"`
	OrdersExcluded       int     `json:"orders_excluded"`
	LinesProcessed       int     `json:"lines_processed"`
	LinesNotContributing int     `json:"lines_not_contributing"`
	FullyRefundedLines   int     `json:"fully_refunded_lines"`
	FreeLines            int     `json:"free_lines"`
	MatchedByVariant     int     `json:"matched_by_variant"`
	MatchedBySKU         int     `json:"matched_by_sku"`
	MatchedByName        int     `json:"matched_by_name"`
	RedirectedDuplicates int     `json:"redirected_duplicates"`
	MatchedDeleted       int     `json:"matched_deleted"`
	Unmatched            int     `json:"unmatched"`
	CatalogDuplicates    int     `json:"catalog_duplicates"`
	DeletedProducts      int     `json:"deleted_products"`
	DetailLookups        int     `json:"detail_lookups"`
	DetailLookupFailures int     `json:"detail_lookup_failures"`
	MatchRate            float64 `json:"match_rate"`
}

// Report is the result of one generation.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Cutoffs     []WindowCutoff    `json:"cutoffs"`
	Brands      []BrandGroup      `json:"brands"`
	Diagnostics ReportDiagnostics `json:"diagnostics"`
}
