package export

import (
	"strconv"
	"strings"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Columns is the header shared by the CSV and XLSX exports.
var Columns = []string{
	"Brand", "Product", "SKU", "Variant ID", "Kind",
	"Stock", "Unit Price", "Unit Cost", "Stock Value", "Retail Value",
	"V60", "V120", "V180", "V365",
	"Net Sales V60", "Net Sales V120", "Net Sales V180", "Net Sales V365",
	"Net Sales", "Suggestion (3m)", "Alert",
}

// totalLabel marks the brand total lines.
const totalLabel = "TOTAL"

// cell is either a string, an int or a decimal.
type cell = any

func rowCells(r domain.ReportRow) []cell {
	return []cell{
		r.Brand, r.Product, r.SKU, r.VariantID, string(r.Kind),
		r.Stock, r.UnitPrice, r.UnitCost, r.StockValue, r.RetailValue,
		r.V60, r.V120, r.V180, r.V365,
		r.NetSalesV60, r.NetSalesV120, r.NetSalesV180, r.NetSalesV365,
		r.NetSales, r.Suggestion3M, r.Alert,
	}
}

func totalCells(g domain.BrandGroup) []cell {
	t := g.Totals
	return []cell{
		g.Brand, totalLabel, "", "", "",
		"", "", "", t.StockValue, t.RetailValue,
		t.UnitsV60, t.UnitsV120, t.UnitsV180, t.UnitsV365,
		t.NetSalesV60, t.NetSalesV120, t.NetSalesV180, t.NetSalesV365,
		"", "", "",
	}
}

func formatCell(c cell) string {
	switch v := c.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return v.StringFixed(2)
	default:
		return ""
	}
}

// sheetValue converts a cell to what excelize stores natively.
func sheetValue(c cell) any {
	switch v := c.(type) {
	case decimal.Decimal:
		return v.Round(2).InexactFloat64()
	default:
		return v
	}
}

// FileName builds the download name of an export.
func FileName(report *domain.Report, ext string) string {
	return "brand-report-" + report.GeneratedAt.UTC().Format("2006-01-02") + "." + strings.TrimPrefix(ext, ".")
}
