package brand_report

import (
	"fmt"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Assemble builds the brand groups: live rows in inventory order, then
// deleted rows in first-seen order, grouped by brand in first-seen order.
func Assemble(resolver *Resolver, aggregator *Aggregator) ([]domain.BrandGroup, error) {
	calc := NewRowCalculator()
	var rows []domain.ReportRow

	for _, p := range resolver.LiveProducts() {
		kind := domain.RowKindLive
		if p.Merged {
			kind = domain.RowKindMergedDuplicate
		}
		row, err := buildRow(kind, p.Records[0], p.Key, p.Identifiers, aggregator.Get(p.Key))
		if err != nil {
			return nil, err
		}

		stock, metrics := calc.Calculate(p.Records, row.V180)
		row.Stock = stock
		row.StockValue = metrics.StockValue
		row.CostValue = metrics.CostValue
		row.RetailValue = metrics.RetailValue
		row.Suggestion3M = metrics.Suggestion3M
		row.Alert = metrics.Alert
		rows = append(rows, row)
	}

	for _, d := range resolver.DeletedProducts() {
		rec := domain.VariantRecord{
			Brand:       d.Brand,
			ProductName: d.Name,
			ProductID:   d.ProductID,
			SKU:         d.SKU,
			VariantID:   d.VariantID,
		}
		row, err := buildRow(domain.RowKindDeleted, rec, d.Key, d.Identifiers, aggregator.Get(d.Key))
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return groupByBrand(rows), nil
}

func buildRow(kind domain.RowKind, rec domain.VariantRecord, key CanonicalKey, identifiers []string, agg WindowedAggregate) (domain.ReportRow, error) {
	row := domain.ReportRow{
		Kind:         kind,
		Brand:        rec.Brand,
		Product:      rec.ProductName,
		SKU:          rec.SKU,
		VariantID:    rec.VariantID,
		ProductID:    rec.ProductID,
		Identifiers:  identifiers,
		UnitPrice:    rec.UnitPrice,
		UnitCost:     rec.UnitCost,
		V60:          agg.Units[domain.W60],
		V120:         agg.Units[domain.W120],
		V180:         agg.Units[domain.W180],
		V365:         agg.Units[domain.W365],
		NetSalesV60:  round2(agg.WindowNetSales[domain.W60]),
		NetSalesV120: round2(agg.WindowNetSales[domain.W120]),
		NetSalesV180: round2(agg.WindowNetSales[domain.W180]),
		NetSalesV365: round2(agg.WindowNetSales[domain.W365]),
		GrossSales:   round2(agg.GrossSales),
		Discounts:    round2(agg.Discounts),
		Refunds:      round2(agg.Refunds),
		NetSales:     round2(agg.NetSales),
	}
	if row.Identifiers == nil {
		row.Identifiers = []string{}
	}

	switch kind {
	case domain.RowKindLive, domain.RowKindMergedDuplicate:
		// stock-derived values are filled by the calculator
	case domain.RowKindDeleted:
		row.Product = domain.DeletedPrefix + rec.ProductName
		row.Stock = 0
		row.UnitPrice = decimal.Zero
		row.UnitCost = decimal.Zero
		row.StockValue = decimal.Zero
		row.CostValue = decimal.Zero
		row.RetailValue = decimal.Zero
		row.Suggestion3M = decimal.Zero
		row.Alert = domain.AlertDeleted
		row.IsDeleted = true
	default:
		return domain.ReportRow{}, fmt.Errorf("unknown row kind %q for key %s", kind, key)
	}
	return row, nil
}

func groupByBrand(rows []domain.ReportRow) []domain.BrandGroup {
	index := make(map[string]int)
	groups := make([]domain.BrandGroup, 0)

	for _, row := range rows {
		i, ok := index[row.Brand]
		if !ok {
			i = len(groups)
			index[row.Brand] = i
			groups = append(groups, domain.BrandGroup{Brand: row.Brand})
		}
		groups[i].Products = append(groups[i].Products, row)
	}

	for i := range groups {
		groups[i].Totals = brandTotals(groups[i].Products)
	}
	return groups
}

// brandTotals sums the already-rounded row values and rounds once more.
func brandTotals(rows []domain.ReportRow) domain.BrandTotals {
	var t domain.BrandTotals
	for _, r := range rows {
		t.StockValue = t.StockValue.Add(r.StockValue)
		t.CostValue = t.CostValue.Add(r.CostValue)
		t.RetailValue = t.RetailValue.Add(r.RetailValue)
		t.UnitsV60 += r.V60
		t.UnitsV120 += r.V120
		t.UnitsV180 += r.V180
		t.UnitsV365 += r.V365
		t.NetSalesV60 = t.NetSalesV60.Add(r.NetSalesV60)
		t.NetSalesV120 = t.NetSalesV120.Add(r.NetSalesV120)
		t.NetSalesV180 = t.NetSalesV180.Add(r.NetSalesV180)
		t.NetSalesV365 = t.NetSalesV365.Add(r.NetSalesV365)
	}
	t.StockValue = round2(t.StockValue)
	t.CostValue = round2(t.CostValue)
	t.RetailValue = round2(t.RetailValue)
	t.NetSalesV60 = round2(t.NetSalesV60)
	t.NetSalesV120 = round2(t.NetSalesV120)
	t.NetSalesV180 = round2(t.NetSalesV180)
	t.NetSalesV365 = round2(t.NetSalesV365)
	return t
}
