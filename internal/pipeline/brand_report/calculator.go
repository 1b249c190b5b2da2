package brand_report

import (
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// suggestionDivisor turns 180-day sales into the replenishment demand estimate.
var suggestionDivisor = decimal.NewFromInt(3)

// RowMetrics holds the derived values of one live row.
type RowMetrics struct {
	StockValue   decimal.Decimal
	CostValue    decimal.Decimal
	RetailValue  decimal.Decimal
	Suggestion3M decimal.Decimal
	Alert        string
}

// RowCalculator computes stock valuation and the replenishment suggestion.
type RowCalculator struct{}

func NewRowCalculator() *RowCalculator {
	return &RowCalculator{}
}

// Calculate derives the metrics of a live row from its merged records and
// 180-day unit sales.
func (rc *RowCalculator) Calculate(records []domain.VariantRecord, unitsV180 int) (int, RowMetrics) {
	metrics := RowMetrics{}

	// 1. Stock = sum of the merged records' stock, each already clamped at 0
	stock := 0
	costValue := decimal.Zero
	retailValue := decimal.Zero
	for _, rec := range records {
		qty := decimal.NewFromInt(int64(rec.Stock))
		stock += rec.Stock

		// 2. Values = stock × unit cost / unit price, per record
		costValue = costValue.Add(qty.Mul(rec.UnitCost))
		retailValue = retailValue.Add(qty.Mul(rec.UnitPrice))
	}
	metrics.CostValue = round2(costValue)
	metrics.StockValue = metrics.CostValue
	metrics.RetailValue = round2(retailValue)

	// 3. Suggestion = max(0, round(V180 / 3 - stock, 2))
	metrics.Suggestion3M = suggestion(stock, unitsV180)

	// 4. Alert
	metrics.Alert = domain.AlertOutOfStock
	if stock > 0 {
		metrics.Alert = domain.AlertOK
	}

	return stock, metrics
}

func suggestion(stock, unitsV180 int) decimal.Decimal {
	demand := decimal.NewFromInt(int64(unitsV180)).Div(suggestionDivisor)
	s := round2(demand.Sub(decimal.NewFromInt(int64(stock))))
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}
