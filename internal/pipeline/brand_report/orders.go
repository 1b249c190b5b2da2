package brand_report

import (
	"strings"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderFilter selects which orders are normalized.
type OrderFilter struct {
	// HorizonStart drops orders created strictly before it. Zero keeps all.
	HorizonStart time.Time
	ExcludedTags []string
}

// NormalizeStats counts what NormalizeOrders kept and dropped.
type NormalizeStats struct {
	OrdersReceived       int
	OrdersExcluded       int
	OrdersOutsideHorizon int
	Lines                int
	FullyRefunded        int
	Free                 int
}

type refundTotals struct {
	quantity int
	subtotal decimal.Decimal
}

// NormalizeOrders turns raw orders into refund-adjusted order lines.
// Test orders, orders tagged with an excluded tag and orders before the
// horizon are dropped. Fully refunded and free lines are kept; they simply
// do not contribute to any sum.
func NormalizeOrders(orders []domain.RawOrder, filter OrderFilter) ([]domain.OrderLine, NormalizeStats) {
	stats := NormalizeStats{OrdersReceived: len(orders)}
	var lines []domain.OrderLine

	for _, o := range orders {
		if isExcludedOrder(o, filter.ExcludedTags) {
			stats.OrdersExcluded++
			continue
		}
		if !filter.HorizonStart.IsZero() && o.CreatedAt.Before(filter.HorizonStart) {
			stats.OrdersOutsideHorizon++
			continue
		}

		refunds := refundsByLine(o.Refunds)
		for _, li := range o.LineItems {
			line := normalizeLine(o, li, refunds[li.ID])
			switch {
			case line.OrderedQuantity > 0 && line.Quantity == 0:
				stats.FullyRefunded++
			case !line.UnitPrice.IsPositive():
				stats.Free++
			}
			stats.Lines++
			lines = append(lines, line)
		}
	}
	return lines, stats
}

func normalizeLine(o domain.RawOrder, li domain.RawLineItem, refund refundTotals) domain.OrderLine {
	ordered := li.Quantity
	if ordered < 0 {
		ordered = 0
	}
	refunded := refund.quantity
	if refunded > ordered {
		refunded = ordered
	}

	// 1. Gross = unit price × ordered quantity
	gross := li.Price.Mul(decimal.NewFromInt(int64(ordered)))

	// 2. Discounts = line-level allocations, else the line's total discount
	discounts := decimal.Zero
	if len(li.DiscountAllocations) > 0 {
		for _, a := range li.DiscountAllocations {
			discounts = discounts.Add(a.Amount)
		}
	} else {
		discounts = li.TotalDiscount
	}

	// 3. Net = gross - discounts - refunded subtotal
	net := gross.Sub(discounts).Sub(refund.subtotal)

	return domain.OrderLine{
		OrderID:          o.ID,
		LineItemID:       li.ID,
		CreatedAt:        o.CreatedAt,
		SKU:              strings.TrimSpace(li.SKU),
		VariantID:        li.VariantID,
		ProductID:        li.ProductID,
		Title:            li.Title,
		VariantTitle:     li.VariantTitle,
		Vendor:           li.Vendor,
		OrderedQuantity:  ordered,
		RefundedQuantity: refunded,
		Quantity:         ordered - refunded,
		UnitPrice:        li.Price,
		GrossSales:       gross,
		Discounts:        discounts,
		Refunds:          refund.subtotal,
		NetSales:         net,
	}
}

func refundsByLine(refunds []domain.RawRefund) map[string]refundTotals {
	if len(refunds) == 0 {
		return nil
	}
	out := make(map[string]refundTotals)
	for _, r := range refunds {
		for _, rl := range r.RefundLineItems {
			t := out[rl.LineItemID]
			t.quantity += rl.Quantity
			t.subtotal = t.subtotal.Add(rl.Subtotal)
			out[rl.LineItemID] = t
		}
	}
	return out
}

func isExcludedOrder(o domain.RawOrder, excludedTags []string) bool {
	if o.Test {
		return true
	}
	if o.Tags == "" || len(excludedTags) == 0 {
		return false
	}
	for _, tag := range strings.Split(o.Tags, ",") {
		tag = strings.TrimSpace(tag)
		for _, excluded := range excludedTags {
			if strings.EqualFold(tag, strings.TrimSpace(excluded)) {
				return true
			}
		}
	}
	return false
}
