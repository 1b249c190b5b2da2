package brand_report

import (
	"testing"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOrdersPartialRefund(t *testing.T) {
	o := order("1001", daysAgo(5), lineItem("li1", "v1", "LIP-RED", 5, "10"))
	o.Refunds = []domain.RawRefund{
		{ID: "r1", RefundLineItems: []domain.RawRefundLineItem{{LineItemID: "li1", Quantity: 1, Subtotal: dec("10")}}},
		{ID: "r2", RefundLineItems: []domain.RawRefundLineItem{{LineItemID: "li1", Quantity: 1, Subtotal: dec("10")}}},
	}

	lines, stats := NormalizeOrders([]domain.RawOrder{o}, OrderFilter{})
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, 5, line.OrderedQuantity)
	assert.Equal(t, 2, line.RefundedQuantity)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, dec("50").Equal(line.GrossSales))
	assert.True(t, dec("20").Equal(line.Refunds))
	assert.True(t, dec("30").Equal(line.NetSales), "net = %s", line.NetSales)
	assert.True(t, line.Contributes())
	assert.Equal(t, 1, stats.Lines)
	assert.Zero(t, stats.FullyRefunded)
}

func TestNormalizeOrdersFullyRefundedAndFreeLines(t *testing.T) {
	o := order("1002", daysAgo(5),
		lineItem("li1", "v1", "LIP-RED", 2, "10"),
		lineItem("li2", "v3", "SER-01", 1, "0"),
	)
	o.Refunds = []domain.RawRefund{
		{ID: "r1", RefundLineItems: []domain.RawRefundLineItem{{LineItemID: "li1", Quantity: 2, Subtotal: dec("20")}}},
	}

	lines, stats := NormalizeOrders([]domain.RawOrder{o}, OrderFilter{})
	require.Len(t, lines, 2, "non-contributing lines are kept")

	assert.Equal(t, 0, lines[0].Quantity)
	assert.False(t, lines[0].Contributes())
	assert.False(t, lines[1].Contributes())
	assert.Equal(t, 1, stats.FullyRefunded)
	assert.Equal(t, 1, stats.Free)
}

func TestNormalizeOrdersDiscounts(t *testing.T) {
	allocated := lineItem("li1", "v1", "", 2, "20")
	allocated.TotalDiscount = dec("99")
	allocated.DiscountAllocations = []domain.DiscountAllocation{{Amount: dec("3")}, {Amount: dec("2.5")}}

	fallback := lineItem("li2", "v3", "", 1, "50")
	fallback.TotalDiscount = dec("5")

	lines, _ := NormalizeOrders([]domain.RawOrder{order("1003", daysAgo(1), allocated, fallback)}, OrderFilter{})
	require.Len(t, lines, 2)

	assert.True(t, dec("5.5").Equal(lines[0].Discounts))
	assert.True(t, dec("34.5").Equal(lines[0].NetSales))
	assert.True(t, dec("5").Equal(lines[1].Discounts))
	assert.True(t, dec("45").Equal(lines[1].NetSales))
}

func TestNormalizeOrdersExclusions(t *testing.T) {
	testOrder := order("t1", daysAgo(1), lineItem("a", "v1", "", 1, "10"))
	testOrder.Test = true

	tagged := order("t2", daysAgo(1), lineItem("b", "v1", "", 1, "10"))
	tagged.Tags = "vip, Sample "

	untagged := order("t3", daysAgo(1), lineItem("c", "v1", "", 1, "10"))
	untagged.Tags = "vip, wholesale"

	old := order("t4", daysAgo(400), lineItem("d", "v1", "", 1, "10"))

	w := NewWindows(testNow)
	lines, stats := NormalizeOrders(
		[]domain.RawOrder{testOrder, tagged, untagged, old},
		OrderFilter{HorizonStart: w.HorizonStart(), ExcludedTags: DefaultExcludedTags},
	)

	require.Len(t, lines, 1)
	assert.Equal(t, "t3", lines[0].OrderID)
	assert.Equal(t, 4, stats.OrdersReceived)
	assert.Equal(t, 2, stats.OrdersExcluded)
	assert.Equal(t, 1, stats.OrdersOutsideHorizon)
}

func TestNormalizeOrdersRefundCannotExceedOrdered(t *testing.T) {
	o := order("1004", daysAgo(2), lineItem("li1", "v1", "", 1, "10"))
	o.Refunds = []domain.RawRefund{
		{RefundLineItems: []domain.RawRefundLineItem{{LineItemID: "li1", Quantity: 3, Subtotal: dec("10")}}},
	}

	lines, _ := NormalizeOrders([]domain.RawOrder{o}, OrderFilter{})
	require.Len(t, lines, 1)
	assert.Equal(t, 0, lines[0].Quantity)
	assert.Equal(t, 1, lines[0].RefundedQuantity)
}
