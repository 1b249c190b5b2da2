package brand_report

import (
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Windows holds the cutoffs of the trailing windows, computed once from a
// single reference time.
type Windows struct {
	Now     time.Time
	Cutoffs [domain.NumWindows]time.Time
}

// NewWindows computes each cutoff as the UTC start of day of now minus the
// window length.
func NewWindows(now time.Time) Windows {
	w := Windows{Now: now.UTC()}
	for i, days := range domain.WindowDays {
		t := w.Now.AddDate(0, 0, -days)
		w.Cutoffs[i] = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return w
}

// Contains reports whether t falls inside window i. Cutoffs are inclusive.
func (w Windows) Contains(i int, t time.Time) bool {
	return !t.Before(w.Cutoffs[i])
}

// HorizonStart is the cutoff of the longest window.
func (w Windows) HorizonStart() time.Time {
	return w.Cutoffs[domain.W365]
}

func (w Windows) Describe() []domain.WindowCutoff {
	out := make([]domain.WindowCutoff, 0, domain.NumWindows)
	for i, days := range domain.WindowDays {
		out = append(out, domain.WindowCutoff{Days: days, Cutoff: w.Cutoffs[i]})
	}
	return out
}

// WindowedAggregate accumulates the sales of one canonical key.
type WindowedAggregate struct {
	Units          [domain.NumWindows]int
	WindowNetSales [domain.NumWindows]decimal.Decimal
	GrossSales     decimal.Decimal
	Discounts      decimal.Decimal
	Refunds        decimal.Decimal
	NetSales       decimal.Decimal
	Lines          int
}

// Aggregator sums attributed order lines into nested trailing windows.
// It is not safe for concurrent use.
type Aggregator struct {
	windows Windows
	byKey   map[CanonicalKey]*WindowedAggregate
}

func NewAggregator(windows Windows) *Aggregator {
	return &Aggregator{
		windows: windows,
		byKey:   make(map[CanonicalKey]*WindowedAggregate),
	}
}

// Add attributes line to key. Lines that do not contribute or fall before
// the longest window are ignored, and false is returned.
func (a *Aggregator) Add(key CanonicalKey, line domain.OrderLine) bool {
	if !line.Contributes() || !a.windows.Contains(domain.W365, line.CreatedAt) {
		return false
	}

	agg, ok := a.byKey[key]
	if !ok {
		agg = &WindowedAggregate{}
		a.byKey[key] = agg
	}

	for i := range domain.WindowDays {
		if a.windows.Contains(i, line.CreatedAt) {
			agg.Units[i] += line.Quantity
			agg.WindowNetSales[i] = agg.WindowNetSales[i].Add(line.NetSales)
		}
	}
	agg.GrossSales = agg.GrossSales.Add(line.GrossSales)
	agg.Discounts = agg.Discounts.Add(line.Discounts)
	agg.Refunds = agg.Refunds.Add(line.Refunds)
	agg.NetSales = agg.NetSales.Add(line.NetSales)
	agg.Lines++
	return true
}

// Get returns the aggregate of key, zero when nothing was attributed to it.
func (a *Aggregator) Get(key CanonicalKey) WindowedAggregate {
	if agg, ok := a.byKey[key]; ok {
		return *agg
	}
	return WindowedAggregate{}
}

func (a *Aggregator) Windows() Windows {
	return a.windows
}
