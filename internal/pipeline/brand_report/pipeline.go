package brand_report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrMissingReferenceTime is returned when an Input carries no Now.
var ErrMissingReferenceTime = errors.New("reference time is required")

// Engine reconciles an inventory snapshot with a year of orders into the
// brand report. One Engine may serve many generations; each generation owns
// its resolver and product detail cache.
type Engine struct {
	cfg     Config
	fetcher ProductDetailFetcher
}

// NewEngine creates an engine. fetcher names deleted products and may be nil.
func NewEngine(cfg Config, fetcher ProductDetailFetcher) *Engine {
	if cfg.MinFuzzyNameLength <= 0 {
		cfg.MinFuzzyNameLength = DefaultConfig().MinFuzzyNameLength
	}
	return &Engine{cfg: cfg, fetcher: fetcher}
}

// Generate runs snapshot building, normalization, resolution, aggregation and
// assembly in sequence. Identical inputs yield identical reports.
func (e *Engine) Generate(ctx context.Context, in Input) (*domain.Report, error) {
	if in.Now.IsZero() {
		return nil, ErrMissingReferenceTime
	}
	start := time.Now()

	windows := NewWindows(in.Now)
	snapshot := BuildSnapshot(in.Products, in.Costs)
	lines, normStats := NormalizeOrders(in.Orders, OrderFilter{
		HorizonStart: windows.HorizonStart(),
		ExcludedTags: e.cfg.ExcludedTags,
	})

	resolver := NewResolver(snapshot, e.fetcher, NewProductDetailCache(), WithMinFuzzyNameLength(e.cfg.MinFuzzyNameLength))
	aggregator := NewAggregator(windows)

	notContributing := 0
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		if !line.Contributes() {
			notContributing++
			continue
		}
		key, method := resolver.Resolve(ctx, line)
		if method == MatchNone {
			continue
		}
		aggregator.Add(key, line)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation cancelled: %w", err)
	}

	brands, err := Assemble(resolver, aggregator)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble report: %w", err)
	}

	stats := resolver.Stats()
	diag := domain.ReportDiagnostics{
		InventoryVariants:    len(snapshot),
		OrdersReceived:       normStats.OrdersReceived,
		OrdersExcluded:       normStats.OrdersExcluded,
		LinesProcessed:       stats.Processed,
		LinesNotContributing: notContributing,
		FullyRefundedLines:   normStats.FullyRefunded,
		FreeLines:            normStats.Free,
		MatchedByVariant:     stats.MatchedByVariant,
		MatchedBySKU:         stats.MatchedBySKU,
		MatchedByName:        stats.MatchedByName,
		RedirectedDuplicates: stats.RedirectedDuplicates,
		MatchedDeleted:       stats.MatchedDeleted,
		Unmatched:            stats.Unmatched,
		CatalogDuplicates:    stats.CatalogDuplicates,
		DeletedProducts:      len(resolver.DeletedProducts()),
		DetailLookups:        stats.DetailLookups,
		DetailLookupFailures: stats.DetailLookupFailures,
		MatchRate:            matchRate(stats),
	}

	log.Info().
		Int("variants", diag.InventoryVariants).
		Int("orders", diag.OrdersReceived).
		Int("orders_excluded", diag.OrdersExcluded).
		Int("lines", diag.LinesProcessed).
		Int("by_variant", diag.MatchedByVariant).
		Int("by_sku", diag.MatchedBySKU).
		Int("by_name", diag.MatchedByName).
		Int("deleted", diag.MatchedDeleted).
		Int("unmatched", diag.Unmatched).
		Float64("match_rate", diag.MatchRate).
		Dur("took", time.Since(start)).
		Msg("Brand report generated")

	return &domain.Report{
		GeneratedAt: windows.Now,
		Cutoffs:     windows.Describe(),
		Brands:      brands,
		Diagnostics: diag,
	}, nil
}

// matchRate is the percentage of processed lines that were attributed,
// rounded to one decimal.
func matchRate(s ResolverStats) float64 {
	if s.Processed == 0 {
		return 100
	}
	rate := float64(s.Matched()) / float64(s.Processed) * 100
	return math.Round(rate*10) / 10
}
