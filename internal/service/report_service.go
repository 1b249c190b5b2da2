package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/cache"
	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/andresuchdata/inventra/backend-go/internal/export"
	"github.com/andresuchdata/inventra/backend-go/internal/pipeline/brand_report"
	"github.com/andresuchdata/inventra/backend-go/internal/repository"
	"github.com/andresuchdata/inventra/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ShopSource is the upstream commerce platform.
type ShopSource interface {
	FetchInventory(ctx context.Context) ([]domain.RawProduct, error)
	FetchUnitCosts(ctx context.Context, inventoryItemIDs []string) (map[string]decimal.Decimal, error)
	FetchOrders(ctx context.Context, since time.Time) ([]domain.RawOrder, error)
	FetchProductDetail(ctx context.Context, productID string) (domain.ProductDetail, error)
	FetchLocations(ctx context.Context) ([]domain.Location, error)
}

const maxParallelUploads = 4

type ReportService struct {
	source  ShopSource
	archive repository.CatalogRepository
	cache   cache.ReportCache
	shop    string
	cfg     config.ReportConfig
	now     func() time.Time
}

type Option func(*ReportService)

// WithArchive enables the catalog archive. Inventory fetches are upserted
// into it and deleted products are named from it.
func WithArchive(archive repository.CatalogRepository) Option {
	return func(s *ReportService) { s.archive = archive }
}

func WithCache(c cache.ReportCache) Option {
	return func(s *ReportService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock overrides the reference time source.
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(source ShopSource, shop string, cfg config.ReportConfig, opts ...Option) *ReportService {
	s := &ReportService{
		source: source,
		cache:  cache.NewNoopReportCache(),
		shop:   shop,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) engineConfig() brand_report.Config {
	cfg := brand_report.DefaultConfig()
	if s.cfg.ExcludedTags != nil {
		cfg.ExcludedTags = s.cfg.ExcludedTags
	}
	if s.cfg.MinFuzzyNameLength > 0 {
		cfg.MinFuzzyNameLength = s.cfg.MinFuzzyNameLength
	}
	return cfg
}

func (s *ReportService) detailFetcher() brand_report.ProductDetailFetcher {
	if s.archive != nil {
		return repository.NewArchivedDetailFetcher(s.archive, s.source)
	}
	return s.source
}

// GetReport returns today's report, from cache unless refresh is set.
func (s *ReportService) GetReport(ctx context.Context, refresh bool) (*domain.Report, error) {
	now := s.now().UTC()
	engineCfg := s.engineConfig()
	params := cache.ReportParams{
		Shop:         s.shop,
		Day:          now,
		HorizonDays:  s.cfg.HorizonDays,
		ExcludedTags: engineCfg.ExcludedTags,
	}

	if !refresh {
		if report, ok, err := s.cache.GetReport(ctx, params); err == nil && ok {
			return report, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("brand report: cache get failed")
		}
	}

	if s.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerateTimeout)
		defer cancel()
	}

	in, err := s.fetchInput(ctx, now)
	if err != nil {
		return nil, err
	}

	report, err := brand_report.NewEngine(engineCfg, s.detailFetcher()).Generate(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetReport(ctx, params, report); err != nil {
		log.Warn().Err(err).Msg("brand report: cache set failed")
	}

	return report, nil
}

// Replay generates a report from frozen inputs without touching upstream.
func (s *ReportService) Replay(ctx context.Context, in brand_report.Input) (*domain.Report, error) {
	return brand_report.NewEngine(s.engineConfig(), nil).Generate(ctx, in)
}

// fetchInput materializes inventory and orders concurrently.
func (s *ReportService) fetchInput(ctx context.Context, now time.Time) (brand_report.Input, error) {
	in := brand_report.Input{Now: now}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, costs, err := s.fetchCatalog(gctx)
		if err != nil {
			return err
		}
		in.Products, in.Costs = products, costs
		return nil
	})

	g.Go(func() error {
		orders, err := s.source.FetchOrders(gctx, s.ordersSince(now))
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrOrdersFetch, err)
		}
		in.Orders = orders
		return nil
	})

	if err := g.Wait(); err != nil {
		return brand_report.Input{}, err
	}
	return in, nil
}

// fetchCatalog loads products and their unit costs. Missing costs degrade
// to zero instead of failing the report.
func (s *ReportService) fetchCatalog(ctx context.Context) ([]domain.RawProduct, map[string]decimal.Decimal, error) {
	products, err := s.source.FetchInventory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInventoryFetch, err)
	}

	s.archiveProducts(ctx, products)

	var itemIDs []string
	for _, p := range products {
		for _, v := range p.Variants {
			if v.InventoryItemID != "" {
				itemIDs = append(itemIDs, v.InventoryItemID)
			}
		}
	}

	costs, err := s.source.FetchUnitCosts(ctx, itemIDs)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		log.Warn().Err(err).Int("items", len(itemIDs)).Msg("brand report: unit cost fetch failed, using zero costs")
		costs = map[string]decimal.Decimal{}
	}
	return products, costs, nil
}

func (s *ReportService) archiveProducts(ctx context.Context, products []domain.RawProduct) {
	if s.archive == nil {
		return
	}
	details := repository.DetailsFromProducts(products)
	if err := s.archive.UpsertProducts(ctx, details); err != nil {
		log.Warn().Err(err).Int("products", len(details)).Msg("brand report: catalog archive upsert failed")
		return
	}
	log.Debug().Int("products", len(details)).Msg("brand report: catalog archived")
}

// ordersSince is the start of the order history needed for now.
func (s *ReportService) ordersSince(now time.Time) time.Time {
	since := brand_report.NewWindows(now).HorizonStart()
	if s.cfg.HorizonDays > domain.WindowDays[domain.W365] {
		t := now.UTC().AddDate(0, 0, -s.cfg.HorizonDays)
		since = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return since
}

// Inventory returns the flattened variant snapshot.
func (s *ReportService) Inventory(ctx context.Context) ([]domain.VariantRecord, error) {
	products, costs, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return brand_report.BuildSnapshot(products, costs), nil
}

// Orders returns the normalized order lines inside the report horizon.
func (s *ReportService) Orders(ctx context.Context) ([]domain.OrderLine, error) {
	now := s.now().UTC()
	orders, err := s.source.FetchOrders(ctx, s.ordersSince(now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOrdersFetch, err)
	}
	lines, _ := brand_report.NormalizeOrders(orders, brand_report.OrderFilter{
		HorizonStart: brand_report.NewWindows(now).HorizonStart(),
		ExcludedTags: s.engineConfig().ExcludedTags,
	})
	return lines, nil
}

func (s *ReportService) Locations(ctx context.Context) ([]domain.Location, error) {
	return s.source.FetchLocations(ctx)
}

// Artefacts renders the report in every published format, keyed by file name.
func Artefacts(report *domain.Report) (map[string][]byte, error) {
	out := make(map[string][]byte, 3)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report json: %w", err)
	}
	out[export.FileName(report, "json")] = data

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, report); err != nil {
		return nil, err
	}
	out[export.FileName(report, "csv")] = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := export.WriteXLSX(&buf, report); err != nil {
		return nil, err
	}
	out[export.FileName(report, "xlsx")] = bytes.Clone(buf.Bytes())

	return out, nil
}

// Publish uploads every artefact of report to each store under
// prefix/<report date>/. It returns the uploaded keys.
func Publish(ctx context.Context, report *domain.Report, prefix string, stores ...storage.ObjectStorage) ([]string, error) {
	artefacts, err := Artefacts(report)
	if err != nil {
		return nil, err
	}

	dir := path.Join(prefix, report.GeneratedAt.UTC().Format("2006-01-02"))
	keys := make([]string, 0, len(artefacts))
	for name := range artefacts {
		keys = append(keys, path.Join(dir, name))
	}
	slices.Sort(keys)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for _, store := range stores {
		for name, data := range artefacts {
			key := path.Join(dir, name)
			g.Go(func() error {
				return store.UploadObject(gctx, key, data)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}

	log.Info().Str("dir", dir).Int("stores", len(stores)).Int("artefacts", len(artefacts)).Msg("Brand report published")
	return keys, nil
}
