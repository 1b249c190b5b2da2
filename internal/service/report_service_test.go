package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/cache"
	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/andresuchdata/inventra/backend-go/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func qty(n int) *int { return &n }

type fakeSource struct {
	products   []domain.RawProduct
	orders     []domain.RawOrder
	costs      map[string]decimal.Decimal
	inventErr  error
	ordersErr  error
	costsErr   error
	ordersFrom time.Time
	calls      int
	mu         sync.Mutex
}

func (f *fakeSource) FetchInventory(ctx context.Context) ([]domain.RawProduct, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.products, f.inventErr
}

func (f *fakeSource) FetchUnitCosts(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	return f.costs, f.costsErr
}

func (f *fakeSource) FetchOrders(ctx context.Context, since time.Time) ([]domain.RawOrder, error) {
	f.mu.Lock()
	f.ordersFrom = since
	f.mu.Unlock()
	return f.orders, f.ordersErr
}

func (f *fakeSource) FetchProductDetail(ctx context.Context, productID string) (domain.ProductDetail, error) {
	return domain.ProductDetail{ProductID: productID, Title: "Old Cream", Brand: "Brand C", Found: true}, nil
}

func (f *fakeSource) FetchLocations(ctx context.Context) ([]domain.Location, error) {
	return []domain.Location{{ID: "1", Name: "Main"}}, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		products: []domain.RawProduct{{
			ID: "p1", Title: "Lipstick", Vendor: "Brand A",
			Variants: []domain.RawVariant{
				{ID: "v1", Title: "Red", SKU: "LIP-RED", Price: decimal.NewFromInt(20), InventoryQuantity: qty(10), InventoryItemID: "i1"},
			},
		}},
		costs: map[string]decimal.Decimal{"i1": decimal.NewFromInt(8)},
		orders: []domain.RawOrder{
			{
				ID: "o1", CreatedAt: testNow.AddDate(0, 0, -10),
				LineItems: []domain.RawLineItem{
					{ID: "l1", VariantID: "v1", SKU: "LIP-RED", Quantity: 2, Price: decimal.NewFromInt(20)},
				},
			},
			{
				ID: "o2", CreatedAt: testNow.AddDate(0, 0, -30),
				LineItems: []domain.RawLineItem{
					{ID: "l2", ProductID: "p9", VariantID: "v9", Title: "Cream", Quantity: 1, Price: decimal.NewFromInt(15)},
				},
			},
		},
	}
}

type fakeArchive struct {
	upserted []domain.ProductDetail
	err      error
}

func (a *fakeArchive) UpsertProducts(ctx context.Context, products []domain.ProductDetail) error {
	a.upserted = append(a.upserted, products...)
	return a.err
}

func (a *fakeArchive) GetProduct(ctx context.Context, productID string) (domain.ProductDetail, error) {
	return domain.ProductDetail{}, domain.ErrProductNotFound
}

type memoryCache struct {
	reports map[string]*domain.Report
}

func (m *memoryCache) GetReport(ctx context.Context, params cache.ReportParams) (*domain.Report, bool, error) {
	r, ok := m.reports[params.Shop]
	return r, ok, nil
}

func (m *memoryCache) SetReport(ctx context.Context, params cache.ReportParams, report *domain.Report) error {
	m.reports[params.Shop] = report
	return nil
}

func (m *memoryCache) InvalidateAll(ctx context.Context) error {
	m.reports = map[string]*domain.Report{}
	return nil
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *memoryStore) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (m *memoryStore) UploadObject(ctx context.Context, key string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func newTestService(src *fakeSource, opts ...Option) *ReportService {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewReportService(src, "test-shop", config.ReportConfig{HorizonDays: 365}, opts...)
}

func TestGetReport(t *testing.T) {
	src := newFakeSource()
	archive := &fakeArchive{}
	svc := newTestService(src, WithArchive(archive))

	report, err := svc.GetReport(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, testNow, report.GeneratedAt)
	assert.Equal(t, time.Date(2023, 6, 16, 0, 0, 0, 0, time.UTC), src.ordersFrom)
	require.Len(t, report.Brands, 2)
	assert.Equal(t, "Brand A", report.Brands[0].Brand)
	assert.Equal(t, 2, report.Brands[0].Products[0].V60)
	assert.Equal(t, "Brand C", report.Brands[1].Brand)
	assert.True(t, report.Brands[1].Products[0].IsDeleted)

	require.Len(t, archive.upserted, 1)
	assert.Equal(t, "p1", archive.upserted[0].ProductID)
}

func TestGetReportUsesCache(t *testing.T) {
	src := newFakeSource()
	mc := &memoryCache{reports: map[string]*domain.Report{}}
	svc := newTestService(src, WithCache(mc))

	first, err := svc.GetReport(context.Background(), false)
	require.NoError(t, err)
	second, err := svc.GetReport(context.Background(), false)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, src.calls)

	_, err = svc.GetReport(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestGetReportFetchErrors(t *testing.T) {
	src := newFakeSource()
	src.inventErr = errors.New("boom")
	_, err := newTestService(src).GetReport(context.Background(), true)
	assert.ErrorIs(t, err, domain.ErrInventoryFetch)

	src = newFakeSource()
	src.ordersErr = errors.New("boom")
	_, err = newTestService(src).GetReport(context.Background(), true)
	assert.ErrorIs(t, err, domain.ErrOrdersFetch)
}

func TestGetReportToleratesCostFailure(t *testing.T) {
	src := newFakeSource()
	src.costsErr = errors.New("forbidden")

	report, err := newTestService(src).GetReport(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.Brands[0].Products[0].UnitCost.IsZero())
}

func TestOrdersSinceLongerHorizon(t *testing.T) {
	svc := NewReportService(newFakeSource(), "s", config.ReportConfig{HorizonDays: 400})
	assert.Equal(t, time.Date(2023, 5, 12, 0, 0, 0, 0, time.UTC), svc.ordersSince(testNow))
}

func TestInventoryAndOrders(t *testing.T) {
	svc := newTestService(newFakeSource())

	records, err := svc.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Lipstick Red", records[0].ProductName)

	lines, err := svc.Orders(context.Background())
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	locations, err := svc.Locations(context.Background())
	require.NoError(t, err)
	assert.Len(t, locations, 1)
}

func TestPublish(t *testing.T) {
	report, err := newTestService(newFakeSource()).GetReport(context.Background(), true)
	require.NoError(t, err)

	a := &memoryStore{objects: map[string][]byte{}}
	b := &memoryStore{objects: map[string][]byte{}}
	keys, err := Publish(context.Background(), report, "reports", a, b)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"reports/2024-06-15/brand-report-2024-06-15.csv",
		"reports/2024-06-15/brand-report-2024-06-15.json",
		"reports/2024-06-15/brand-report-2024-06-15.xlsx",
	}, keys)
	for _, key := range keys {
		assert.NotEmpty(t, a.objects[key])
		assert.NotEmpty(t, b.objects[key])
	}
}

func TestPublishFailure(t *testing.T) {
	report, err := newTestService(newFakeSource()).GetReport(context.Background(), true)
	require.NoError(t, err)

	_, err = Publish(context.Background(), report, "reports", &memoryStore{err: errors.New("denied")})
	assert.Error(t, err)
}
