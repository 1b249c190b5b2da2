package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchive struct {
	details map[string]domain.ProductDetail
	err     error
}

func (s stubArchive) UpsertProducts(context.Context, []domain.ProductDetail) error { return nil }

func (s stubArchive) GetProduct(_ context.Context, productID string) (domain.ProductDetail, error) {
	if s.err != nil {
		return domain.ProductDetail{}, s.err
	}
	if d, ok := s.details[productID]; ok {
		return d, nil
	}
	return domain.ProductDetail{}, domain.ErrProductNotFound
}

type stubUpstream struct {
	calls int
}

func (s *stubUpstream) FetchProductDetail(_ context.Context, productID string) (domain.ProductDetail, error) {
	s.calls++
	return domain.ProductDetail{ProductID: productID, Title: "From upstream", Found: true}, nil
}

func TestArchivedDetailFetcherPrefersArchive(t *testing.T) {
	upstream := &stubUpstream{}
	f := NewArchivedDetailFetcher(stubArchive{details: map[string]domain.ProductDetail{
		"1": {ProductID: "1", Title: "Archived", Found: true},
	}}, upstream)

	d, err := f.FetchProductDetail(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Archived", d.Title)
	assert.Zero(t, upstream.calls)

	d, err = f.FetchProductDetail(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "From upstream", d.Title)
	assert.Equal(t, 1, upstream.calls)
}

func TestArchivedDetailFetcherFallsBackOnArchiveError(t *testing.T) {
	upstream := &stubUpstream{}
	f := NewArchivedDetailFetcher(stubArchive{err: errors.New("connection refused")}, upstream)

	d, err := f.FetchProductDetail(context.Background(), "3")
	require.NoError(t, err)
	assert.True(t, d.Found)
	assert.Equal(t, 1, upstream.calls)
}

func TestArchivedDetailFetcherWithoutUpstream(t *testing.T) {
	f := NewArchivedDetailFetcher(stubArchive{}, nil)

	d, err := f.FetchProductDetail(context.Background(), "9")
	require.NoError(t, err)
	assert.False(t, d.Found)
	assert.Equal(t, "9", d.ProductID)
}

func TestDetailsFromProducts(t *testing.T) {
	details := DetailsFromProducts([]domain.RawProduct{
		{ID: "1", Title: "Lipstick", Vendor: "Brand A", Variants: []domain.RawVariant{{ID: "11", Title: "Red"}, {Title: "orphan"}}},
		{Title: "no id"},
	})

	require.Len(t, details, 1)
	assert.Equal(t, map[string]string{"11": "Red"}, details[0].VariantTitles)
	assert.Equal(t, "Brand A", details[0].Brand)
	assert.True(t, details[0].Found)
}
