// backend-go/internal/repository/catalog_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// CatalogRepository archives product metadata so products removed from the
// catalog can still be named.
type CatalogRepository interface {
	UpsertProducts(ctx context.Context, products []domain.ProductDetail) error
	GetProduct(ctx context.Context, productID string) (domain.ProductDetail, error)
}

// DetailFetcher looks product metadata up upstream.
type DetailFetcher interface {
	FetchProductDetail(ctx context.Context, productID string) (domain.ProductDetail, error)
}

// ArchivedDetailFetcher answers from the archive first and falls back to the
// upstream fetcher.
type ArchivedDetailFetcher struct {
	archive  CatalogRepository
	upstream DetailFetcher
}

func NewArchivedDetailFetcher(archive CatalogRepository, upstream DetailFetcher) *ArchivedDetailFetcher {
	return &ArchivedDetailFetcher{archive: archive, upstream: upstream}
}

func (f *ArchivedDetailFetcher) FetchProductDetail(ctx context.Context, productID string) (domain.ProductDetail, error) {
	detail, err := f.archive.GetProduct(ctx, productID)
	switch {
	case err == nil:
		return detail, nil
	case !errors.Is(err, domain.ErrProductNotFound):
		log.Warn().Err(err).Str("product_id", productID).Msg("Catalog archive lookup failed, asking upstream")
	}

	if f.upstream == nil {
		return domain.ProductDetail{ProductID: productID}, nil
	}
	return f.upstream.FetchProductDetail(ctx, productID)
}

// DetailsFromProducts extracts the archivable metadata of catalog products.
func DetailsFromProducts(products []domain.RawProduct) []domain.ProductDetail {
	details := make([]domain.ProductDetail, 0, len(products))
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		titles := make(map[string]string, len(p.Variants))
		for _, v := range p.Variants {
			if v.ID != "" {
				titles[v.ID] = v.Title
			}
		}
		details = append(details, domain.ProductDetail{
			ProductID:     p.ID,
			Title:         p.Title,
			Brand:         p.Vendor,
			VariantTitles: titles,
			Found:         true,
		})
	}
	return details
}
