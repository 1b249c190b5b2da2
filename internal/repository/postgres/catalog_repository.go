// backend-go/internal/repository/postgres/catalog_repository.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
)

type catalogRow struct {
	ProductID     string `db:"product_id"`
	Title         string `db:"title"`
	Vendor        string `db:"vendor"`
	VariantTitles []byte `db:"variant_titles"`
}

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// UpsertProducts records the latest known title, vendor and variant titles
// of each product. Variant titles seen earlier are kept when a variant
// disappears from the catalog.
func (r *catalogRepository) UpsertProducts(ctx context.Context, products []domain.ProductDetail) error {
	if len(products) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO catalog_products (
				product_id, title, vendor, variant_titles, updated_at
			) VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (product_id)
			DO UPDATE SET
				title = EXCLUDED.title,
				vendor = EXCLUDED.vendor,
				variant_titles = catalog_products.variant_titles || EXCLUDED.variant_titles,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range products {
			titles := p.VariantTitles
			if titles == nil {
				titles = map[string]string{}
			}
			raw, err := json.Marshal(titles)
			if err != nil {
				return fmt.Errorf("failed to encode variant titles of %s: %w", p.ProductID, err)
			}

			if _, err := stmt.ExecContext(ctx, p.ProductID, p.Title, p.Brand, raw); err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.ProductID, err)
			}
		}

		return nil
	})
}

// GetProduct returns the archived detail of a product, or
// domain.ErrProductNotFound.
func (r *catalogRepository) GetProduct(ctx context.Context, productID string) (domain.ProductDetail, error) {
	query := `
		SELECT product_id, title, vendor, variant_titles
		FROM catalog_products
		WHERE product_id = $1
	`

	var row catalogRow
	if err := r.db.GetContext(ctx, &row, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProductDetail{}, domain.ErrProductNotFound
		}
		return domain.ProductDetail{}, fmt.Errorf("error getting archived product %s: %w", productID, err)
	}

	detail := domain.ProductDetail{
		ProductID: row.ProductID,
		Title:     row.Title,
		Brand:     row.Vendor,
		Found:     true,
	}
	if len(row.VariantTitles) > 0 {
		if err := json.Unmarshal(row.VariantTitles, &detail.VariantTitles); err != nil {
			return domain.ProductDetail{}, fmt.Errorf("error decoding variant titles of %s: %w", productID, err)
		}
	}
	return detail, nil
}
