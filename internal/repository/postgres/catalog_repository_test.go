package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return Wrap(sqlx.NewDb(raw, "sqlmock"), 2), mock
}

func TestUpsertProducts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO catalog_products"))
	prep.ExpectExec().
		WithArgs("1", "Lipstick", "Brand A", []byte(`{"11":"Red"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("2", "Serum", "", []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertProducts(context.Background(), []domain.ProductDetail{
		{ProductID: "1", Title: "Lipstick", Brand: "Brand A", VariantTitles: map[string]string{"11": "Red"}},
		{ProductID: "2", Title: "Serum"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProductsRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO catalog_products")).
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.UpsertProducts(context.Background(), []domain.ProductDetail{{ProductID: "1", Title: "Lipstick"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProductsEmptyIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	require.NoError(t, NewCatalogRepository(db).UpsertProducts(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"product_id", "title", "vendor", "variant_titles"}).
		AddRow("50", "Old Mascara", "Brand A", []byte(`{"501":"Black"}`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_products")).WithArgs("50").WillReturnRows(rows)

	detail, err := repo.GetProduct(context.Background(), "50")
	require.NoError(t, err)
	assert.True(t, detail.Found)
	assert.Equal(t, "Old Mascara", detail.Title)
	assert.Equal(t, "Brand A", detail.Brand)
	assert.Equal(t, "Black", detail.VariantTitle("501"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_products")).WithArgs("404").WillReturnError(sql.ErrNoRows)

	_, err := NewCatalogRepository(db).GetProduct(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "pgx", driverName("PGX"))
	assert.Equal(t, "postgres", driverName("postgres"))
	assert.Equal(t, "postgres", driverName(""))
}
