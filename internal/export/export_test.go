package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		GeneratedAt: time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		Brands: []domain.BrandGroup{
			{
				Brand: "Brand A",
				Products: []domain.ReportRow{
					{
						Kind: domain.RowKindLive, Brand: "Brand A", Product: "Lipstick Red", SKU: "LIP-RED", VariantID: "v1",
						Stock: 10, UnitPrice: decimal.NewFromInt(20), UnitCost: decimal.NewFromInt(8),
						StockValue: decimal.NewFromInt(80), CostValue: decimal.NewFromInt(80), RetailValue: decimal.NewFromInt(200),
						V60: 2, V120: 4, V180: 4, V365: 4,
						NetSalesV60: decimal.NewFromInt(40), NetSalesV365: decimal.NewFromInt(80), NetSales: decimal.NewFromInt(80),
						Suggestion3M: decimal.Zero, Alert: domain.AlertOK,
					},
					{
						Kind: domain.RowKindDeleted, Brand: "Brand A", Product: "[Deleted] Old Mascara",
						V60: 1, V120: 1, V180: 1, V365: 1, NetSalesV365: decimal.RequireFromString("15.5"),
						Alert: domain.AlertDeleted, IsDeleted: true,
					},
				},
				Totals: domain.BrandTotals{
					StockValue: decimal.NewFromInt(80), RetailValue: decimal.NewFromInt(200),
					UnitsV60: 3, UnitsV120: 5, UnitsV180: 5, UnitsV365: 5,
					NetSalesV365: decimal.RequireFromString("95.5"),
				},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "Lipstick Red", records[1][1])
	assert.Equal(t, "80.00", records[1][8])
	assert.Equal(t, "OK", records[1][20])
	assert.Equal(t, "[Deleted] Old Mascara", records[2][1])
	assert.Equal(t, "15.50", records[2][17])
	assert.Equal(t, []string{"Brand A", "TOTAL"}, records[3][:2])
	assert.Equal(t, "95.50", records[3][17])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"Brand A"}, rows[1])
	assert.Equal(t, "Lipstick Red", rows[2][1])
	assert.Equal(t, "10", rows[2][5])
	assert.Equal(t, "TOTAL", rows[4][1])
	assert.Equal(t, "95.5", rows[4][17])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "brand-report-2024-06-15.xlsx", FileName(sampleReport(), ".xlsx"))
	assert.Equal(t, "brand-report-2024-06-15.csv", FileName(sampleReport(), "csv"))
}
