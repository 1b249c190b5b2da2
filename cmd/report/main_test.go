package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryJSON = `[
  {"id": "p1", "title": "Lipstick", "vendor": "Brand A", "variants": [
    {"id": "v1", "title": "Red", "sku": "LIP-RED", "price": "20.00", "inventory_quantity": 10, "inventory_item_id": "i1"}
  ]}
]`

const ordersJSON = `[
  {"id": "o1", "created_at": "2024-06-05T12:00:00Z", "line_items": [
    {"id": "l1", "variant_id": "v1", "sku": "LIP-RED", "title": "Lipstick", "quantity": 3, "price": "20.00"}
  ]},
  {"id": "o2", "created_at": "2024-01-05T12:00:00Z", "line_items": [
    {"id": "l2", "product_id": "p7", "variant_id": "v7", "sku": "OLD-1", "title": "Old Cream", "vendor": "Brand Z", "quantity": 1, "price": "15.00"}
  ]}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runReplayCLI(t *testing.T, dir, out string, extra ...string) {
	t.Helper()
	args := []string{"report", "replay",
		"--inventory", writeFile(t, dir, "inventory.json", inventoryJSON),
		"--orders", writeFile(t, dir, "orders.json", ordersJSON),
		"--costs", writeFile(t, dir, "costs.json", `{"i1": "8.00"}`),
		"--now", "2024-06-15T10:30:00Z",
		"--out", out,
	}
	require.NoError(t, newApp().Run(append(args, extra...)))
}

func TestReplayJSON(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.json")
	runReplayCLI(t, dir, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Brands, 2)

	live := report.Brands[0].Products[0]
	assert.Equal(t, "Brand A", live.Brand)
	assert.Equal(t, 3, live.V60)
	assert.Equal(t, "8", live.UnitCost.String())

	deleted := report.Brands[1].Products[0]
	assert.Equal(t, "Brand Z", deleted.Brand)
	assert.True(t, deleted.IsDeleted)
	assert.Equal(t, 0, deleted.V60)
	assert.Equal(t, 1, deleted.V365)
}

func TestReplayIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json")
	runReplayCLI(t, dir, first)
	runReplayCLI(t, dir, second)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestReplayCSV(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.csv")
	runReplayCLI(t, dir, out, "--format", "csv")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Lipstick Red")
	assert.Contains(t, string(data), "TOTAL")
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", f)

	_, err = parseFormat("pdf")
	assert.Error(t, err)
}
