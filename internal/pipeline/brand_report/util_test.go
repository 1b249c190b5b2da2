package brand_report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSKU(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LIP-RED", "lip-red"},
		{"  lip - red ", "lip-red"},
		{"ÉCLAT 01", "eclat01"},
		{"Crème\tNº5", "cremeno5"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeSKU(tt.in))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "eau de parfum 50ml", normalizeName("  Eau de Parfum - 50ML "))
	assert.Equal(t, "creme brulee", normalizeName("Crème  Brûlée"))
	assert.Equal(t, "", normalizeName(" - "))
}

func TestNormalizeBrand(t *testing.T) {
	assert.Equal(t, "Brand A", normalizeBrand("  Brand A "))
	assert.Equal(t, "brand a", normalizeBrand("brand a"))
	assert.Equal(t, "Unknown", normalizeBrand("   "))
}

func TestBrandNameKeyIgnoresCaseAndAccents(t *testing.T) {
	assert.Equal(t, brandNameKey("Maison Léa", "Crème Rose"), brandNameKey("MAISON LEA", "creme rose"))
	assert.NotEqual(t, brandNameKey("A", "Rose"), brandNameKey("B", "Rose"))
}

func TestFullProductName(t *testing.T) {
	tests := []struct {
		name         string
		title        string
		variantTitle string
		want         string
	}{
		{"plain", "Lipstick", "Red", "Lipstick Red"},
		{"default title", "Serum", "Default Title", "Serum"},
		{"empty variant", "Serum", "", "Serum"},
		{"variant already in title", "Lipstick Red", "red", "Lipstick Red"},
		{"title already in variant", "Lipstick", "Lipstick Red", "Lipstick Red"},
		{"no title", "", "Red", "Red"},
		{"trims", "  Lipstick ", " Red ", "Lipstick Red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fullProductName(tt.title, tt.variantTitle))
		})
	}
}

func TestOrderedSet(t *testing.T) {
	var s orderedSet
	s.add("b", "a", "", " b ", "c")
	s.add("a")
	assert.Equal(t, []string{"b", "a", "c"}, s.values())
}
