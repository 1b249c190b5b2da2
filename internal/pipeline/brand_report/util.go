package brand_report

import (
	"strings"
	"unicode"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultVariantTitle is the title the catalog gives to the single variant of
// a product without options.
const defaultVariantTitle = "Default Title"

// foldText strips diacritics and case-folds s.
// Transformers are stateful, so a fresh chain is built per call.
func foldText(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// normalizeSKU folds a SKU and drops every whitespace rune, so " ab-12 " and
// "AB- 12" compare equal.
func normalizeSKU(sku string) string {
	folded := foldText(sku)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// normalizeName folds a product name and reduces punctuation and whitespace
// runs to single spaces.
func normalizeName(name string) string {
	folded := foldText(name)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(mapped), " ")
}

// normalizeBrand trims a brand, preserving case. Missing brands become
// domain.UnknownBrand so every row lands in exactly one group.
func normalizeBrand(brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return domain.UnknownBrand
	}
	return brand
}

// brandNameKey is the case- and accent-insensitive identity of a logical product.
func brandNameKey(brand, name string) string {
	return normalizeName(normalizeBrand(brand)) + "|" + normalizeName(name)
}

// fullProductName joins a product title and its variant title, skipping the
// variant part when it is the default title or already repeated in the title.
func fullProductName(title, variantTitle string) string {
	title = strings.TrimSpace(title)
	variantTitle = strings.TrimSpace(variantTitle)

	if variantTitle == "" || strings.EqualFold(variantTitle, defaultVariantTitle) {
		return title
	}
	if title == "" {
		return variantTitle
	}

	nt, nv := normalizeName(title), normalizeName(variantTitle)
	switch {
	case nv == "" || strings.Contains(nt, nv):
		return title
	case strings.Contains(nv, nt):
		return variantTitle
	}
	return title + " " + variantTitle
}

// round2 rounds a monetary amount to cents.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// orderedSet keeps unique non-empty strings in insertion order.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *orderedSet) add(values ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

func (s *orderedSet) values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
