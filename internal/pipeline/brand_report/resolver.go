package brand_report

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// ResolverStats counts how order lines were attributed.
type ResolverStats struct {
	Processed            int
	MatchedByVariant     int
	MatchedBySKU         int
	MatchedByName        int
	RedirectedDuplicates int
	MatchedDeleted       int
	Unmatched            int
	CatalogDuplicates    int
	DetailLookups        int
	DetailLookupFailures int
}

// Matched is the number of processed lines attributed to any key.
func (s ResolverStats) Matched() int {
	return s.Processed - s.Unmatched
}

// LiveProduct is one canonical live key with the inventory records merged into it.
type LiveProduct struct {
	Key         CanonicalKey
	Records     []domain.VariantRecord
	Identifiers []string
	Merged      bool
}

// DeletedProduct is a product synthesized for sales of variants that are no
// longer in the catalog.
type DeletedProduct struct {
	Key         CanonicalKey
	Brand       string
	Name        string
	ProductID   string
	VariantID   string
	SKU         string
	Identifiers []string
}

type liveEntry struct {
	records     []int
	identifiers orderedSet
	redirected  bool
}

type deletedEntry struct {
	brand       string
	name        string
	productID   string
	variantID   string
	sku         string
	identifiers orderedSet
}

type nameEntry struct {
	norm string
	key  CanonicalKey
}

// Resolver maps order lines to canonical product keys against one inventory
// snapshot. It is not safe for concurrent use.
type Resolver struct {
	snapshot    []domain.VariantRecord
	fetcher     ProductDetailFetcher
	cache       *ProductDetailCache
	minFuzzyLen int

	byVariant   map[string]CanonicalKey
	bySKU       map[string]CanonicalKey
	byBrandName map[string]CanonicalKey
	names       []nameEntry

	live         map[CanonicalKey]*liveEntry
	liveOrder    []CanonicalKey
	deleted      map[CanonicalKey]*deletedEntry
	deletedOrder []CanonicalKey

	stats ResolverStats
}

type ResolverOption func(*Resolver)

// WithMinFuzzyNameLength sets the shortest normalized name tried by containment.
func WithMinFuzzyNameLength(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.minFuzzyLen = n
		}
	}
}

// NewResolver indexes snapshot. fetcher may be nil, in which case deleted
// products are named from the order lines alone. A nil cache gets a fresh one.
func NewResolver(snapshot []domain.VariantRecord, fetcher ProductDetailFetcher, cache *ProductDetailCache, opts ...ResolverOption) *Resolver {
	if cache == nil {
		cache = NewProductDetailCache()
	}
	r := &Resolver{
		snapshot:    snapshot,
		fetcher:     fetcher,
		cache:       cache,
		minFuzzyLen: DefaultConfig().MinFuzzyNameLength,
		byVariant:   make(map[string]CanonicalKey),
		bySKU:       make(map[string]CanonicalKey),
		byBrandName: make(map[string]CanonicalKey),
		live:        make(map[CanonicalKey]*liveEntry),
		deleted:     make(map[CanonicalKey]*deletedEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.index()
	return r
}

func (r *Resolver) index() {
	for i, rec := range r.snapshot {
		bn := brandNameKey(rec.Brand, rec.ProductName)
		hasName := normalizeName(rec.ProductName) != ""

		key, duplicate := CanonicalKey(""), false
		if hasName {
			key, duplicate = r.byBrandName[bn]
		}
		if duplicate {
			r.stats.CatalogDuplicates++
			log.Debug().
				Str("brand", rec.Brand).
				Str("product", rec.ProductName).
				Str("variant_id", rec.VariantID).
				Str("merged_into", string(key)).
				Msg("Merging duplicate catalog entry")
		} else {
			key = liveKey(rec, i)
			if _, taken := r.live[key]; taken {
				key = liveKey(domain.VariantRecord{}, i)
			}
			r.live[key] = &liveEntry{}
			r.liveOrder = append(r.liveOrder, key)
			if hasName {
				r.byBrandName[bn] = key
				r.names = append(r.names, nameEntry{norm: normalizeName(rec.ProductName), key: key})
			}
		}

		entry := r.live[key]
		entry.records = append(entry.records, i)
		entry.identifiers.add(rec.VariantID, rec.SKU)

		if rec.VariantID != "" {
			if _, ok := r.byVariant[rec.VariantID]; !ok {
				r.byVariant[rec.VariantID] = key
			}
		}
		if sku := normalizeSKU(rec.SKU); sku != "" {
			if _, ok := r.bySKU[sku]; !ok {
				r.bySKU[sku] = key
			}
		}
	}
}

// Resolve attributes line to a canonical key. The second result is MatchNone
// when the line carries nothing to resolve it by.
func (r *Resolver) Resolve(ctx context.Context, line domain.OrderLine) (CanonicalKey, MatchMethod) {
	r.stats.Processed++

	if line.VariantID != "" {
		if key, ok := r.byVariant[line.VariantID]; ok {
			r.stats.MatchedByVariant++
			return key, MatchVariant
		}
	}

	if sku := normalizeSKU(line.SKU); sku != "" {
		if key, ok := r.bySKU[sku]; ok {
			r.stats.MatchedBySKU++
			return key, MatchSKU
		}
	}

	if key, ok := r.matchByName(line); ok {
		r.stats.MatchedByName++
		return key, MatchName
	}

	key, method := r.resolveMissing(ctx, line)
	switch method {
	case MatchDuplicate:
		r.stats.RedirectedDuplicates++
	case MatchDeleted:
		r.stats.MatchedDeleted++
	default:
		r.stats.Unmatched++
	}
	return key, method
}

// matchByName is the weakest rule: the first inventory name that contains, or
// is contained in, the line's name wins.
func (r *Resolver) matchByName(line domain.OrderLine) (CanonicalKey, bool) {
	name := normalizeName(fullProductName(line.Title, line.VariantTitle))
	if utf8.RuneCountInString(name) < r.minFuzzyLen {
		return "", false
	}
	for _, entry := range r.names {
		if strings.Contains(entry.norm, name) || strings.Contains(name, entry.norm) {
			log.Debug().
				Str("line_name", name).
				Str("inventory_name", entry.norm).
				Str("order_id", line.OrderID).
				Msg("Matched order line by product name")
			return entry.key, true
		}
	}
	return "", false
}

func (r *Resolver) resolveMissing(ctx context.Context, line domain.OrderLine) (CanonicalKey, MatchMethod) {
	if line.VariantID == "" && line.SKU == "" && line.ProductID == "" && strings.TrimSpace(line.Title) == "" {
		return "", MatchNone
	}

	brand, name := r.describeMissing(ctx, line)
	bn := brandNameKey(brand, name)

	if key, ok := r.byBrandName[bn]; ok {
		entry := r.live[key]
		entry.identifiers.add(line.VariantID, line.SKU)
		entry.redirected = true
		return key, MatchDuplicate
	}

	key := deletedKey(bn)
	entry, ok := r.deleted[key]
	if !ok {
		entry = &deletedEntry{
			brand:     brand,
			name:      name,
			productID: line.ProductID,
			variantID: line.VariantID,
			sku:       line.SKU,
		}
		r.deleted[key] = entry
		r.deletedOrder = append(r.deletedOrder, key)
		log.Debug().
			Str("brand", brand).
			Str("product", name).
			Str("product_id", line.ProductID).
			Msg("Synthesized deleted product")
	}
	entry.identifiers.add(line.VariantID, line.SKU, line.ProductID)
	return key, MatchDeleted
}

// describeMissing names a product that is not in the snapshot, preferring
// looked-up catalog detail over the line's own fields.
func (r *Resolver) describeMissing(ctx context.Context, line domain.OrderLine) (brand, name string) {
	var title, variantTitle string
	if line.ProductID != "" {
		if detail := r.productDetail(ctx, line.ProductID); detail.Found {
			title = detail.Title
			brand = detail.Brand
			variantTitle = detail.VariantTitle(line.VariantID)
		}
	}
	if strings.TrimSpace(title) == "" {
		title = line.Title
	}
	if strings.TrimSpace(brand) == "" {
		brand = line.Vendor
	}
	if strings.TrimSpace(variantTitle) == "" {
		variantTitle = line.VariantTitle
	}

	name = fullProductName(title, variantTitle)
	if name == "" {
		switch {
		case line.ProductID != "":
			name = "Product " + line.ProductID
		case line.SKU != "":
			name = "SKU " + line.SKU
		default:
			name = "Variant " + line.VariantID
		}
	}
	return normalizeBrand(brand), name
}

func (r *Resolver) productDetail(ctx context.Context, productID string) domain.ProductDetail {
	if detail, ok := r.cache.Get(productID); ok {
		return detail
	}

	placeholder := domain.ProductDetail{ProductID: productID}
	if r.fetcher == nil {
		r.cache.Set(productID, placeholder)
		return placeholder
	}

	r.stats.DetailLookups++
	detail, err := r.fetcher.FetchProductDetail(ctx, productID)
	if err != nil {
		r.stats.DetailLookupFailures++
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return placeholder
		}
		log.Warn().Err(err).Str("product_id", productID).Msg("Product detail lookup failed, using placeholder")
		detail = placeholder
	}
	r.cache.Set(productID, detail)
	return detail
}

// LiveProducts returns the live keys in inventory order.
func (r *Resolver) LiveProducts() []LiveProduct {
	out := make([]LiveProduct, 0, len(r.liveOrder))
	for _, key := range r.liveOrder {
		entry := r.live[key]
		records := make([]domain.VariantRecord, 0, len(entry.records))
		for _, i := range entry.records {
			records = append(records, r.snapshot[i])
		}
		out = append(out, LiveProduct{
			Key:         key,
			Records:     records,
			Identifiers: entry.identifiers.values(),
			Merged:      len(entry.records) > 1 || entry.redirected,
		})
	}
	return out
}

// DeletedProducts returns the synthesized deleted products in first-seen order.
func (r *Resolver) DeletedProducts() []DeletedProduct {
	out := make([]DeletedProduct, 0, len(r.deletedOrder))
	for _, key := range r.deletedOrder {
		entry := r.deleted[key]
		out = append(out, DeletedProduct{
			Key:         key,
			Brand:       entry.brand,
			Name:        entry.name,
			ProductID:   entry.productID,
			VariantID:   entry.variantID,
			SKU:         entry.sku,
			Identifiers: entry.identifiers.values(),
		})
	}
	return out
}

func (r *Resolver) Stats() ResolverStats {
	return r.stats
}
