package brand_report

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// CanonicalKey identifies the logical product a sale is attributed to.
type CanonicalKey string

const (
	liveKeyPrefix    = "live:"
	deletedKeyPrefix = "deleted:"
)

func liveKey(record domain.VariantRecord, index int) CanonicalKey {
	if record.VariantID != "" {
		return CanonicalKey(liveKeyPrefix + record.VariantID)
	}
	return CanonicalKey(liveKeyPrefix + "#" + strconv.Itoa(index))
}

func deletedKey(brandName string) CanonicalKey {
	return CanonicalKey(deletedKeyPrefix + brandName)
}

// IsDeleted reports whether the key belongs to a synthesized deleted product.
func (k CanonicalKey) IsDeleted() bool {
	return strings.HasPrefix(string(k), deletedKeyPrefix)
}

// MatchMethod records which rule attributed an order line.
type MatchMethod int

const (
	MatchNone MatchMethod = iota
	MatchVariant
	MatchSKU
	MatchName
	MatchDuplicate
	MatchDeleted
)

func (m MatchMethod) String() string {
	switch m {
	case MatchVariant:
		return "variant"
	case MatchSKU:
		return "sku"
	case MatchName:
		return "name"
	case MatchDuplicate:
		return "duplicate"
	case MatchDeleted:
		return "deleted"
	default:
		return "none"
	}
}

// Config tunes a report generation.
type Config struct {
	// ExcludedTags drops orders carrying any of these tags (case-insensitive).
	ExcludedTags []string
	// MinFuzzyNameLength is the shortest normalized line name tried against
	// inventory names by containment.
	MinFuzzyNameLength int
}

// DefaultExcludedTags are the order tags treated as non-commercial.
var DefaultExcludedTags = []string{"test", "sample", "internal"}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		ExcludedTags:       DefaultExcludedTags,
		MinFuzzyNameLength: 3,
	}
}

// Input is everything one generation reads. Now is the reference time all
// windows are computed from.
type Input struct {
	Products []domain.RawProduct
	Costs    map[string]decimal.Decimal
	Orders   []domain.RawOrder
	Now      time.Time
}

// ProductDetailFetcher looks up product metadata by product id.
type ProductDetailFetcher interface {
	FetchProductDetail(ctx context.Context, productID string) (domain.ProductDetail, error)
}

// ProductDetailCache memoizes product detail lookups for the lifetime of one
// generation. It is safe for concurrent use.
type ProductDetailCache struct {
	mu      sync.RWMutex
	entries map[string]domain.ProductDetail
}

func NewProductDetailCache() *ProductDetailCache {
	return &ProductDetailCache{entries: make(map[string]domain.ProductDetail)}
}

func (c *ProductDetailCache) Get(productID string) (domain.ProductDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[productID]
	return d, ok
}

func (c *ProductDetailCache) Set(productID string, detail domain.ProductDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[productID] = detail
}

func (c *ProductDetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
