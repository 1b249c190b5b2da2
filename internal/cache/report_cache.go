package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/config"
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix     = "brand_report"
	reportScanBatchSize = 100
)

// ReportParams are the inputs that make two generated reports differ.
type ReportParams struct {
	Shop         string
	Day          time.Time
	HorizonDays  int
	ExcludedTags []string
}

type ReportCache interface {
	GetReport(ctx context.Context, params ReportParams) (*domain.Report, bool, error)
	SetReport(ctx context.Context, params ReportParams, report *domain.Report) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// NewRedisReportCache wraps an existing client.
func NewRedisReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisReportCache{client: client, ttl: ttl}
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, params ReportParams) (*domain.Report, bool, error) {
	key := buildReportKey(params)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, params ReportParams, report *domain.Report) error {
	key := buildReportKey(params)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (n *noopReportCache) GetReport(ctx context.Context, params ReportParams) (*domain.Report, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, params ReportParams, report *domain.Report) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReportKey(params ReportParams) string {
	return fmt.Sprintf("%s:%s", reportKeyPrefix, reportParamsHash(params))
}

// reportParamsHash is stable across tag order and case. Window cutoffs move
// at UTC midnight, so the day is part of the key.
func reportParamsHash(params ReportParams) string {
	parts := []string{
		"shop=" + strings.ToLower(strings.TrimSpace(params.Shop)),
		"day=" + params.Day.UTC().Format("2006-01-02"),
		"horizon=" + strconv.Itoa(params.HorizonDays),
	}
	if len(params.ExcludedTags) > 0 {
		parts = append(parts, "excluded_tags="+joinStrings(params.ExcludedTags))
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
