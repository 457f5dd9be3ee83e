package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nimbleretail/poolalloc/internal/config"
	"github.com/nimbleretail/poolalloc/internal/domain"
)

const (
	summaryKeyPrefix     = "poolalloc:summary"
	summaryScanBatchSize = 100
)

// SummaryCache caches per-channel location summaries between plan
// refreshes. The cache is a read accelerator only: a miss falls
// through to the in-memory plan, and a refresh invalidates everything.
type SummaryCache interface {
	GetLocationSummaries(ctx context.Context, channel string) ([]domain.LocationSummary, bool, error)
	SetLocationSummaries(ctx context.Context, channel string, summaries []domain.LocationSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSummaryCache struct{}

// NewSummaryCache builds a redis-backed cache when enabled, a noop
// otherwise. Redis being unreachable at startup is an error, not a
// silent downgrade.
func NewSummaryCache(cfg config.CacheConfig) (SummaryCache, error) {
	if !cfg.Enabled {
		return &noopSummaryCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSummaryCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopSummaryCache() SummaryCache {
	return &noopSummaryCache{}
}

func (c *redisSummaryCache) GetLocationSummaries(ctx context.Context, channel string) ([]domain.LocationSummary, bool, error) {
	key := buildSummaryKey(channel)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.LocationSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode location summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisSummaryCache) SetLocationSummaries(ctx context.Context, channel string, summaries []domain.LocationSummary) error {
	key := buildSummaryKey(channel)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode location summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSummaryCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, summaryKeyPrefix, summaryScanBatchSize)
}

func (n *noopSummaryCache) GetLocationSummaries(ctx context.Context, channel string) ([]domain.LocationSummary, bool, error) {
	return nil, false, nil
}

func (n *noopSummaryCache) SetLocationSummaries(ctx context.Context, channel string, summaries []domain.LocationSummary) error {
	return nil
}

func (n *noopSummaryCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSummaryKey(channel string) string {
	channel = strings.ToUpper(strings.TrimSpace(channel))
	if channel == "" {
		channel = "all"
	}
	return fmt.Sprintf("%s:locations:%s", summaryKeyPrefix, channel)
}
