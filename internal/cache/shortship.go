package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abc-shortship/backend-go/internal/config"
	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	shortShipKeyPrefix  = "shortship:dashboard"
	defaultShortShipTTL = 5 * time.Minute
)

// ShortShipCache holds computed short-ship dashboards keyed by the period
// and scope that produced them. Invalidated whenever reports reload or a
// correction lands.
type ShortShipCache interface {
	Get(ctx context.Context, filter *domain.DiffFilter) (*domain.ShortShipDashboard, bool, error)
	Set(ctx context.Context, filter *domain.DiffFilter, dash *domain.ShortShipDashboard) error
	InvalidateAll(ctx context.Context) error
}

type redisShortShipCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopShortShipCache struct{}

func NewShortShipCache(cfg config.CacheConfig) (ShortShipCache, error) {
	if !cfg.Enabled {
		return &noopShortShipCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.ReportsTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultShortShipTTL
	}

	return &redisShortShipCache{client: client, ttl: ttl}, nil
}

func NewNoopShortShipCache() ShortShipCache {
	return &noopShortShipCache{}
}

func (c *redisShortShipCache) Get(ctx context.Context, filter *domain.DiffFilter) (*domain.ShortShipDashboard, bool, error) {
	key := buildShortShipKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dash domain.ShortShipDashboard
	if err := json.Unmarshal(payload, &dash); err != nil {
		return nil, false, fmt.Errorf("decode short-ship cache: %w", err)
	}

	return &dash, true, nil
}

func (c *redisShortShipCache) Set(ctx context.Context, filter *domain.DiffFilter, dash *domain.ShortShipDashboard) error {
	key := buildShortShipKey(filter)
	payload, err := json.Marshal(dash)
	if err != nil {
		return fmt.Errorf("encode short-ship cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisShortShipCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, shortShipKeyPrefix, scanBatchSize)
}

func (n *noopShortShipCache) Get(ctx context.Context, filter *domain.DiffFilter) (*domain.ShortShipDashboard, bool, error) {
	return nil, false, nil
}

func (n *noopShortShipCache) Set(ctx context.Context, filter *domain.DiffFilter, dash *domain.ShortShipDashboard) error {
	return nil
}

func (n *noopShortShipCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildShortShipKey(filter *domain.DiffFilter) string {
	if filter == nil {
		return shortShipKeyPrefix + ":default"
	}

	var parts []string
	if filter.Date != "" {
		parts = append(parts, "date="+filter.Date)
	}
	if filter.Month != "" {
		parts = append(parts, "month="+filter.Month)
	}
	if filter.Quarter != "" {
		parts = append(parts, "quarter="+filter.Quarter)
	}
	if filter.PartType != "" {
		parts = append(parts, "part_type="+filter.PartType)
	}
	if filter.Location != "" {
		parts = append(parts, "location="+filter.Location)
	}

	if len(parts) == 0 {
		return shortShipKeyPrefix + ":default"
	}

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", shortShipKeyPrefix, hex.EncodeToString(hash[:]))
}
