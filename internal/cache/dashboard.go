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
	dashboardKeyPrefix  = "inventory:dashboard"
	defaultDashboardTTL = time.Minute
)

// DashboardCache holds computed inventory dashboards keyed by the filter
// state that produced them.
type DashboardCache interface {
	Get(ctx context.Context, filter *domain.RecordFilter) (*domain.InventoryDashboard, bool, error)
	Set(ctx context.Context, filter *domain.RecordFilter, dash *domain.InventoryDashboard) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.DashboardTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}

	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) Get(ctx context.Context, filter *domain.RecordFilter) (*domain.InventoryDashboard, bool, error) {
	key := buildDashboardKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dash domain.InventoryDashboard
	if err := json.Unmarshal(payload, &dash); err != nil {
		return nil, false, fmt.Errorf("decode dashboard cache: %w", err)
	}

	return &dash, true, nil
}

func (c *redisDashboardCache) Set(ctx context.Context, filter *domain.RecordFilter, dash *domain.InventoryDashboard) error {
	key := buildDashboardKey(filter)
	payload, err := json.Marshal(dash)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, dashboardKeyPrefix, scanBatchSize)
}

func (n *noopDashboardCache) Get(ctx context.Context, filter *domain.RecordFilter) (*domain.InventoryDashboard, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) Set(ctx context.Context, filter *domain.RecordFilter, dash *domain.InventoryDashboard) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// buildDashboardKey hashes the filter fields the dashboard depends on.
// Pagination and sort order do not change the aggregates, so they stay out
// of the key.
func buildDashboardKey(filter *domain.RecordFilter) string {
	if filter == nil {
		return dashboardKeyPrefix + ":default"
	}

	var parts []string
	if filter.Location != "" {
		parts = append(parts, "location="+filter.Location)
	}
	if filter.Search != "" {
		parts = append(parts, "search="+strings.ToLower(filter.Search))
	}
	if filter.Mode != "" {
		parts = append(parts, "mode="+filter.Mode)
	}
	if filter.ABCClass != "" {
		parts = append(parts, "class="+filter.ABCClass)
	}
	if filter.Movement != "" {
		parts = append(parts, "movement="+filter.Movement)
	}
	parts = append(parts, fmt.Sprintf("params=%d/%d/%d",
		filter.Params.LeadTimeDays, filter.Params.SafetyDays, filter.Params.CoverDays))

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", dashboardKeyPrefix, hex.EncodeToString(hash[:]))
}
