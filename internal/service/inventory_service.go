package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/abc-shortship/backend-go/internal/cache"
	"github.com/abc-shortship/backend-go/internal/classify"
	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/fuse"
	"github.com/abc-shortship/backend-go/internal/source"
	"github.com/abc-shortship/backend-go/internal/view"
	"github.com/rs/zerolog/log"
)

// ErrNotLoaded is returned by queries before the first successful load.
var ErrNotLoaded = errors.New("inventory data not loaded yet")

// InventoryService owns the fused inventory snapshot. Loads replace the
// whole snapshot atomically under the write lock; queries derive fresh
// replenishment fields from the immutable records on every call, so
// parameter changes never leak between requests.
type InventoryService struct {
	client   *source.Client
	cache    cache.DashboardCache
	defaults domain.ReplenishParams

	mu       sync.RWMutex
	records  []domain.InventoryRecord
	classes  map[string]classify.Classification
	loadedAt time.Time
}

// NewInventoryService builds the service. defaults are the deployment-wide
// replenishment parameters; requests that omit a parameter fall back to them.
func NewInventoryService(client *source.Client, cacheImpl cache.DashboardCache, defaults domain.ReplenishParams) *InventoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &InventoryService{client: client, cache: cacheImpl, defaults: defaults}
}

// Load fetches the three source tables, fuses them and reclassifies. The
// previous snapshot stays live until the new one is ready.
func (s *InventoryService) Load(ctx context.Context) error {
	src, err := s.client.LoadInventory(ctx)
	if err != nil {
		return err
	}

	records := fuse.BuildRecords(src)
	classes := classify.ClassifyABC(records)

	s.mu.Lock()
	s.records = records
	s.classes = classes
	s.loadedAt = time.Now()
	s.mu.Unlock()

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("inventory: cache invalidate failed")
	}

	log.Info().Int("records", len(records)).Msg("inventory snapshot loaded")
	return nil
}

func (s *InventoryService) snapshot() ([]domain.InventoryRecord, map[string]classify.Classification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.records == nil {
		return nil, nil, ErrNotLoaded
	}
	return s.records, s.classes, nil
}

// Query runs the filter pipeline and returns one page of derived records
// together with the dashboard over the filtered set.
func (s *InventoryService) Query(ctx context.Context, filter domain.RecordFilter) (*view.Result, error) {
	records, classes, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	filter.Params = filter.Params.Or(s.defaults)
	res := view.Apply(records, classes, filter)
	return &res, nil
}

// Dashboard returns the aggregates for a filter, served from cache when the
// same filter state was computed recently.
func (s *InventoryService) Dashboard(ctx context.Context, filter domain.RecordFilter) (*domain.InventoryDashboard, error) {
	filter.Params = filter.Params.Or(s.defaults)

	if dash, ok, err := s.cache.Get(ctx, &filter); err == nil && ok {
		return dash, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("inventory: cache get failed")
	}

	res, err := s.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, &filter, &res.Dashboard); err != nil {
		log.Warn().Err(err).Msg("inventory: cache set failed")
	}
	return &res.Dashboard, nil
}

// Locations returns the distinct location codes in the snapshot, sorted.
func (s *InventoryService) Locations() ([]string, error) {
	records, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for i := range records {
		if records[i].Location != "" {
			seen[records[i].Location] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for loc := range seen {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out, nil
}

// Export derives every record matching the filter, without pagination, as
// header plus rows ready for CSV encoding.
func (s *InventoryService) Export(ctx context.Context, filter domain.RecordFilter) ([]string, [][]string, error) {
	records, classes, err := s.snapshot()
	if err != nil {
		return nil, nil, err
	}

	filter.Params = filter.Params.Or(s.defaults)
	filter.Page = 1
	filter.PageSize = len(records) + 1
	res := view.Apply(records, classes, filter)
	return view.ExportHeaders, view.ExportRows(res.Items), nil
}

// MovementIndex maps composite location-item keys to movement classes,
// feeding the short-ship report's movement split.
func (s *InventoryService) MovementIndex() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := make(map[string]string, len(s.records))
	for i := range s.records {
		r := &s.records[i]
		idx[r.Key()] = classify.MovementOf(r.AvgMonthlyUsage())
	}
	return idx
}

// LoadedAt reports when the current snapshot was loaded; zero before the
// first load.
func (s *InventoryService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
