package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abc-shortship/backend-go/internal/cache"
	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/outbox"
	"github.com/abc-shortship/backend-go/internal/shortship"
	"github.com/abc-shortship/backend-go/internal/source"
	"github.com/rs/zerolog/log"
)

// ErrReportsNotLoaded is returned by queries before the first successful
// report load.
var ErrReportsNotLoaded = errors.New("short-ship reports not loaded yet")

// MovementProvider supplies the movement class per location-item key. The
// inventory service implements it from its current snapshot; a report load
// triggers Load when no snapshot exists yet, so diff lines are never
// classified against an empty index.
type MovementProvider interface {
	MovementIndex() map[string]string
	LoadedAt() time.Time
	Load(ctx context.Context) error
}

// DiffResult is one page of the short-ship table.
type DiffResult struct {
	Items      []domain.DiffRecord `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

// ShortShipService owns the reconciliation snapshot: the recent diff lines,
// the three aggregate reports, and the correction path through the outbox.
type ShortShipService struct {
	client     *source.Client
	cache      cache.ShortShipCache
	outbox     *outbox.Outbox
	movements  MovementProvider
	labels     shortship.Labels
	windowDays int

	mu        sync.RWMutex
	diffs     []domain.DiffRecord
	daily     []domain.AggregateRow
	monthly   []domain.AggregateRow
	quarterly []domain.AggregateRow
	loadedAt  time.Time
}

func NewShortShipService(client *source.Client, cacheImpl cache.ShortShipCache, box *outbox.Outbox, movements MovementProvider, labels shortship.Labels, windowDays int) *ShortShipService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopShortShipCache()
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &ShortShipService{
		client:     client,
		cache:      cacheImpl,
		outbox:     box,
		movements:  movements,
		labels:     labels,
		windowDays: windowDays,
	}
}

// Load fetches the report tables and rebuilds the diff snapshot. Notes from
// the remarks sheet are overlaid with any corrections still waiting in the
// outbox, so a queued note never vanishes when the upstream sheet lags.
func (s *ShortShipService) Load(ctx context.Context) error {
	if s.movements.LoadedAt().IsZero() {
		if err := s.movements.Load(ctx); err != nil {
			return fmt.Errorf("load movement classes: %w", err)
		}
	}

	src, err := s.client.LoadShortShip(ctx)
	if err != nil {
		return err
	}

	notes := shortship.BuildNoteIndex(src.Remarks)
	notes.ApplyOverrides(s.outbox.Pending())

	diffs := shortship.NormalizeDiffRows(src.Diff, s.movements.MovementIndex(), notes)
	shortship.SortByDateDesc(diffs)
	diffs = shortship.WindowRecent(diffs, s.windowDays)

	daily := shortship.NormalizeAggregateRows(src.Daily, "Date")
	monthly := shortship.NormalizeAggregateRows(src.Monthly, "Month")
	quarterly := shortship.NormalizeAggregateRows(src.Quarterly, "Quarter")

	s.mu.Lock()
	s.diffs = diffs
	s.daily = daily
	s.monthly = monthly
	s.quarterly = quarterly
	s.loadedAt = time.Now()
	s.mu.Unlock()

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("shortship: cache invalidate failed")
	}

	log.Info().
		Int("diffs", len(diffs)).
		Int("daily", len(daily)).
		Int("monthly", len(monthly)).
		Int("quarterly", len(quarterly)).
		Msg("short-ship reports loaded")
	return nil
}

func (s *ShortShipService) loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loadedAt.IsZero()
}

// Query returns one page of diff lines matching the filter.
func (s *ShortShipService) Query(ctx context.Context, filter domain.DiffFilter) (*DiffResult, error) {
	if !s.loaded() {
		return nil, ErrReportsNotLoaded
	}

	s.mu.RLock()
	matched := shortship.FilterForTable(s.diffs, filter)
	s.mu.RUnlock()

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &DiffResult{
		Items:      matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Dashboard builds the short-ship aggregates for a period, served from
// cache when possible.
func (s *ShortShipService) Dashboard(ctx context.Context, filter domain.DiffFilter) (*domain.ShortShipDashboard, error) {
	if !s.loaded() {
		return nil, ErrReportsNotLoaded
	}

	if dash, ok, err := s.cache.Get(ctx, &filter); err == nil && ok {
		return dash, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("shortship: cache get failed")
	}

	s.mu.RLock()
	summary := shortship.SelectSummary(s.daily, s.monthly, s.quarterly, filter)
	diffs := shortship.FilterForChart(s.diffs, filter)
	s.mu.RUnlock()

	dash := shortship.BuildDashboard(summary, diffs, filter, s.labels)

	if err := s.cache.Set(ctx, &filter, &dash); err != nil {
		log.Warn().Err(err).Msg("shortship: cache set failed")
	}
	return &dash, nil
}

// Filters returns the distinct selectable values in the loaded reports.
func (s *ShortShipService) Filters(ctx context.Context) (*shortship.FilterOptions, error) {
	if !s.loaded() {
		return nil, ErrReportsNotLoaded
	}

	s.mu.RLock()
	opts := shortship.CollectFilterOptions(s.diffs, s.daily, s.monthly, s.quarterly)
	s.mu.RUnlock()
	return &opts, nil
}

// SubmitCorrection durably queues a note correction, applies it to the
// in-memory snapshot so the next read already shows it, and nudges the
// outbox. The entry is safe once this returns, even if delivery is still
// pending.
func (s *ShortShipService) SubmitCorrection(ctx context.Context, entry domain.CorrectionEntry) (domain.OutboxStatus, error) {
	if err := s.outbox.Enqueue(entry); err != nil {
		return domain.OutboxStatus{}, err
	}

	s.mu.Lock()
	changed := shortship.ApplyCorrection(s.diffs, entry)
	s.mu.Unlock()

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("shortship: cache invalidate failed")
	}

	s.outbox.Kick()

	log.Info().
		Str("document", entry.DocumentNumber).
		Str("item", entry.ItemCode).
		Int("lines_updated", changed).
		Int("outbox_depth", s.outbox.Depth()).
		Msg("correction queued")

	return s.OutboxStatus(), nil
}

// OutboxStatus reports the pending correction queue.
func (s *ShortShipService) OutboxStatus() domain.OutboxStatus {
	return domain.OutboxStatus{
		Depth:      s.outbox.Depth(),
		Delivering: s.outbox.Delivering(),
	}
}

// LoadedAt reports when the current report snapshot was loaded.
func (s *ShortShipService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
