// internal/source/client.go
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/abc-shortship/backend-go/internal/config"
	"golang.org/x/sync/errgroup"
)

// Client fetches row feeds over HTTP. Every request is bounded by the
// client's own timeout so no load can block indefinitely.
type Client struct {
	http *http.Client
	cfg  config.SourcesConfig
}

func NewClient(cfg config.SourcesConfig) *Client {
	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		cfg:  cfg,
	}
}

// FetchRows GETs a feed URL and decodes its JSON row array.
func (c *Client) FetchRows(ctx context.Context, url string) ([]Row, error) {
	if url == "" {
		return nil, fmt.Errorf("source url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows from %s: %w", url, err)
	}
	return rows, nil
}

// InventorySources are the three raw tables the Record Fuser consumes.
type InventorySources struct {
	Usage     []Row
	Stock     []Row
	Reference []Row
}

// LoadInventory fetches the three inventory tables concurrently. If any
// fetch fails the whole load fails; no partial set is returned.
func (c *Client) LoadInventory(ctx context.Context) (*InventorySources, error) {
	var src InventorySources

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		src.Usage, err = c.FetchRows(ctx, c.cfg.UsageURL)
		return err
	})
	g.Go(func() (err error) {
		src.Stock, err = c.FetchRows(ctx, c.cfg.StockURL)
		return err
	})
	g.Go(func() (err error) {
		src.Reference, err = c.FetchRows(ctx, c.cfg.ReferenceURL)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("inventory source load failed: %w", err)
	}
	return &src, nil
}

// ShortShipSources are the report tables consumed by the reconciliation
// fuser. Remarks are best-effort: a failed remarks fetch yields an empty
// table, not a failed load.
type ShortShipSources struct {
	Diff      []Row
	Daily     []Row
	Monthly   []Row
	Quarterly []Row
	Remarks   []Row
}

// LoadShortShip fetches the four report tables concurrently (all-or-nothing)
// plus the remarks table (lenient).
func (c *Client) LoadShortShip(ctx context.Context) (*ShortShipSources, error) {
	var src ShortShipSources

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		src.Diff, err = c.FetchRows(gctx, c.cfg.DiffReportURL)
		return err
	})
	g.Go(func() (err error) {
		src.Daily, err = c.FetchRows(gctx, c.cfg.DailyReportURL)
		return err
	})
	g.Go(func() (err error) {
		src.Monthly, err = c.FetchRows(gctx, c.cfg.MonthlyReportURL)
		return err
	})
	g.Go(func() (err error) {
		src.Quarterly, err = c.FetchRows(gctx, c.cfg.QuarterlyReportURL)
		return err
	})
	g.Go(func() error {
		rows, err := c.FetchRows(gctx, c.cfg.RemarksURL)
		if err != nil {
			// remarks are an enrichment, not a required table
			src.Remarks = nil
			return nil
		}
		src.Remarks = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("short-ship source load failed: %w", err)
	}
	return &src, nil
}
