package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abc-shortship/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRows(t *testing.T) {
	srv := rowServer(t, `[{"Plant":"150","Qty":"1,234"},{"Plant":150}]`)
	c := NewClient(config.SourcesConfig{})

	rows, err := c.FetchRows(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "150", rows[0].String("Plant"))
	assert.InDelta(t, 1234, rows[0].Float("Qty"), 1e-9)
	// Numeric JSON values stringify cleanly too.
	assert.Equal(t, "150", rows[1].String("Plant"))
}

func TestFetchRowsErrors(t *testing.T) {
	c := NewClient(config.SourcesConfig{})

	_, err := c.FetchRows(context.Background(), "")
	assert.Error(t, err)

	srv := failingServer(t)
	_, err = c.FetchRows(context.Background(), srv.URL)
	assert.Error(t, err)

	bad := rowServer(t, `{"not":"an array"}`)
	_, err = c.FetchRows(context.Background(), bad.URL)
	assert.Error(t, err)
}

func TestLoadInventoryAllOrNothing(t *testing.T) {
	usage := rowServer(t, `[{"Material":"A"}]`)
	stock := rowServer(t, `[{"Material":"A"}]`)
	reference := failingServer(t)

	c := NewClient(config.SourcesConfig{
		UsageURL:     usage.URL,
		StockURL:     stock.URL,
		ReferenceURL: reference.URL,
	})

	_, err := c.LoadInventory(context.Background())
	assert.Error(t, err)

	// With all three healthy the load returns every table.
	reference2 := rowServer(t, `[]`)
	c = NewClient(config.SourcesConfig{
		UsageURL:     usage.URL,
		StockURL:     stock.URL,
		ReferenceURL: reference2.URL,
	})

	src, err := c.LoadInventory(context.Background())
	require.NoError(t, err)
	assert.Len(t, src.Usage, 1)
	assert.Len(t, src.Stock, 1)
	assert.Empty(t, src.Reference)
}

func TestLoadShortShipRemarksAreOptional(t *testing.T) {
	report := rowServer(t, `[{"DocNo":"D-1"}]`)

	c := NewClient(config.SourcesConfig{
		DiffReportURL:      report.URL,
		DailyReportURL:     report.URL,
		MonthlyReportURL:   report.URL,
		QuarterlyReportURL: report.URL,
		RemarksURL:         failingServer(t).URL,
	})

	src, err := c.LoadShortShip(context.Background())
	require.NoError(t, err)
	assert.Len(t, src.Diff, 1)
	assert.Nil(t, src.Remarks)
}

func TestLoadShortShipRequiredTableFailureFailsLoad(t *testing.T) {
	report := rowServer(t, `[]`)

	c := NewClient(config.SourcesConfig{
		DiffReportURL:      failingServer(t).URL,
		DailyReportURL:     report.URL,
		MonthlyReportURL:   report.URL,
		QuarterlyReportURL: report.URL,
		RemarksURL:         report.URL,
	})

	_, err := c.LoadShortShip(context.Background())
	assert.Error(t, err)
}
