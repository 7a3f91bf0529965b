package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/abc-shortship/backend-go/internal/config"
	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/outbox"
	"github.com/abc-shortship/backend-go/internal/shortship"
	"github.com/abc-shortship/backend-go/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMovements map[string]string

func (m staticMovements) MovementIndex() map[string]string { return m }
func (m staticMovements) LoadedAt() time.Time              { return time.Unix(1, 0) }
func (m staticMovements) Load(context.Context) error       { return nil }

type recordingSubmitter struct {
	delivered []domain.CorrectionEntry
}

func (r *recordingSubmitter) Submit(ctx context.Context, e domain.CorrectionEntry) error {
	r.delivered = append(r.delivered, e)
	return nil
}

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestShortShipService(t *testing.T, sub outbox.Submitter) (*ShortShipService, *outbox.Outbox) {
	t.Helper()

	diff := jsonServer(t, `[
		{"DocNo":"D-1","Date":"15/8/2026","Plant":"150","Material Code":"PUMP","Part Type":"General","Req Qty":"5","Appr Qty":"2","Diff":"3"}
	]`)
	daily := jsonServer(t, `[{"Date":"15/8/2026","Plant":"150","Part Type":"General","Req Qty":"5","Appr Qty":"2","Req Items":"1","Appr Items":"1","Doc Count":"1"}]`)
	empty := jsonServer(t, `[]`)

	client := source.NewClient(config.SourcesConfig{
		DiffReportURL:      diff.URL,
		DailyReportURL:     daily.URL,
		MonthlyReportURL:   empty.URL,
		QuarterlyReportURL: empty.URL,
		RemarksURL:         empty.URL,
	})

	store, err := outbox.OpenStore(filepath.Join(t.TempDir(), "outbox.log"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	box := outbox.New(store, sub, outbox.Options{})

	svc := NewShortShipService(
		client, nil, box,
		staticMovements{"0150-PUMP": domain.MovementFast},
		shortship.Labels{General: "General", Consumable: "Consumable"},
		30,
	)
	require.NoError(t, svc.Load(context.Background()))
	return svc, box
}

func TestShortShipServiceQueryBeforeLoad(t *testing.T) {
	svc := NewShortShipService(nil, nil, nil, staticMovements{}, shortship.Labels{}, 30)
	_, err := svc.Query(context.Background(), domain.DiffFilter{})
	assert.ErrorIs(t, err, ErrReportsNotLoaded)
}

func TestReportLoadPullsClassifierSnapshotWhenAbsent(t *testing.T) {
	usage := jsonServer(t, `[
		{"Plant":"150","Material":"PUMP","Qtyissu":"120","Qtyissu6m":"180","30Day":"30"}
	]`)
	stock := jsonServer(t, `[
		{"Plant":"150","Material":"PUMP","Material description":"Coolant pump","Unrestricted":"2","Value Unrestricted":"20"}
	]`)
	diff := jsonServer(t, `[
		{"DocNo":"D-1","Date":"15/8/2026","Plant":"150","Material Code":"PUMP","Part Type":"General","Req Qty":"5","Appr Qty":"2","Diff":"3"}
	]`)
	empty := jsonServer(t, `[]`)

	client := source.NewClient(config.SourcesConfig{
		UsageURL:           usage.URL,
		StockURL:           stock.URL,
		ReferenceURL:       empty.URL,
		DiffReportURL:      diff.URL,
		DailyReportURL:     empty.URL,
		MonthlyReportURL:   empty.URL,
		QuarterlyReportURL: empty.URL,
		RemarksURL:         empty.URL,
	})

	store, err := outbox.OpenStore(filepath.Join(t.TempDir(), "outbox.log"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	box := outbox.New(store, &recordingSubmitter{}, outbox.Options{})

	inv := NewInventoryService(client, nil, domain.ReplenishParams{})
	svc := NewShortShipService(
		client, nil, box, inv,
		shortship.Labels{General: "General", Consumable: "Consumable"},
		30,
	)

	// The report load must pull the missing classifier snapshot in rather
	// than classify every line against an empty index.
	require.NoError(t, svc.Load(context.Background()))
	assert.False(t, inv.LoadedAt().IsZero())

	res, err := svc.Query(context.Background(), domain.DiffFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, domain.MovementFast, res.Items[0].Movement)
}

func TestSubmitCorrectionPersistsThenApplies(t *testing.T) {
	sub := &recordingSubmitter{}
	svc, box := newTestShortShipService(t, sub)

	// The open diff line starts unresolved.
	res, err := svc.Query(context.Background(), domain.DiffFilter{Note: domain.NoteEmpty})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)

	status, err := svc.SubmitCorrection(context.Background(), domain.CorrectionEntry{
		DocumentNumber: "D-1", ItemCode: "PUMP", Note: "resent by truck", User: "ops",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, status.Depth)

	// The snapshot reflects the note immediately, before delivery.
	res, err = svc.Query(context.Background(), domain.DiffFilter{Note: domain.NoteNotEmpty})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "resent by truck", res.Items[0].Note)

	// Delivery happens asynchronously via the drain loop.
	box.Drain(context.Background())
	require.Len(t, sub.delivered, 1)
	assert.Equal(t, "D-1", sub.delivered[0].DocumentNumber)
	assert.Equal(t, 0, svc.OutboxStatus().Depth)
}

func TestQueuedCorrectionSurvivesReload(t *testing.T) {
	sub := &recordingSubmitter{}
	svc, _ := newTestShortShipService(t, sub)

	_, err := svc.SubmitCorrection(context.Background(), domain.CorrectionEntry{
		DocumentNumber: "D-1", ItemCode: "PUMP", Note: "short by three",
	})
	require.NoError(t, err)

	// A reload pulls the raw reports again; the queued note must win over
	// the stale upstream remark table.
	require.NoError(t, svc.Load(context.Background()))

	res, err := svc.Query(context.Background(), domain.DiffFilter{Note: domain.NoteNotEmpty})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "short by three", res.Items[0].Note)
}

func TestDashboardFusesSummaryAndNotes(t *testing.T) {
	sub := &recordingSubmitter{}
	svc, _ := newTestShortShipService(t, sub)

	dash, err := svc.Dashboard(context.Background(), domain.DiffFilter{Date: "15/8/2026"})
	require.NoError(t, err)
	assert.InDelta(t, 5, dash.ReqQty, 1e-9)
	assert.InDelta(t, 2, dash.ApprQty, 1e-9)
	assert.Equal(t, 1, dash.DiffItemCount)

	// Noting the line folds its gap back into the approved totals.
	_, err = svc.SubmitCorrection(context.Background(), domain.CorrectionEntry{
		DocumentNumber: "D-1", ItemCode: "PUMP", Note: "resolved",
	})
	require.NoError(t, err)

	dash, err = svc.Dashboard(context.Background(), domain.DiffFilter{Date: "15/8/2026"})
	require.NoError(t, err)
	assert.InDelta(t, 5, dash.ApprQty, 1e-9)
	assert.Equal(t, 0, dash.DiffItemCount)
}
