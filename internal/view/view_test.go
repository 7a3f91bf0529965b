package view

import (
	"testing"

	"github.com/abc-shortship/backend-go/internal/classify"
	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture builds a small mixed set: one item that wants ordering, one with
// returnable surplus, one idle zero-usage item at a second location.
func fixture() ([]domain.InventoryRecord, map[string]classify.Classification) {
	records := []domain.InventoryRecord{
		{
			Location: "0001", ItemCode: "ORDER-ME", Description: "Drive belt",
			OnHandQty: 2, OnHandValue: 200,
			FourMonthQty: 48, SixMonthQty: 72, ThirtyDayQty: 12, MultiplyUnit: 1,
		},
		{
			Location: "0001", ItemCode: "RETURN-ME", Description: "Old filter",
			OnHandQty: 50, OnHandValue: 100,
			FourMonthQty: 2, SixMonthQty: 3, ThirtyDayQty: 1, MultiplyUnit: 1,
		},
		{
			Location: "0002", ItemCode: "IDLE", Description: "Shelf warmer",
			OnHandQty: 5, OnHandValue: 40, MultiplyUnit: 1,
		},
	}
	return records, classify.ClassifyABC(records)
}

func TestApplyModeViews(t *testing.T) {
	records, classes := fixture()

	all := Apply(records, classes, domain.RecordFilter{})
	assert.Equal(t, 3, all.Total)

	order := Apply(records, classes, domain.RecordFilter{Mode: domain.ModeOrder})
	require.Equal(t, 1, order.Total)
	assert.Equal(t, "ORDER-ME", order.Items[0].ItemCode)
	assert.Positive(t, order.Items[0].RecommendedOrder)

	returnable := Apply(records, classes, domain.RecordFilter{Mode: domain.ModeReturnable})
	require.GreaterOrEqual(t, returnable.Total, 1)
	for _, item := range returnable.Items {
		assert.Positive(t, item.ReturnQty, item.ItemCode)
	}
}

func TestApplyLocationAndSearch(t *testing.T) {
	records, classes := fixture()

	res := Apply(records, classes, domain.RecordFilter{Location: "0002"})
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "IDLE", res.Items[0].ItemCode)

	res = Apply(records, classes, domain.RecordFilter{Search: "no such part"})
	require.Equal(t, 0, res.Total)

	// Case-insensitive match on the description.
	res = Apply(records, classes, domain.RecordFilter{Search: "drive BELT"})
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "ORDER-ME", res.Items[0].ItemCode)
}

func TestApplyDashboardCoversUnpagedSet(t *testing.T) {
	records, classes := fixture()

	res := Apply(records, classes, domain.RecordFilter{Mode: domain.ModeOrder})

	// Mode narrows the table, not the value aggregates.
	assert.Equal(t, 1, res.Dashboard.FilteredCount)
	assert.InDelta(t, 340, res.Dashboard.TotalStockValue, 1e-9)
	assert.Equal(t, 1, res.Dashboard.OrderItemCount)
	assert.Equal(t, 2, res.Dashboard.ReturnItemCount)
}

func TestApplyParallelCardViews(t *testing.T) {
	records, classes := fixture()

	// With a class filter active, the class cards still show every class
	// so the selected slice never hides its alternatives.
	res := Apply(records, classes, domain.RecordFilter{ABCClass: domain.ClassA})

	var classCount, movementCount int
	for _, slice := range res.Dashboard.ByClass {
		classCount += slice.Count
	}
	for _, slice := range res.Dashboard.ByMovement {
		movementCount += slice.Count
	}
	assert.Equal(t, 3, classCount)
	assert.Less(t, movementCount, 3)
}

func TestApplySortAndPagination(t *testing.T) {
	records, classes := fixture()

	res := Apply(records, classes, domain.RecordFilter{
		SortField: "on_hand_value",
		SortDir:   "desc",
		PageSize:  2,
	})
	require.Len(t, res.Items, 2)
	assert.Equal(t, "ORDER-ME", res.Items[0].ItemCode)
	assert.Equal(t, "RETURN-ME", res.Items[1].ItemCode)
	assert.Equal(t, 2, res.TotalPages)

	// Page past the end clamps to the last page.
	res = Apply(records, classes, domain.RecordFilter{PageSize: 2, Page: 99})
	assert.Equal(t, 2, res.Page)
	assert.Len(t, res.Items, 1)
}

func TestApplyRecomputesUnderParams(t *testing.T) {
	records, classes := fixture()

	short := Apply(records, classes, domain.RecordFilter{
		Mode:   domain.ModeOrder,
		Params: domain.ReplenishParams{CoverDays: 10},
	})
	long := Apply(records, classes, domain.RecordFilter{
		Mode:   domain.ModeOrder,
		Params: domain.ReplenishParams{CoverDays: 100},
	})

	require.Equal(t, 1, short.Total)
	require.Equal(t, 1, long.Total)
	assert.Less(t, short.Items[0].RecommendedOrder, long.Items[0].RecommendedOrder)
}

func TestDashboardStockDays(t *testing.T) {
	records, classes := fixture()

	res := Apply(records, classes, domain.RecordFilter{})
	require.NotNil(t, res.Dashboard.StockDays)
	require.NotNil(t, res.Dashboard.AfterReturnStockDays)
	assert.LessOrEqual(t, *res.Dashboard.AfterReturnStockDays, *res.Dashboard.StockDays)

	// A set with no usage at all has no meaningful stock-days figure.
	idle := []domain.InventoryRecord{
		{Location: "0001", ItemCode: "X", OnHandQty: 5, OnHandValue: 50, MultiplyUnit: 1},
	}
	res = Apply(idle, classify.ClassifyABC(idle), domain.RecordFilter{})
	assert.Nil(t, res.Dashboard.StockDays)
}

func TestDashboardLocationSummaries(t *testing.T) {
	records, classes := fixture()

	res := Apply(records, classes, domain.RecordFilter{})
	require.Len(t, res.Dashboard.Locations, 2)

	// Sorted by stock days descending; the idle location has no usage and
	// reports zero days, so it sorts last.
	assert.Equal(t, "0001", res.Dashboard.Locations[0].Location)
	assert.Equal(t, "0002", res.Dashboard.Locations[1].Location)
	assert.Positive(t, res.Dashboard.Locations[0].StockDays)
}

func TestExportRowsRoundTrip(t *testing.T) {
	records, classes := fixture()

	res := Apply(records, classes, domain.RecordFilter{PageSize: len(records)})
	rows := ExportRows(res.Items)
	require.Len(t, rows, len(records))
	for _, row := range rows {
		assert.Len(t, row, len(ExportHeaders))
	}
}
