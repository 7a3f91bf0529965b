package fuse

import (
	"testing"

	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byKey(records []domain.InventoryRecord) map[string]domain.InventoryRecord {
	m := make(map[string]domain.InventoryRecord, len(records))
	for _, r := range records {
		m[r.Key()] = r
	}
	return m
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "0150", NormalizeLocation("150", 4))
	assert.Equal(t, "0001", NormalizeLocation(" 1 ", 4))
	assert.Equal(t, "1500", NormalizeLocation("1500", 4))
	assert.Equal(t, "15000", NormalizeLocation("15000", 4))
	assert.Equal(t, "", NormalizeLocation("  ", 4))
}

func TestBuildRecordsUnionOfKeys(t *testing.T) {
	src := &source.InventorySources{
		Usage: []source.Row{
			{"Plant": "150", "Material": "PUMP", "Qtyissu": "48", "Qtyissu6m": "80", "30Day": "10"},
			{"Plant": "150", "Material": "ONLY-USED", "Qtyissu": "4"},
		},
		Stock: []source.Row{
			{"Plant": "150", "Material": "PUMP", "Unrestricted": "2", "Value Unrestricted": "1,000.50", "Material description": "Water pump", "Base Unit of Measure": "EA"},
			{"Plant": "150", "Material": "ONLY-STOCKED", "Unrestricted": "7", "Value Unrestricted": "70"},
		},
		Reference: []source.Row{
			{"Material": "PUMP", "Note": "critical spare", "MultiplyUnit": "5", "Product": "Line A"},
		},
	}

	records := byKey(BuildRecords(src))
	require.Len(t, records, 3)

	pump := records["0150-PUMP"]
	assert.Equal(t, "0150", pump.Location)
	assert.Equal(t, "Water pump", pump.Description)
	assert.Equal(t, "EA", pump.Unit)
	assert.InDelta(t, 2, pump.OnHandQty, 1e-9)
	assert.InDelta(t, 1000.50, pump.OnHandValue, 1e-9)
	assert.InDelta(t, 48, pump.FourMonthQty, 1e-9)
	assert.InDelta(t, 80, pump.SixMonthQty, 1e-9)
	assert.InDelta(t, 10, pump.ThirtyDayQty, 1e-9)
	assert.Equal(t, "critical spare", pump.Note)
	assert.InDelta(t, 5, pump.MultiplyUnit, 1e-9)
	assert.Equal(t, "Line A", pump.Product)

	// Usage-only key: zero stock side.
	used := records["0150-ONLY-USED"]
	assert.Zero(t, used.OnHandQty)
	assert.InDelta(t, 4, used.FourMonthQty, 1e-9)

	// Stock-only key: zero usage side, default multiply unit.
	stocked := records["0150-ONLY-STOCKED"]
	assert.InDelta(t, 7, stocked.OnHandQty, 1e-9)
	assert.Zero(t, stocked.FourMonthQty)
	assert.InDelta(t, 1, stocked.MultiplyUnit, 1e-9)
}

func TestBuildRecordsDerivesSixMonthQty(t *testing.T) {
	src := &source.InventorySources{
		Usage: []source.Row{
			{"Plant": "1", "Material": "A", "Qtyissu": "48"},
			{"Plant": "1", "Material": "B", "Qtyissu": "3", "Qtyissu6m": "0"},
		},
	}

	records := byKey(BuildRecords(src))
	assert.InDelta(t, 72, records["0001-A"].SixMonthQty, 1e-9)
	// round(3 * 1.5) = 5
	assert.InDelta(t, 5, records["0001-B"].SixMonthQty, 1e-9)
}

func TestBuildRecordsLenientNumbers(t *testing.T) {
	src := &source.InventorySources{
		Stock: []source.Row{
			{"Plant": "1", "Material": "A", "Unrestricted": "garbage", "Value Unrestricted": "12,345"},
		},
	}

	records := byKey(BuildRecords(src))
	a := records["0001-A"]
	assert.Zero(t, a.OnHandQty)
	assert.InDelta(t, 12345, a.OnHandValue, 1e-9)
}

func TestBuildRecordsColumnNameVariants(t *testing.T) {
	src := &source.InventorySources{
		Usage: []source.Row{
			{"location": "2", "item_code": "X", "qty_4_month": "8", "thirty_day": "2"},
		},
		Stock: []source.Row{
			{"Location": "2", "Item Code": "X", "on_hand": "6", "value": "60", "description": "Bearing", "unit": "PC"},
		},
	}

	records := byKey(BuildRecords(src))
	require.Len(t, records, 1)

	x := records["0002-X"]
	assert.InDelta(t, 8, x.FourMonthQty, 1e-9)
	assert.InDelta(t, 2, x.ThirtyDayQty, 1e-9)
	assert.InDelta(t, 6, x.OnHandQty, 1e-9)
	assert.Equal(t, "Bearing", x.Description)
	assert.Equal(t, "PC", x.Unit)
}

func TestBackfillDescriptions(t *testing.T) {
	src := &source.InventorySources{
		Stock: []source.Row{
			{"Plant": "1", "Material": "A", "Material description": "Gasket kit"},
			{"Plant": "2", "Material": "A"},
			{"Plant": "3", "Material": "B"},
		},
	}

	records := byKey(BuildRecords(src))
	assert.Equal(t, "Gasket kit", records["0001-A"].Description)
	assert.Equal(t, "Gasket kit", records["0002-A"].Description)
	assert.Equal(t, "", records["0003-B"].Description)
}
