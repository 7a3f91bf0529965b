// internal/view/export.go
package view

import (
	"strconv"

	"github.com/abc-shortship/backend-go/internal/domain"
)

// ExportHeaders is the CSV header row, in table column order.
var ExportHeaders = []string{
	"Location",
	"Item Code",
	"Description",
	"Unit",
	"On Hand Qty",
	"On Hand Value",
	"Qty 6 Month",
	"Qty 4 Month",
	"Avg Daily",
	"Avg Monthly",
	"30 Day",
	"Mean",
	"Safety Stock",
	"Reorder Point",
	"Days Of Supply",
	"Recommended Order",
	"Note",
	"Multiply Unit",
	"Product",
	"ABC",
	"Movement",
	"Return Qty",
	"Return Value",
	"Cum Percent",
}

// ExportRows renders derived records as CSV cells. Numbers use the shortest
// lossless decimal form so every field round-trips through the export.
func ExportRows(items []domain.DerivedRecord) [][]string {
	rows := make([][]string, 0, len(items))
	for i := range items {
		d := &items[i]
		rows = append(rows, []string{
			d.Location,
			d.ItemCode,
			d.Description,
			d.Unit,
			formatFloat(d.OnHandQty),
			formatFloat(d.OnHandValue),
			formatFloat(d.SixMonthQty),
			formatFloat(d.FourMonthQty),
			formatFloat(d.AvgDaily),
			formatFloat(d.AvgMonthly),
			formatFloat(d.ThirtyDayQty),
			formatFloat(d.Mean),
			strconv.Itoa(d.SafetyStock),
			strconv.Itoa(d.ReorderPoint),
			formatFloat(d.DaysOfSupply),
			strconv.Itoa(d.RecommendedOrder),
			d.Note,
			formatFloat(d.MultiplyUnit),
			d.Product,
			d.ABCClass,
			d.Movement,
			strconv.Itoa(d.ReturnQty),
			formatFloat(d.ReturnValue),
			formatFloat(d.CumPercent),
		})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
