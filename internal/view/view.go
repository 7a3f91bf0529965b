// internal/view/view.go

// Package view turns the classified record set plus one RecordFilter into a
// sorted, paginated table page and the dashboard aggregates. It never
// mutates the record set: derived fields are recomputed into fresh
// DerivedRecords on every call, so parameter changes always take effect
// before mode filtering.
package view

import (
	"math"
	"sort"
	"strings"

	"github.com/abc-shortship/backend-go/internal/classify"
	"github.com/abc-shortship/backend-go/internal/domain"
)

const DefaultPageSize = 25

// Result is one rendered inventory view.
type Result struct {
	Items      []domain.DerivedRecord    `json:"items"`
	Total      int                       `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
	Dashboard  domain.InventoryDashboard `json:"dashboard"`
}

// Apply runs the full pipeline: narrow by location and search, derive
// replenishment fields under the filter's parameters, split into the three
// parallel views (the ABC cards ignore the movement filter and the movement
// cards ignore the class filter, so a selected slice never masks itself),
// then sort and paginate the table view.
func Apply(records []domain.InventoryRecord, classes map[string]classify.Classification, f domain.RecordFilter) Result {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	base := make([]domain.DerivedRecord, 0, len(records))
	for i := range records {
		r := records[i]
		if f.Location != "" && r.Location != f.Location {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.ItemCode), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		base = append(base, classify.Derive(r, classes[r.Key()], f.Params))
	}

	modeMatch := func(d *domain.DerivedRecord) bool {
		switch f.Mode {
		case domain.ModeOrder:
			return d.RecommendedOrder >= 1
		case domain.ModeReturnable:
			return d.ReturnQty > 0
		}
		return true
	}

	forABC := make([]domain.DerivedRecord, 0, len(base))
	forMovement := make([]domain.DerivedRecord, 0, len(base))
	forTable := make([]domain.DerivedRecord, 0, len(base))
	for i := range base {
		d := &base[i]
		if !modeMatch(d) {
			continue
		}
		matchesClass := f.ABCClass == "" || d.ABCClass == f.ABCClass
		matchesMovement := f.Movement == "" || d.Movement == f.Movement

		if matchesClass {
			forMovement = append(forMovement, *d)
		}
		if matchesMovement {
			forABC = append(forABC, *d)
		}
		if matchesClass && matchesMovement {
			forTable = append(forTable, *d)
		}
	}

	sortRecords(forTable, f.SortField, f.SortDir)

	total := len(forTable)
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := f.Page
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

	return Result{
		Items:      forTable[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Dashboard:  buildDashboard(base, forABC, forMovement, total),
	}
}

func buildDashboard(base, forABC, forMovement []domain.DerivedRecord, tableCount int) domain.InventoryDashboard {
	dash := domain.InventoryDashboard{
		ByClass: map[string]domain.ValueSlice{
			domain.ClassA: {}, domain.ClassB: {}, domain.ClassC: {},
		},
		ByMovement: map[string]domain.ValueSlice{
			domain.MovementFast: {}, domain.MovementMedium: {}, domain.MovementSlow: {},
			domain.MovementSlowly: {}, domain.MovementNonMoving: {},
		},
		FilteredCount: tableCount,
	}

	var usageValue4M float64
	for i := range base {
		d := &base[i]
		dash.TotalStockValue += d.OnHandValue

		unitPrice := d.UnitPrice()
		if d.RecommendedOrder > 0 {
			dash.OrderItemCount++
			dash.OrderValue += float64(d.RecommendedOrder) * unitPrice
		}
		if d.ReturnQty > 0 {
			dash.ReturnItemCount++
			dash.ReturnValue += d.ReturnValue
		}
		if d.FourMonthQty > 0 && unitPrice > 0 {
			usageValue4M += d.FourMonthQty * unitPrice
		}
	}

	dash.MonthlyWithdrawalValue = usageValue4M / 4
	dailyUsageValue := usageValue4M / 120
	if dailyUsageValue > 0 {
		dash.StockDays = stockDays(dash.TotalStockValue, dailyUsageValue)
		dash.AfterReturnStockDays = stockDays(dash.TotalStockValue-dash.ReturnValue, dailyUsageValue)
	}

	for i := range forABC {
		d := &forABC[i]
		slice := dash.ByClass[d.ABCClass]
		slice.Value += d.OnHandValue
		slice.Count++
		dash.ByClass[d.ABCClass] = slice
	}
	for i := range forMovement {
		d := &forMovement[i]
		slice := dash.ByMovement[d.Movement]
		slice.Value += d.OnHandValue
		slice.Count++
		dash.ByMovement[d.Movement] = slice
	}

	dash.Locations = buildLocationSummaries(base)
	return dash
}

func stockDays(value, dailyUsageValue float64) *int {
	days := int(math.Round(value / dailyUsageValue))
	if days > domain.StockDaysCap {
		days = domain.StockDaysCap
	}
	return &days
}

// buildLocationSummaries aggregates the base subset per location for the
// stock-days chart series, sorted by stock days descending.
func buildLocationSummaries(base []domain.DerivedRecord) []domain.LocationSummary {
	byLocation := make(map[string]*domain.LocationSummary)
	order := make([]string, 0)
	for i := range base {
		d := &base[i]
		if d.Location == "" {
			continue
		}
		agg, ok := byLocation[d.Location]
		if !ok {
			agg = &domain.LocationSummary{Location: d.Location}
			byLocation[d.Location] = agg
			order = append(order, d.Location)
		}
		agg.TotalValue += d.OnHandValue
		agg.ReturnValue += d.ReturnValue
		agg.UsageValue4M += d.FourMonthQty * d.UnitPrice()
	}

	summaries := make([]domain.LocationSummary, 0, len(order))
	for _, loc := range order {
		agg := byLocation[loc]
		if daily := agg.UsageValue4M / 120; daily > 0 {
			agg.StockDays = int(math.Round(agg.TotalValue / daily))
		}
		summaries = append(summaries, *agg)
	}
	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].StockDays > summaries[b].StockDays
	})
	return summaries
}

// sortRecords orders the table view by the selected field. Strings compare
// case-insensitively, numbers by value; ties keep their prior order.
func sortRecords(items []domain.DerivedRecord, field, direction string) {
	if field == "" {
		field = "cum_percent"
	}
	asc := direction != "desc"

	sort.SliceStable(items, func(a, b int) bool {
		sa, na, isString := sortValue(&items[a], field)
		sb, nb, _ := sortValue(&items[b], field)
		var less bool
		if isString {
			less = strings.ToLower(sa) < strings.ToLower(sb)
		} else {
			less = na < nb
		}
		if asc {
			return less
		}
		if isString {
			return strings.ToLower(sa) > strings.ToLower(sb)
		}
		return na > nb
	})
}

func sortValue(d *domain.DerivedRecord, field string) (string, float64, bool) {
	switch field {
	case "location":
		return d.Location, 0, true
	case "item_code":
		return d.ItemCode, 0, true
	case "description":
		return d.Description, 0, true
	case "unit":
		return d.Unit, 0, true
	case "note":
		return d.Note, 0, true
	case "product":
		return d.Product, 0, true
	case "abc_class":
		return d.ABCClass, 0, true
	case "movement":
		return d.Movement, 0, true
	case "on_hand_qty":
		return "", d.OnHandQty, false
	case "on_hand_value":
		return "", d.OnHandValue, false
	case "six_month_qty":
		return "", d.SixMonthQty, false
	case "four_month_qty":
		return "", d.FourMonthQty, false
	case "thirty_day_qty":
		return "", d.ThirtyDayQty, false
	case "avg_monthly":
		return "", d.AvgMonthly, false
	case "mean":
		return "", d.Mean, false
	case "safety_stock":
		return "", float64(d.SafetyStock), false
	case "reorder_point":
		return "", float64(d.ReorderPoint), false
	case "days_of_supply":
		return "", d.DaysOfSupply, false
	case "recommended_order":
		return "", float64(d.RecommendedOrder), false
	case "multiply_unit":
		return "", d.MultiplyUnit, false
	case "return_qty":
		return "", float64(d.ReturnQty), false
	case "return_value":
		return "", d.ReturnValue, false
	default:
		return "", d.CumPercent, false
	}
}
