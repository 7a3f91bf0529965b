// internal/shortship/dashboard.go
package shortship

import (
	"sort"
	"strconv"
	"strings"

	"github.com/abc-shortship/backend-go/internal/domain"
)

// matchesTime reports whether a diff line falls in the filter's date, month
// and quarter selection.
func matchesTime(r *domain.DiffRecord, f *domain.DiffFilter) bool {
	if f.Date != "" && cleanDate(r.Date) != strings.TrimSpace(f.Date) {
		return false
	}
	if f.Month != "" && MonthOf(r.Date) != f.Month {
		return false
	}
	if f.Quarter != "" && QuarterOf(r.Date) != f.Quarter {
		return false
	}
	return true
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func matchesSearch(r *domain.DiffRecord, search string) bool {
	if search == "" {
		return true
	}
	for _, v := range []string{
		r.DocNo, r.CreateDate, r.ReceiveDate, r.ItemCode, r.ItemName,
		r.PartType, r.Requestor, r.Transferor, r.Location, r.Movement,
		r.Note, r.Date,
		formatQty(r.ReqQty), formatQty(r.ApprQty), formatQty(r.DiffQty),
	} {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

// FilterForTable applies every active filter: search, time, part type,
// location, movement and note presence.
func FilterForTable(records []domain.DiffRecord, f domain.DiffFilter) []domain.DiffRecord {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.DiffRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if !matchesTime(r, &f) || !matchesSearch(r, search) {
			continue
		}
		if f.PartType != "" && r.PartType != f.PartType {
			continue
		}
		if f.Location != "" && r.Location != f.Location {
			continue
		}
		if f.Movement != "" && r.Movement != f.Movement {
			continue
		}
		switch f.Note {
		case domain.NoteEmpty:
			if r.HasNote() {
				continue
			}
		case domain.NoteNotEmpty:
			if !r.HasNote() {
				continue
			}
		}
		out = append(out, *r)
	}
	return out
}

// FilterForChart narrows diff lines by time only, keeping every location so
// the per-location series always shows the whole network.
func FilterForChart(records []domain.DiffRecord, f domain.DiffFilter) []domain.DiffRecord {
	out := make([]domain.DiffRecord, 0, len(records))
	for i := range records {
		if matchesTime(&records[i], &f) {
			out = append(out, records[i])
		}
	}
	return out
}

// SelectSummary picks the aggregate report feeding the dashboard: the daily
// report when a date is selected, else monthly for a month, else quarterly
// for a quarter, else the full quarterly history.
func SelectSummary(daily, monthly, quarterly []domain.AggregateRow, f domain.DiffFilter) []domain.AggregateRow {
	pick := func(rows []domain.AggregateRow, bucket string) []domain.AggregateRow {
		out := make([]domain.AggregateRow, 0, len(rows))
		for i := range rows {
			if rows[i].Bucket == bucket {
				out = append(out, rows[i])
			}
		}
		return out
	}

	switch {
	case f.Date != "":
		return pick(daily, strings.TrimSpace(f.Date))
	case f.Month != "":
		return pick(monthly, f.Month)
	case f.Quarter != "":
		return pick(quarterly, f.Quarter)
	default:
		return quarterly
	}
}

// Labels identifies the two part-type categories the dashboard splits on.
type Labels struct {
	General    string
	Consumable string
}

// BuildDashboard fuses the selected aggregate rows with the time-filtered
// diff lines. The location filter narrows the cards but not the
// per-location series. Lines carrying a note are treated as fully resolved:
// their quantity gap is added back into the approved totals (and, when the
// line had zero prior approval, counted as a newly approved item), while
// the outstanding-difference counters skip them entirely.
func BuildDashboard(summary []domain.AggregateRow, diffs []domain.DiffRecord, f domain.DiffFilter, labels Labels) domain.ShortShipDashboard {
	dash := domain.ShortShipDashboard{
		DiffByMovement: map[string]int{
			domain.MovementFast: 0, domain.MovementMedium: 0, domain.MovementSlow: 0,
			domain.MovementSlowly: 0, domain.MovementNonMoving: 0,
		},
	}

	for i := range summary {
		r := &summary[i]
		if f.Location != "" && r.Location != f.Location {
			continue
		}
		if f.PartType != "" && r.PartType != f.PartType {
			continue
		}
		dash.ReqQty += r.ReqQty
		dash.ApprQty += r.ApprQty
		dash.ReqItems += r.ReqItems
		dash.ApprItems += r.ApprItems
		dash.DocCount += r.DocCount

		switch r.PartType {
		case labels.General:
			dash.GeneralReqItems += r.ReqItems
			dash.GeneralApprItems += r.ApprItems
		case labels.Consumable:
			dash.ConsumableReqItems += r.ReqItems
			dash.ConsumableApprItems += r.ApprItems
		}
	}

	for i := range diffs {
		r := &diffs[i]
		if f.Location != "" && r.Location != f.Location {
			continue
		}
		if f.PartType != "" && r.PartType != f.PartType {
			continue
		}

		if r.HasNote() {
			dash.ApprQty += r.DiffQty
			if r.ApprQty == 0 {
				dash.ApprItems++
				switch r.PartType {
				case labels.General:
					dash.GeneralApprItems++
				case labels.Consumable:
					dash.ConsumableApprItems++
				}
			}
			continue
		}

		if r.DiffQty > 0 {
			dash.DiffItemCount++
			switch r.PartType {
			case labels.General:
				dash.DiffGeneralCount++
			case labels.Consumable:
				dash.DiffConsumableCount++
			}
			dash.DiffByMovement[r.Movement]++
		}
	}

	dash.DiffQty = dash.ReqQty - dash.ApprQty
	if dash.DiffQty < 0 {
		dash.DiffQty = 0
	}
	if dash.ReqQty > 0 {
		dash.EfficiencyPercent = dash.ApprQty / dash.ReqQty * 100
	}

	dash.Locations = buildLocationSeries(summary, diffs, f.PartType, labels)
	return dash
}

// buildLocationSeries aggregates the efficiency chart per location from the
// summary rows, with the same note adjustments applied from the
// time-filtered diff lines, sorted by efficiency descending.
func buildLocationSeries(summary []domain.AggregateRow, diffs []domain.DiffRecord, partType string, labels Labels) []domain.LocationEfficiency {
	byLocation := make(map[string]*domain.LocationEfficiency)
	for i := range summary {
		r := &summary[i]
		if partType != "" && r.PartType != partType {
			continue
		}
		loc := r.Location
		if loc == "" {
			loc = "Unknown"
		}
		agg, ok := byLocation[loc]
		if !ok {
			agg = &domain.LocationEfficiency{Location: loc}
			byLocation[loc] = agg
		}
		agg.ReqQty += r.ReqQty
		agg.ApprQty += r.ApprQty
		agg.ReqItems += r.ReqItems
		agg.ApprItems += r.ApprItems
	}

	for i := range diffs {
		r := &diffs[i]
		if partType != "" && r.PartType != partType {
			continue
		}
		if !r.HasNote() {
			continue
		}
		loc := r.Location
		if loc == "" {
			loc = "Unknown"
		}
		agg, ok := byLocation[loc]
		if !ok {
			continue
		}
		agg.ApprQty += r.DiffQty
		if r.ApprQty == 0 {
			agg.ApprItems++
		}
	}

	series := make([]domain.LocationEfficiency, 0, len(byLocation))
	for _, agg := range byLocation {
		if agg.ReqQty > 0 {
			agg.Percent = agg.ApprQty / agg.ReqQty * 100
		}
		series = append(series, *agg)
	}
	sort.SliceStable(series, func(a, b int) bool {
		if series[a].Percent != series[b].Percent {
			return series[a].Percent > series[b].Percent
		}
		return series[a].Location < series[b].Location
	})
	return series
}

// FilterOptions are the distinct selectable values present in the loaded
// reports.
type FilterOptions struct {
	Dates     []string `json:"dates"`
	Months    []string `json:"months"`
	Quarters  []string `json:"quarters"`
	PartTypes []string `json:"part_types"`
	Locations []string `json:"locations"`
}

// CollectFilterOptions gathers distinct dates (daily report plus diff
// lines), months, quarters, part types and locations. Dates and months sort
// newest first, quarters and the rest ascending.
func CollectFilterOptions(diffs []domain.DiffRecord, daily, monthly, quarterly []domain.AggregateRow) FilterOptions {
	dates := make(map[string]struct{})
	months := make(map[string]struct{})
	quarters := make(map[string]struct{})
	partTypes := make(map[string]struct{})
	locations := make(map[string]struct{})

	for i := range daily {
		if daily[i].Bucket != "" {
			dates[daily[i].Bucket] = struct{}{}
		}
	}
	for i := range monthly {
		if monthly[i].Bucket != "" {
			months[monthly[i].Bucket] = struct{}{}
		}
	}
	for i := range quarterly {
		if quarterly[i].Bucket != "" {
			quarters[quarterly[i].Bucket] = struct{}{}
		}
	}
	for i := range diffs {
		r := &diffs[i]
		if r.Date != "" {
			dates[r.Date] = struct{}{}
		}
		if r.PartType != "" {
			partTypes[r.PartType] = struct{}{}
		}
		if r.Location != "" {
			locations[r.Location] = struct{}{}
		}
	}

	opts := FilterOptions{
		Dates:     keys(dates),
		Months:    keys(months),
		Quarters:  keys(quarters),
		PartTypes: keys(partTypes),
		Locations: keys(locations),
	}
	sort.SliceStable(opts.Dates, func(a, b int) bool {
		return ParseDate(opts.Dates[a]).After(ParseDate(opts.Dates[b]))
	})
	sort.SliceStable(opts.Months, func(a, b int) bool {
		return ParseDate("1/"+opts.Months[a]).After(ParseDate("1/" + opts.Months[b]))
	})
	sort.Strings(opts.Quarters)
	sort.Strings(opts.PartTypes)
	sort.Strings(opts.Locations)
	return opts
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
