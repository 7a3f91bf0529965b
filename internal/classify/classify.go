// internal/classify/classify.go

// Package classify derives ABC classes, movement classes and replenishment
// signals from fused inventory records. Pure computation, no I/O.
package classify

import (
	"math"
	"sort"

	"github.com/abc-shortship/backend-go/internal/domain"
)

// Classification is the Pareto ranking result for one record.
type Classification struct {
	Class      string
	CumPercent float64
}

// ClassifyABC ranks the full record set by on-hand value descending and
// assigns classes by cumulative share of total value (A at 70%, B at 90%,
// C beyond). Ranking is always over the entire set so that a narrowed view
// never changes a record's class; ties keep input order.
func ClassifyABC(records []domain.InventoryRecord) map[string]Classification {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].OnHandValue > records[order[b]].OnHandValue
	})

	var total float64
	for i := range records {
		total += records[i].OnHandValue
	}

	result := make(map[string]Classification, len(records))
	var running float64
	for _, idx := range order {
		running += records[idx].OnHandValue

		var pct float64
		if total > 0 {
			pct = running / total * 100
		}

		class := domain.ClassC
		switch {
		case pct <= 70:
			class = domain.ClassA
		case pct <= 90:
			class = domain.ClassB
		}

		result[records[idx].Key()] = Classification{Class: class, CumPercent: pct}
	}
	return result
}

// MovementOf buckets average monthly usage into a movement class. Upper
// bounds are exclusive; Fast is unbounded.
func MovementOf(avgMonthly float64) string {
	switch {
	case avgMonthly == 0:
		return domain.MovementNonMoving
	case avgMonthly < 0.7:
		return domain.MovementSlowly
	case avgMonthly < 12:
		return domain.MovementSlow
	case avgMonthly < 30:
		return domain.MovementMedium
	default:
		return domain.MovementFast
	}
}

// keepRule is one row of the keep-quantity policy table.
type keepRule struct {
	floor      float64
	multiplier float64
}

// Keep-quantity policy by (movement, class). Slow/C and Slow/B are
// intentionally identical; the unlisted-pair fallback must stay distinct.
var keepRules = map[string]map[string]keepRule{
	domain.MovementSlow: {
		domain.ClassC: {1, 60},
		domain.ClassB: {1, 60},
		domain.ClassA: {3, 60},
	},
	domain.MovementMedium: {
		domain.ClassC: {2, 60},
		domain.ClassB: {4, 60},
		domain.ClassA: {6, 75},
	},
	domain.MovementFast: {
		domain.ClassC: {5, 60},
		domain.ClassB: {8, 90},
		domain.ClassA: {10, 120},
	},
}

var fallbackKeepRule = keepRule{1, 40}

// KeepQty returns the minimum units to retain for a movement/class pair
// given average monthly usage. Non-moving and slowly-moving stock keeps a
// single unit regardless of class.
func KeepQty(movement, class string, avgMonthly float64) float64 {
	if movement == domain.MovementNonMoving || movement == domain.MovementSlowly {
		return 1
	}
	rule := fallbackKeepRule
	if byClass, ok := keepRules[movement]; ok {
		if r, ok := byClass[class]; ok {
			rule = r
		}
	}
	return math.Max(rule.floor, math.Round(finite(avgMonthly)*rule.multiplier))
}

// Derive computes every derived field for one record under the given
// parameters and classification snapshot. Arithmetic never yields NaN or
// infinity; pathological intermediate values are coerced to 0.
func Derive(r domain.InventoryRecord, cls Classification, params domain.ReplenishParams) domain.DerivedRecord {
	p := params.Sanitize()

	daily := finite(r.AvgDailyUsage())
	avgMonthly := finite(r.AvgMonthlyUsage())

	safetyStock := daily * float64(p.SafetyDays)
	rop := daily*float64(p.LeadTimeDays) + safetyStock

	dos := float64(domain.StockDaysCap)
	if daily > 0 {
		dos = r.OnHandQty / daily
		if dos > domain.StockDaysCap {
			dos = domain.StockDaysCap
		} else {
			dos = math.Round(dos*10) / 10
		}
	}

	var recommend float64
	if r.OnHandQty < rop {
		recommend = daily*float64(p.CoverDays) - r.OnHandQty
		if recommend < 0 {
			recommend = 0
		}
	}
	multiply := r.MultiplyUnit
	if multiply <= 0 {
		multiply = 1
	}
	recommend = math.Ceil(recommend/multiply) * multiply

	movement := MovementOf(avgMonthly)
	mean := math.Max(r.ThirtyDayQty, avgMonthly)

	// Literal business rules: recent activity contradicting a stale
	// four-month average suppresses the recommendation.
	slowish := movement == domain.MovementSlow || movement == domain.MovementSlowly
	if mean == 0 && slowish {
		recommend = 0
	}
	if r.ThirtyDayQty == 0 && slowish {
		recommend = 0
	}
	if r.ThirtyDayQty >= r.FourMonthQty && movement == domain.MovementSlowly {
		recommend = 0
	}

	keep := KeepQty(movement, cls.Class, avgMonthly)
	returnQty := math.Max(0, r.OnHandQty-keep)
	returnValue := returnQty * r.UnitPrice()

	return domain.DerivedRecord{
		InventoryRecord: r,
		ABCClass:        cls.Class,
		CumPercent:      finite(cls.CumPercent),
		Movement:        movement,

		AvgDaily:   daily,
		AvgMonthly: avgMonthly,
		Mean:       finite(mean),

		SafetyStock:      int(math.Round(finite(safetyStock))),
		ReorderPoint:     int(math.Round(finite(rop))),
		DaysOfSupply:     finite(dos),
		RecommendedOrder: int(math.Round(finite(recommend))),

		KeepQty:     int(math.Round(keep)),
		ReturnQty:   int(math.Round(finite(returnQty))),
		ReturnValue: finite(returnValue),
	}
}

// finite coerces NaN and infinities to 0 so they never reach an aggregate.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
