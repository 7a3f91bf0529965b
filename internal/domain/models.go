// internal/domain/models.go
package domain

// ABC classes, Pareto tiers by cumulative share of total value.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
)

// Movement classes derived from average monthly usage.
const (
	MovementNonMoving = "Non Moving"
	MovementSlowly    = "Slowly"
	MovementSlow      = "Slow"
	MovementMedium    = "Medium"
	MovementFast      = "Fast"
)

// InventoryRecord is one fused per-location-per-item record built from the
// usage, stock and reference feeds. Base fields only; everything derived
// lives in DerivedRecord and is recomputed per query.
type InventoryRecord struct {
	Location     string  `json:"location"`
	ItemCode     string  `json:"item_code"`
	Description  string  `json:"description"`
	Unit         string  `json:"unit"`
	OnHandQty    float64 `json:"on_hand_qty"`
	OnHandValue  float64 `json:"on_hand_value"`
	SixMonthQty  float64 `json:"six_month_qty"`
	FourMonthQty float64 `json:"four_month_qty"`
	ThirtyDayQty float64 `json:"thirty_day_qty"`
	MultiplyUnit float64 `json:"multiply_unit"`
	Note         string  `json:"note"`
	Product      string  `json:"product"`
}

// Key returns the composite location-item key shared by both subsystems.
func (r *InventoryRecord) Key() string {
	return r.Location + "-" + r.ItemCode
}

// AvgDailyUsage is the four-month quantity spread over 120 days.
func (r *InventoryRecord) AvgDailyUsage() float64 {
	return r.FourMonthQty / 120
}

// AvgMonthlyUsage is the four-month quantity spread over 4 months.
func (r *InventoryRecord) AvgMonthlyUsage() float64 {
	return r.FourMonthQty / 4
}

// UnitPrice derives the per-unit value from on-hand quantity and value.
func (r *InventoryRecord) UnitPrice() float64 {
	if r.OnHandQty > 0 {
		return r.OnHandValue / r.OnHandQty
	}
	return 0
}

// DerivedRecord is an InventoryRecord snapshot together with its
// classification and replenishment fields for the active configuration.
type DerivedRecord struct {
	InventoryRecord

	ABCClass   string  `json:"abc_class"`
	CumPercent float64 `json:"cum_percent"`
	Movement   string  `json:"movement"`

	AvgDaily   float64 `json:"avg_daily"`
	AvgMonthly float64 `json:"avg_monthly"`
	Mean       float64 `json:"mean"`

	SafetyStock      int     `json:"safety_stock"`
	ReorderPoint     int     `json:"reorder_point"`
	DaysOfSupply     float64 `json:"days_of_supply"`
	RecommendedOrder int     `json:"recommended_order"`

	KeepQty     int     `json:"keep_qty"`
	ReturnQty   int     `json:"return_qty"`
	ReturnValue float64 `json:"return_value"`
}

// ReplenishParams is the active replenishment configuration. Zero or
// negative values mean "use the documented default".
type ReplenishParams struct {
	LeadTimeDays int `json:"lead_time_days"`
	SafetyDays   int `json:"safety_days"`
	CoverDays    int `json:"cover_days"`
}

// Documented defaults for ReplenishParams.
const (
	DefaultLeadTimeDays = 5
	DefaultSafetyDays   = 3
	DefaultCoverDays    = 40
)

// Sanitize replaces out-of-range values with the defaults.
func (p ReplenishParams) Sanitize() ReplenishParams {
	if p.LeadTimeDays <= 0 {
		p.LeadTimeDays = DefaultLeadTimeDays
	}
	if p.SafetyDays <= 0 {
		p.SafetyDays = DefaultSafetyDays
	}
	if p.CoverDays <= 0 {
		p.CoverDays = DefaultCoverDays
	}
	return p
}

// Or fills absent fields from the deployment-configured defaults. Explicit
// per-request values always win.
func (p ReplenishParams) Or(defaults ReplenishParams) ReplenishParams {
	if p.LeadTimeDays <= 0 {
		p.LeadTimeDays = defaults.LeadTimeDays
	}
	if p.SafetyDays <= 0 {
		p.SafetyDays = defaults.SafetyDays
	}
	if p.CoverDays <= 0 {
		p.CoverDays = defaults.CoverDays
	}
	return p
}

// CorrectionEntry is an operator-submitted note for one difference-report
// line. The JSON field names are the wire format of the remote save endpoint.
type CorrectionEntry struct {
	DocumentNumber string `json:"documentNumber"`
	ItemCode       string `json:"itemCode"`
	ItemName       string `json:"itemName"`
	PartType       string `json:"partType"`
	Note           string `json:"note"`
	User           string `json:"user"`
}

// Key returns the (document, item) identity used for note application.
func (e *CorrectionEntry) Key() string {
	return e.DocumentNumber + "-" + e.ItemCode
}
