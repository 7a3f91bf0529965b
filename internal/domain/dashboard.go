// internal/domain/dashboard.go
package domain

// StockDaysCap is the sentinel ceiling for days-of-supply style figures.
// Anything above it is reported as the cap itself.
const StockDaysCap = 9999

// ValueSlice is one dashboard card: total value and item count of a slice.
type ValueSlice struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// LocationSummary is the per-location series behind the inventory chart.
type LocationSummary struct {
	Location     string  `json:"location"`
	TotalValue   float64 `json:"total_value"`
	ReturnValue  float64 `json:"return_value"`
	UsageValue4M float64 `json:"usage_value_4m"`
	StockDays    int     `json:"stock_days"`
}

// InventoryDashboard is the aggregate payload for the inventory view.
// StockDays figures are nil when the derived daily usage value is zero.
type InventoryDashboard struct {
	TotalStockValue        float64 `json:"total_stock_value"`
	OrderItemCount         int     `json:"order_item_count"`
	OrderValue             float64 `json:"order_value"`
	ReturnItemCount        int     `json:"return_item_count"`
	ReturnValue            float64 `json:"return_value"`
	MonthlyWithdrawalValue float64 `json:"monthly_withdrawal_value"`
	StockDays              *int    `json:"stock_days"`
	AfterReturnStockDays   *int    `json:"after_return_stock_days"`
	FilteredCount          int     `json:"filtered_count"`

	ByClass    map[string]ValueSlice `json:"by_class"`
	ByMovement map[string]ValueSlice `json:"by_movement"`

	Locations []LocationSummary `json:"locations"`
}

// LocationEfficiency is one bar of the short-ship efficiency chart.
type LocationEfficiency struct {
	Location  string  `json:"location"`
	ReqQty    float64 `json:"req_qty"`
	ApprQty   float64 `json:"appr_qty"`
	ReqItems  int     `json:"req_items"`
	ApprItems int     `json:"appr_items"`
	Percent   float64 `json:"percent"`
}

// ShortShipDashboard is the aggregate payload for the short-ship view, with
// operator-note adjustments already applied.
type ShortShipDashboard struct {
	DocCount  int     `json:"doc_count"`
	ReqItems  int     `json:"req_items"`
	ApprItems int     `json:"appr_items"`
	ReqQty    float64 `json:"req_qty"`
	ApprQty   float64 `json:"appr_qty"`
	DiffQty   float64 `json:"diff_qty"`

	EfficiencyPercent float64 `json:"efficiency_percent"`

	GeneralReqItems     int `json:"general_req_items"`
	GeneralApprItems    int `json:"general_appr_items"`
	ConsumableReqItems  int `json:"consumable_req_items"`
	ConsumableApprItems int `json:"consumable_appr_items"`

	DiffItemCount       int            `json:"diff_item_count"`
	DiffGeneralCount    int            `json:"diff_general_count"`
	DiffConsumableCount int            `json:"diff_consumable_count"`
	DiffByMovement      map[string]int `json:"diff_by_movement"`

	Locations []LocationEfficiency `json:"locations"`
}

// OutboxStatus is the queue indicator exposed to the presentation layer.
type OutboxStatus struct {
	Depth      int  `json:"depth"`
	Delivering bool `json:"delivering"`
}
