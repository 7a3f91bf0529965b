// internal/domain/filters.go
package domain

// View modes for the inventory table.
const (
	ModeAll        = "all"
	ModeOrder      = "order"
	ModeReturnable = "returnable"
)

// Note-presence filters for the short-ship table.
const (
	NoteAny      = "any"
	NoteEmpty    = "empty"
	NoteNotEmpty = "not_empty"
)

// RecordFilter describes one inventory view request: narrowing, mode,
// class/movement slices, sort and page, plus the replenishment parameters the
// derived fields are recomputed with.
type RecordFilter struct {
	Location string `json:"location"`
	Search   string `json:"search"`
	Mode     string `json:"mode"`
	ABCClass string `json:"abc_class"`
	Movement string `json:"movement"`

	SortField string `json:"sort_field"`
	SortDir   string `json:"sort_dir"`

	Page     int `json:"page"`
	PageSize int `json:"page_size"`

	Params ReplenishParams `json:"params"`
}

// DiffFilter describes one short-ship view request. Date/Month/Quarter pick
// the aggregate report feeding the dashboard (date wins over month over
// quarter).
type DiffFilter struct {
	Search   string `json:"search"`
	Date     string `json:"date"`
	Month    string `json:"month"`
	Quarter  string `json:"quarter"`
	PartType string `json:"part_type"`
	Location string `json:"location"`
	Movement string `json:"movement"`
	Note     string `json:"note"`

	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
