// internal/domain/shortship.go
package domain

import "strings"

// DiffRecord is one normalized shipment-difference document line. Dates stay
// as d/m/yyyy strings, the form the report feeds use.
type DiffRecord struct {
	DocNo       string  `json:"doc_no"`
	CreateDate  string  `json:"create_date"`
	ReceiveDate string  `json:"receive_date"`
	Date        string  `json:"date"`
	ItemCode    string  `json:"item_code"`
	ItemName    string  `json:"item_name"`
	PartType    string  `json:"part_type"`
	Requestor   string  `json:"requestor"`
	Transferor  string  `json:"transferor"`
	ReqQty      float64 `json:"req_qty"`
	ApprQty     float64 `json:"appr_qty"`
	DiffQty     float64 `json:"diff_qty"`
	Location    string  `json:"location"`
	Movement    string  `json:"movement"`
	Note        string  `json:"note"`
}

// HasNote reports whether the line carries a non-empty operator note.
func (r *DiffRecord) HasNote() bool {
	return strings.TrimSpace(r.Note) != ""
}

// Key returns the (document, item) identity used for note application.
func (r *DiffRecord) Key() string {
	return strings.TrimSpace(r.DocNo) + "-" + strings.TrimSpace(r.ItemCode)
}

// AggregateRow is one pre-aggregated request/approval row keyed by a time
// bucket (a date, month or quarter label) and location. Read-only after load.
type AggregateRow struct {
	Bucket    string  `json:"bucket"`
	Location  string  `json:"location"`
	PartType  string  `json:"part_type"`
	ReqQty    float64 `json:"req_qty"`
	ApprQty   float64 `json:"appr_qty"`
	ReqItems  int     `json:"req_items"`
	ApprItems int     `json:"appr_items"`
	DocCount  int     `json:"doc_count"`
}
