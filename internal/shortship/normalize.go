// internal/shortship/normalize.go

// Package shortship reconciles shipment-difference reports against the
// classifier's movement output and operator notes, and derives the
// short-ship dashboard aggregates.
package shortship

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/fuse"
	"github.com/abc-shortship/backend-go/internal/source"
)

// NoteIndex maps a "docNo-itemCode" composite key to an operator note.
type NoteIndex map[string]string

// BuildNoteIndex collapses the remarks feed into a note lookup. Rows with an
// explicit Key column are indexed by it directly; otherwise the key is built
// from document number and item code.
func BuildNoteIndex(remarks []source.Row) NoteIndex {
	idx := make(NoteIndex, len(remarks))
	for _, r := range remarks {
		note := r.String("Note", "Remark")
		if note == "" {
			continue
		}
		if key := r.String("Key"); key != "" {
			idx[strings.TrimSpace(key)] = note
			continue
		}
		doc := strings.TrimSpace(r.String("DocNo", "Doc No", "Document Number"))
		item := strings.TrimSpace(r.String("Material Code", "Material", "Item Code"))
		if doc != "" && item != "" {
			idx[doc+"-"+item] = note
		}
	}
	return idx
}

// ApplyOverrides layers queued correction entries on top of the index.
// Outbox entries win over remarks and raw-report notes.
func (idx NoteIndex) ApplyOverrides(entries []domain.CorrectionEntry) {
	for i := range entries {
		idx[entries[i].Key()] = entries[i].Note
	}
}

// NormalizeDiffRows maps heterogeneous report columns onto DiffRecords,
// pads location codes, cleans date strings and resolves movement class and
// note per line. movements maps composite location-item keys to movement
// classes; lines absent from it are Non Moving, and the legacy Dead label
// collapses into Non Moving.
func NormalizeDiffRows(rows []source.Row, movements map[string]string, notes NoteIndex) []domain.DiffRecord {
	records := make([]domain.DiffRecord, 0, len(rows))
	for _, r := range rows {
		rec := domain.DiffRecord{
			DocNo:       strings.TrimSpace(r.String("DocNo", "Doc No", "Document Number")),
			CreateDate:  cleanDate(r.String("Create Date", "Created")),
			ReceiveDate: cleanDate(r.String("Receive Date", "Received")),
			Date:        cleanDate(r.String("Date")),
			ItemCode:    strings.TrimSpace(r.String("Material Code", "Material", "Item Code")),
			ItemName:    r.String("Material Name", "Item Name"),
			PartType:    strings.TrimSpace(r.String("Part Type")),
			Requestor:   r.String("Requestor"),
			Transferor:  r.String("Transferor"),
			ReqQty:      r.Float("Req Qty", "Requested Qty"),
			ApprQty:     r.Float("Appr Qty", "Approved Qty"),
			DiffQty:     r.Float("Diff", "Diff Qty"),
			Location:    fuse.NormalizeLocation(r.String("Plant", "Location"), 4),
		}

		movement := movements[rec.Location+"-"+rec.ItemCode]
		if movement == "" || movement == "Dead" {
			movement = domain.MovementNonMoving
		}
		rec.Movement = movement

		if note, ok := notes[rec.Key()]; ok {
			rec.Note = note
		} else {
			rec.Note = r.String("Note", "Remark")
		}

		records = append(records, rec)
	}
	return records
}

// NormalizeAggregateRows maps a pre-aggregated report onto AggregateRows.
// bucketNames lists the column variants holding the time bucket (a date,
// month or quarter label).
func NormalizeAggregateRows(rows []source.Row, bucketNames ...string) []domain.AggregateRow {
	names := append(append([]string{}, bucketNames...), "Date")
	records := make([]domain.AggregateRow, 0, len(rows))
	for _, r := range rows {
		records = append(records, domain.AggregateRow{
			Bucket:    cleanDate(r.String(names...)),
			Location:  fuse.NormalizeLocation(r.String("Plant", "Location"), 4),
			PartType:  strings.TrimSpace(r.String("Part Type")),
			ReqQty:    r.Float("Req Qty"),
			ApprQty:   r.Float("Real Appr Qty", "Appr Qty"),
			ReqItems:  r.Int("Req Items"),
			ApprItems: r.Int("Appr Items"),
			DocCount:  r.Int("Doc Count"),
		})
	}
	return records
}

// cleanDate drops a trailing time component from "d/m/yyyy hh:mm" values.
func cleanDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseDate parses a d/m/yyyy date. Invalid or unparseable dates return the
// zero time so they sort earliest.
func ParseDate(s string) time.Time {
	parts := strings.Split(cleanDate(s), "/")
	if len(parts) < 3 {
		return time.Time{}
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// MonthOf returns the m/yyyy month label of a d/m/yyyy date, "" when the
// date has no month part.
func MonthOf(date string) string {
	parts := strings.Split(cleanDate(date), "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[1] + "/" + parts[2]
}

// QuarterOf returns the Qn/yyyy quarter label of a d/m/yyyy date.
func QuarterOf(date string) string {
	parts := strings.Split(cleanDate(date), "/")
	if len(parts) < 3 {
		return ""
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 {
		return ""
	}
	quarter := (month + 2) / 3
	return "Q" + strconv.Itoa(quarter) + "/" + parts[2]
}

// SortByDateDesc orders records newest first. Unparseable dates go last.
func SortByDateDesc(records []domain.DiffRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return ParseDate(records[i].Date).After(ParseDate(records[j].Date))
	})
}

// WindowRecent restricts records to those within windowDays of the latest
// parseable date present. Records must already be sorted newest first.
func WindowRecent(records []domain.DiffRecord, windowDays int) []domain.DiffRecord {
	if len(records) == 0 || windowDays <= 0 {
		return records
	}
	latest := ParseDate(records[0].Date)
	if latest.IsZero() {
		return records
	}
	cutoff := latest.AddDate(0, 0, -windowDays)
	kept := records[:0:len(records)]
	for i := range records {
		if !ParseDate(records[i].Date).Before(cutoff) {
			kept = append(kept, records[i])
		}
	}
	return kept
}

// ApplyCorrection merges one correction entry into matching records in
// place. Returns the number of records whose note actually changed;
// reapplying an identical entry is a no-op.
func ApplyCorrection(records []domain.DiffRecord, entry domain.CorrectionEntry) int {
	doc := strings.TrimSpace(entry.DocumentNumber)
	item := strings.TrimSpace(entry.ItemCode)
	changed := 0
	for i := range records {
		if strings.TrimSpace(records[i].DocNo) == doc && strings.TrimSpace(records[i].ItemCode) == item {
			if records[i].Note != entry.Note {
				records[i].Note = entry.Note
				changed++
			}
		}
	}
	return changed
}
