// internal/fuse/fuse.go

// Package fuse merges the usage, stock and reference feeds into unified
// per-location-per-item inventory records.
package fuse

import (
	"math"
	"strings"

	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/source"
)

// NormalizeLocation pads a location code to the given width with leading
// zeros. Feeds drop the leading zero of 4-digit codes; codes already at or
// beyond the width pass through unchanged.
func NormalizeLocation(code string, width int) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < width {
		code = "0" + code
	}
	return code
}

// referenceEntry is the location-independent slice of the master table.
type referenceEntry struct {
	note         string
	multiplyUnit float64
	product      string
}

// BuildRecords computes the union of keys present in the usage or stock
// feeds and synthesizes one InventoryRecord per key. A side absent for a key
// contributes zero quantities and empty strings. The reference table is
// keyed by item code alone.
func BuildRecords(src *source.InventorySources) []domain.InventoryRecord {
	usageByKey := make(map[string]source.Row, len(src.Usage))
	stockByKey := make(map[string]source.Row, len(src.Stock))
	refByItem := make(map[string]referenceEntry, len(src.Reference))

	keyOf := func(r source.Row) string {
		loc := NormalizeLocation(r.String("Plant", "Location"), 4)
		item := strings.TrimSpace(r.String("Material", "Item Code"))
		return loc + "-" + item
	}

	for _, r := range src.Usage {
		usageByKey[keyOf(r)] = r
	}
	for _, r := range src.Stock {
		stockByKey[keyOf(r)] = r
	}
	for _, r := range src.Reference {
		item := strings.TrimSpace(r.String("Material", "Item Code"))
		if item == "" {
			continue
		}
		refByItem[item] = referenceEntry{
			note:         r.String("Note", "Remark"),
			multiplyUnit: r.Float("MultiplyUnit", "Multiply Unit"),
			product:      r.String("Product"),
		}
	}

	keys := make(map[string]struct{}, len(usageByKey)+len(stockByKey))
	for k := range usageByKey {
		keys[k] = struct{}{}
	}
	for k := range stockByKey {
		keys[k] = struct{}{}
	}

	records := make([]domain.InventoryRecord, 0, len(keys))
	for key := range keys {
		loc, item, ok := strings.Cut(key, "-")
		if !ok {
			continue
		}

		u := usageByKey[key]
		s := stockByKey[key]

		qty4m := u.Float("Qtyissu", "Qty 4 Month")
		qty6m := u.Float("Qtyissu6m", "Qty 6 Month")
		if qty6m == 0 {
			qty6m = math.Round(qty4m * 1.5)
		}

		rec := domain.InventoryRecord{
			Location:     loc,
			ItemCode:     item,
			Description:  s.String("Material description", "Description"),
			Unit:         s.String("Base Unit of Measure", "Unit"),
			OnHandQty:    s.Float("Unrestricted", "On Hand"),
			OnHandValue:  s.Float("Value Unrestricted", "Value"),
			SixMonthQty:  qty6m,
			FourMonthQty: qty4m,
			ThirtyDayQty: u.Float("30Day", "Thirty Day"),
		}

		if ref, ok := refByItem[item]; ok {
			rec.Note = ref.note
			rec.MultiplyUnit = ref.multiplyUnit
			rec.Product = ref.product
		} else {
			rec.MultiplyUnit = 1
		}

		records = append(records, rec)
	}

	backfillDescriptions(records)
	return records
}

// backfillDescriptions copies a description onto records missing one from
// any other location's record for the same item code. Some stock feeds lack
// a description column entirely.
func backfillDescriptions(records []domain.InventoryRecord) {
	byItem := make(map[string]string)
	for i := range records {
		if records[i].Description != "" {
			if _, ok := byItem[records[i].ItemCode]; !ok {
				byItem[records[i].ItemCode] = records[i].Description
			}
		}
	}
	for i := range records {
		if records[i].Description == "" {
			if desc, ok := byItem[records[i].ItemCode]; ok {
				records[i].Description = desc
			}
		}
	}
}
