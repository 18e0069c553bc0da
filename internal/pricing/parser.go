package pricing

import (
	"strings"

	"go.uber.org/zap"
)

// Range is one contiguous block of spreadsheet rows from a pricing source.
type Range struct {
	Name string
	Rows [][]string
}

// headerScanRows bounds the header hunt: a range whose first rows are all
// decoration is assumed to hold no pricing table.
const headerScanRows = 5

// ParseRanges parses every range into pricing records, in order. Ranges
// without a recognizable header contribute nothing; records without a Model
// are dropped. No deduplication happens across ranges or sources.
func ParseRanges(ranges []Range) []Record {
	var out []Record
	for _, r := range ranges {
		out = append(out, parseRange(r)...)
	}
	return out
}

func parseRange(r Range) []Record {
	hi := headerIndex(r.Rows)
	if hi < 0 {
		zap.L().Debug("pricing: no header row found, skipping range",
			zap.String("range", r.Name),
			zap.Int("rows", len(r.Rows)),
		)
		return nil
	}

	header := r.Rows[hi]
	var records []Record
	for _, row := range r.Rows[hi+1:] {
		rec := buildRecord(header, row)
		if rec.Valid() {
			records = append(records, rec)
		}
	}
	return records
}

// headerIndex locates the header row by keyword sniffing within the first
// headerScanRows rows. Returns -1 when no row qualifies.
func headerIndex(rows [][]string) int {
	limit := min(headerScanRows, len(rows))
	for i := range limit {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(joined, "model") || strings.Contains(joined, "engine") {
			return i
		}
	}
	return -1
}

// buildRecord zips header cells with row cells up to the shorter of the two,
// keeping only pairs where both sides are non-empty after trimming.
func buildRecord(header, row []string) Record {
	n := min(len(header), len(row))
	var rec Record
	for i := range n {
		h := strings.TrimSpace(header[i])
		v := strings.TrimSpace(row[i])
		if h == "" || v == "" {
			continue
		}
		rec.Set(h, v)
	}
	return rec
}
