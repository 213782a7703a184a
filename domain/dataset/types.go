// Package dataset holds the doctorate-recipient table and the operations the
// dashboard performs on it.
package dataset

import (
	"time"
)

// Column names as they appear in the published TSV header
const (
	ColumnYear       = "Year"
	ColumnRecipients = "Doctorate recipients"
	ColumnPctChange  = "% change from previous year"
	ColumnDecade     = "decade"
)

// Record is one row of the dataset
type Record struct {
	Year         int      `json:"year"`
	Recipients   float64  `json:"doctorate_recipients"`
	PctChange    float64  `json:"pct_change"`
	HasPctChange bool     `json:"has_pct_change"`
	Decade       string   `json:"decade"`
	Cells        []string `json:"cells"`
}

// Table is an immutable, parsed copy of the dataset. Columns keeps the header
// order so raw cells can be displayed exactly as published.
type Table struct {
	Columns  []string  `json:"columns"`
	Records  []Record  `json:"records"`
	Source   string    `json:"source,omitempty"`
	Digest   string    `json:"digest,omitempty"`
	LoadID   string    `json:"load_id,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Years returns the smallest and largest Year in the table. Both are zero for
// an empty table.
func (t *Table) Years() (min, max int) {
	for i, r := range t.Records {
		if i == 0 || r.Year < min {
			min = r.Year
		}
		if i == 0 || r.Year > max {
			max = r.Year
		}
	}
	return min, max
}

// Decades returns the distinct decade buckets in first-seen order
func (t *Table) Decades() []string {
	seen := make(map[string]bool)
	var decades []string
	for _, r := range t.Records {
		if seen[r.Decade] {
			continue
		}
		seen[r.Decade] = true
		decades = append(decades, r.Decade)
	}
	return decades
}

// Equal compares table content. Load metadata (source, digest, load id and
// time) is ignored.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !equalStrings(t.Columns, other.Columns) || len(t.Records) != len(other.Records) {
		return false
	}
	for i := range t.Records {
		if !t.Records[i].Equal(other.Records[i]) {
			return false
		}
	}
	return true
}

// Equal compares two records field by field
func (r Record) Equal(other Record) bool {
	return r.Year == other.Year &&
		r.Recipients == other.Recipients &&
		r.HasPctChange == other.HasPctChange &&
		(!r.HasPctChange || r.PctChange == other.PctChange) &&
		r.Decade == other.Decade &&
		equalStrings(r.Cells, other.Cells)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
