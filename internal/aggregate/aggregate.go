// Package aggregate computes frequency and time-bucket statistics over
// normalized records. Every function here is pure: no state survives
// between calls.
package aggregate

import (
	"sort"
	"strconv"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

// Row is one label with its occurrence count.
type Row struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Table is an ordered frequency table, highest count first.
type Table []Row

// Bucket is one time bucket with its occurrence count.
type Bucket struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// KeyFunc extracts the grouping key from a record. Sentinel-valued keys
// group together like any other value.
type KeyFunc func(*record.Record) string

// TopN groups records by key, counts occurrences, and returns the n most
// frequent keys in descending count order. Ties keep first-seen input
// order, so a fixed input order always yields the same table. n <= 0
// returns the full table.
func TopN(records []*record.Record, key KeyFunc, n int) Table {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, r := range records {
		k := key(r)
		if _, ok := counts[k]; !ok {
			firstSeen[k] = len(firstSeen)
		}
		counts[k]++
	}

	table := make(Table, 0, len(counts))
	for label, count := range counts {
		table = append(table, Row{Label: label, Count: count})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return firstSeen[table[i].Label] < firstSeen[table[j].Label]
	})

	if n > 0 && len(table) > n {
		table = table[:n]
	}
	return table
}

// CountBy groups records by key and returns one bucket per distinct value,
// ordered by less. Only values that actually occur are emitted; gaps are
// never zero-filled.
func CountBy(records []*record.Record, key KeyFunc, less func(a, b string) bool) []Bucket {
	counts := make(map[string]int)
	for _, r := range records {
		counts[key(r)]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })

	buckets := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, Bucket{Bucket: k, Count: counts[k]})
	}
	return buckets
}

// CountByDate counts records per calendar date in chronological order.
// ISO dates sort chronologically as strings.
func CountByDate(records []*record.Record) []Bucket {
	return CountBy(records, func(r *record.Record) string { return r.Date }, lexicalAsc)
}

// CountByHour counts records per hour of day (0-23) in numeric order.
func CountByHour(records []*record.Record) []Bucket {
	return CountBy(records, func(r *record.Record) string { return strconv.Itoa(r.Hour) }, NumericAsc)
}

// Distinct counts the number of distinct key values across records.
func Distinct(records []*record.Record, key KeyFunc) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[key(r)] = struct{}{}
	}
	return len(seen)
}

// Filter returns the records matching pred, preserving input order.
func Filter(records []*record.Record, pred func(*record.Record) bool) []*record.Record {
	var out []*record.Record
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func lexicalAsc(a, b string) bool { return a < b }

// NumericAsc orders labels numerically where both parse as integers, and
// lexically otherwise (non-numeric labels such as "N/A" sort last).
func NumericAsc(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
