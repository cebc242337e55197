package aggregate

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

func rec(ip string, ts time.Time) *record.Record {
	r := record.New(record.FamilyCowrie, ts)
	r.SrcIP = ip
	return r
}

func recsFromIPs(ips ...string) []*record.Record {
	base := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
	out := make([]*record.Record, 0, len(ips))
	for i, ip := range ips {
		out = append(out, rec(ip, base.Add(time.Duration(i)*time.Minute)))
	}
	return out
}

func srcIP(r *record.Record) string { return r.SrcIP }

func TestTopN_CountsAndTruncates(t *testing.T) {
	records := recsFromIPs("a", "b", "a", "c", "a", "b")

	got := TopN(records, srcIP, 2)
	want := Table{{Label: "a", Count: 3}, {Label: "b", Count: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopN = %v, want %v", got, want)
	}
}

func TestTopN_TieBreakFirstSeen(t *testing.T) {
	// b and c tie on count; b appeared first in the input.
	records := recsFromIPs("b", "c", "a", "c", "b", "a", "a")

	got := TopN(records, srcIP, 10)
	want := Table{
		{Label: "a", Count: 3},
		{Label: "b", Count: 2},
		{Label: "c", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopN = %v, want %v", got, want)
	}
}

func TestTopN_FixedInputFixedOutput(t *testing.T) {
	records := recsFromIPs("x", "y", "z", "y", "x", "w", "w", "z")
	first := TopN(records, srcIP, 10)
	for i := 0; i < 20; i++ {
		if got := TopN(records, srcIP, 10); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: TopN = %v, want %v", i, got, first)
		}
	}
}

func TestTopN_PermutationKeepsCounts(t *testing.T) {
	records := recsFromIPs("a", "b", "a", "c", "a", "b", "d")
	want := map[string]int{"a": 3, "b": 2, "c": 1, "d": 1}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]*record.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		table := TopN(shuffled, srcIP, 0)
		got := make(map[string]int, len(table))
		for _, row := range table {
			got[row.Label] = row.Count
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("counts after shuffle = %v, want %v", got, want)
		}
		// Descending counts must hold regardless of input order.
		for j := 1; j < len(table); j++ {
			if table[j].Count > table[j-1].Count {
				t.Fatalf("table not sorted: %v", table)
			}
		}
	}
}

func TestTopN_SentinelsCountLikeAnyValue(t *testing.T) {
	records := recsFromIPs(record.Unknown, "a", record.Unknown)

	got := TopN(records, srcIP, 10)
	want := Table{{Label: record.Unknown, Count: 2}, {Label: "a", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopN = %v, want %v", got, want)
	}
}

func TestTopN_Empty(t *testing.T) {
	if got := TopN(nil, srcIP, 10); len(got) != 0 {
		t.Errorf("TopN(nil) = %v, want empty", got)
	}
}

func TestCountByDate_ChronologicalNoZeroFill(t *testing.T) {
	records := []*record.Record{
		rec("a", time.Date(2025, 10, 22, 1, 0, 0, 0, time.UTC)),
		rec("b", time.Date(2025, 10, 20, 2, 0, 0, 0, time.UTC)),
		rec("c", time.Date(2025, 10, 22, 3, 0, 0, 0, time.UTC)),
		// 2025-10-21 has no events and must not appear.
	}

	got := CountByDate(records)
	want := []Bucket{
		{Bucket: "2025-10-20", Count: 1},
		{Bucket: "2025-10-22", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountByDate = %v, want %v", got, want)
	}
	for _, b := range got {
		if b.Count == 0 {
			t.Errorf("zero-count bucket emitted: %v", b)
		}
	}
}

func TestCountByHour_NumericOrder(t *testing.T) {
	records := []*record.Record{
		rec("a", time.Date(2025, 10, 20, 23, 0, 0, 0, time.UTC)),
		rec("b", time.Date(2025, 10, 20, 2, 0, 0, 0, time.UTC)),
		rec("c", time.Date(2025, 10, 20, 11, 0, 0, 0, time.UTC)),
		rec("d", time.Date(2025, 10, 20, 2, 30, 0, 0, time.UTC)),
	}

	got := CountByHour(records)
	want := []Bucket{
		{Bucket: "2", Count: 2},
		{Bucket: "11", Count: 1},
		{Bucket: "23", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountByHour = %v, want %v", got, want)
	}
}

func TestCountBy_EmittedBucketsEqualDistinctValues(t *testing.T) {
	records := recsFromIPs("a", "b", "a", "c")

	got := CountBy(records, srcIP, func(a, b string) bool { return a < b })
	if len(got) != Distinct(records, srcIP) {
		t.Errorf("bucket count = %d, distinct = %d", len(got), Distinct(records, srcIP))
	}
}

func TestDistinct(t *testing.T) {
	records := recsFromIPs("a", "b", "a", "c", "c")
	if got := Distinct(records, srcIP); got != 3 {
		t.Errorf("Distinct = %d, want 3", got)
	}
	if got := Distinct(nil, srcIP); got != 0 {
		t.Errorf("Distinct(nil) = %d, want 0", got)
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	records := recsFromIPs("a", "b", "a", "c")

	got := Filter(records, func(r *record.Record) bool { return r.SrcIP != "b" })
	if len(got) != 3 || got[0].SrcIP != "a" || got[1].SrcIP != "a" || got[2].SrcIP != "c" {
		t.Errorf("Filter order broken: %v", got)
	}
}

func TestNumericAsc(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2", "11", true},
		{"11", "2", false},
		{"200", "404", true},
		{"200", "N/A", true},
		{"N/A", "200", false},
		{"N/A", "unknown", true},
	}
	for _, tt := range tests {
		if got := NumericAsc(tt.a, tt.b); got != tt.want {
			t.Errorf("NumericAsc(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
