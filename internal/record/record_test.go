package record

import (
	"errors"
	"testing"
	"time"
)

func TestNew_DerivedColumns(t *testing.T) {
	tests := []struct {
		name     string
		ts       time.Time
		wantDate string
		wantHour int
	}{
		{
			"utc",
			time.Date(2025, 10, 20, 23, 59, 59, 0, time.UTC),
			"2025-10-20", 23,
		},
		{
			"offset normalized to utc",
			time.Date(2025, 10, 21, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
			"2025-10-20", 23,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(FamilyCowrie, tt.ts)
			if r.Date != tt.wantDate || r.Hour != tt.wantHour {
				t.Errorf("derived = %q/%d, want %q/%d", r.Date, r.Hour, tt.wantDate, tt.wantHour)
			}
		})
	}
}

func TestStore_AppendAndSeal(t *testing.T) {
	s := NewStore()
	ts := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	// Identical records are distinct events and must all count.
	for i := 0; i < 3; i++ {
		if err := s.Append(New(FamilyCowrie, ts)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}

	s.Seal()
	if !s.Sealed() {
		t.Error("Sealed = false after Seal")
	}
	if err := s.Append(New(FamilyCowrie, ts)); !errors.Is(err, ErrSealed) {
		t.Errorf("Append after Seal = %v, want ErrSealed", err)
	}
	if s.Len() != 3 {
		t.Errorf("Len changed after sealed append: %d", s.Len())
	}
}
