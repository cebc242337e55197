package record

import "errors"

// ErrSealed is returned when a record is appended after the store has been
// sealed for aggregation.
var ErrSealed = errors.New("record store is sealed")

// Store is the in-memory normalized dataset for one run. It is append-only
// while the ingestion stage runs and read-only once sealed; aggregation
// never starts on an unsealed store. Records are not deduplicated:
// identical log lines represent distinct events and all count.
type Store struct {
	records []*Record
	sealed  bool
}

// NewStore returns an empty, unsealed store.
func NewStore() *Store {
	return &Store{}
}

// Append adds a record to the store.
func (s *Store) Append(r *Record) error {
	if s.sealed {
		return ErrSealed
	}
	s.records = append(s.records, r)
	return nil
}

// Seal marks the dataset complete. After Seal the only permitted mutation
// is the one-time country fill performed by the geo enricher.
func (s *Store) Seal() {
	s.sealed = true
}

// Sealed reports whether the store has been sealed.
func (s *Store) Sealed() bool {
	return s.sealed
}

// Records returns the records in ingestion order.
func (s *Store) Records() []*Record {
	return s.records
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	return len(s.records)
}
