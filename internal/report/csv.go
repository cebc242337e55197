// Package report persists aggregate tables for downstream consumers.
// Chart rendering lives outside this module; the sink only writes the
// (label, count) tables the renderer consumes.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/aggregate"
)

// CSVSink writes aggregate tables as CSV files in one directory. Each file
// is written to a temp file and renamed into place, so an interrupted run
// never leaves a half-written report behind.
type CSVSink struct {
	dir    string
	logger *zap.Logger
}

// NewCSVSink creates the output directory if needed and returns a sink
// writing into it.
func NewCSVSink(dir string, logger *zap.Logger) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	return &CSVSink{dir: dir, logger: logger}, nil
}

// Dir returns the sink's output directory.
func (s *CSVSink) Dir() string {
	return s.dir
}

// WriteTable writes a frequency table as label,count rows in table order.
func (s *CSVSink) WriteTable(name string, table aggregate.Table) error {
	rows := make([][]string, 0, len(table)+1)
	rows = append(rows, []string{"label", "count"})
	for _, r := range table {
		rows = append(rows, []string{r.Label, strconv.Itoa(r.Count)})
	}
	return s.writeRows(name, rows)
}

// WriteBuckets writes a time-bucketed series as bucket,count rows in
// series order.
func (s *CSVSink) WriteBuckets(name string, buckets []aggregate.Bucket) error {
	rows := make([][]string, 0, len(buckets)+1)
	rows = append(rows, []string{"bucket", "count"})
	for _, b := range buckets {
		rows = append(rows, []string{b.Bucket, strconv.Itoa(b.Count)})
	}
	return s.writeRows(name, rows)
}

// WriteRow writes a single-row file with a custom header, used for run
// summaries.
func (s *CSVSink) WriteRow(name string, header, row []string) error {
	return s.writeRows(name, [][]string{header, row})
}

func (s *CSVSink) writeRows(name string, rows [][]string) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", name, err)
	}

	final := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming %s: %w", name, err)
	}

	s.logger.Debug("report written",
		zap.String("file", final),
		zap.Int("rows", len(rows)-1))
	return nil
}
