// Package source enumerates honeypot log files and yields their raw lines.
package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrMissingDir is returned when the configured log directory does not
// exist. This is the only fatal ingestion error; everything below it is
// skip-and-continue.
var ErrMissingDir = errors.New("log directory does not exist")

// Cowrie occasionally logs lines well past bufio's 64KB default, e.g. a
// full pasted shell payload in a command event.
const maxLineSize = 1 << 20

// ScanStats counts what a scan saw, so callers can report loss rates.
type ScanStats struct {
	FilesMatched int `json:"files_matched"`
	FilesRead    int `json:"files_read"`
	FilesSkipped int `json:"files_skipped"`
	LinesSeen    int `json:"lines_seen"`
}

// LineFunc receives one raw line together with the file it came from. The
// byte slice is only valid for the duration of the call.
type LineFunc func(file string, line []byte)

// Source enumerates matching log files under one directory tree.
type Source struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// New creates a source over dir. Only files whose base name starts with
// prefix are ingested; an empty prefix matches everything.
func New(dir, prefix string, logger *zap.Logger) *Source {
	return &Source{dir: dir, prefix: prefix, logger: logger}
}

// Scan walks the directory tree, visits matching files in lexicographic
// path order (date-suffixed files therefore process chronologically), and
// feeds every raw line to fn, gunzipping *.gz files transparently. A file
// that cannot be opened or decoded is skipped with a warning; the scan
// continues with the remaining files.
func (s *Source) Scan(ctx context.Context, fn LineFunc) (ScanStats, error) {
	var stats ScanStats

	files, err := s.matchFiles()
	if err != nil {
		return stats, err
	}
	stats.FilesMatched = len(files)

	for _, path := range files {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		lines, err := s.scanFile(path, fn)
		stats.LinesSeen += lines
		if err != nil {
			stats.FilesSkipped++
			s.logger.Warn("skipping unreadable log file",
				zap.String("file", path),
				zap.Error(err))
			continue
		}
		stats.FilesRead++
	}
	return stats, nil
}

func (s *Source) matchFiles() ([]string, error) {
	if _, err := os.Stat(s.dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingDir, s.dir)
		}
		return nil, fmt.Errorf("stat log directory: %w", err)
	}

	var files []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectory: log and keep walking siblings.
			s.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.prefix == "" || strings.HasPrefix(d.Name(), s.prefix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking log directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// scanFile reads one file line by line. Lines already delivered before a
// mid-file read error still count; the caller records the file as skipped.
func (s *Source) scanFile(path string, fn LineFunc) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, err
		}
		defer gz.Close()
		r = gz
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	lines := 0
	for sc.Scan() {
		lines++
		fn(path, sc.Bytes())
	}
	return lines, sc.Err()
}
