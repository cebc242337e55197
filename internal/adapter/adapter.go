// Package adapter maps per-honeypot JSON log lines onto normalized
// records. Each family gets its own total mapping function: a line is
// either accepted with sentinels filling any missing detail, or rejected
// with a typed reason. Nothing here aborts a run.
package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

// Reject reasons. A line failing with one of these is excluded from the
// dataset and counted; only a parseable JSON object with a valid timestamp
// is retained, because every downstream aggregate depends on those two.
var (
	ErrNotJSON       = errors.New("line is not valid JSON")
	ErrNotObject     = errors.New("line is not a JSON object")
	ErrNoTimestamp   = errors.New("missing or unparseable timestamp")
	ErrUnknownFamily = errors.New("unknown honeypot family")
)

// Adapter converts one raw log line into a normalized record.
type Adapter interface {
	Family() record.Family
	Adapt(line []byte) (*record.Record, error)
}

// ForFamily returns the adapter for a honeypot family.
func ForFamily(f record.Family) (Adapter, error) {
	switch f {
	case record.FamilyCowrie:
		return cowrieAdapter{}, nil
	case record.FamilySentryPeer:
		return sentryPeerAdapter{}, nil
	case record.FamilyTanner:
		return tannerAdapter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, f)
	}
}

func parseObject(line []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, ErrNotJSON
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, ErrNotJSON
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// timestampLayouts covers the string formats the three honeypots emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts ISO-like strings and numeric Unix seconds (tanner
// logs float seconds). Layouts without a zone are read as UTC.
func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
	case float64:
		if t > 0 {
			sec, frac := math.Modf(t)
			return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
		}
	}
	return time.Time{}, false
}

// stringField reads a top-level string field, substituting the sentinel
// for a missing, empty, or non-string value.
func stringField(obj map[string]any, key, sentinel string) string {
	if v, ok := obj[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return sentinel
}

// nestedString walks a chain of object keys. Any missing or non-object
// intermediate level yields the sentinel instead of rejecting the record.
func nestedString(obj map[string]any, sentinel string, keys ...string) string {
	cur := any(obj)
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return sentinel
		}
		if cur, ok = m[k]; !ok {
			return sentinel
		}
	}
	if s, ok := cur.(string); ok && s != "" {
		return s
	}
	return sentinel
}
