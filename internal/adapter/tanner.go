package adapter

import (
	"strconv"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

// tannerAdapter handles the HTTP honeypot, whose fields of interest are
// nested several levels deep. Every leaf degrades to "N/A" when any
// intermediate level is missing.
type tannerAdapter struct{}

func (tannerAdapter) Family() record.Family { return record.FamilyTanner }

func (tannerAdapter) Adapt(line []byte) (*record.Record, error) {
	obj, err := parseObject(line)
	if err != nil {
		return nil, err
	}
	ts, ok := parseTimestamp(obj["timestamp"])
	if !ok {
		return nil, ErrNoTimestamp
	}

	r := record.New(record.FamilyTanner, ts)
	r.EventKind = record.EventHTTPRequest
	r.SrcIP = nestedString(obj, record.NA, "peer", "ip")
	r.Method = stringField(obj, "method", record.NA)
	r.Path = stringField(obj, "path", record.NA)
	r.Status = statusLabel(obj["status"])
	r.UserAgent = nestedString(obj, record.NA, "headers", "user-agent")
	r.Detection = nestedString(obj, record.NA,
		"response_msg", "response", "message", "detection", "name")
	return r, nil
}

// statusLabel renders the HTTP status as a stable categorical label.
// Tanner logs it as a JSON number.
func statusLabel(v any) string {
	switch s := v.(type) {
	case float64:
		return strconv.Itoa(int(s))
	case string:
		if s != "" {
			return s
		}
	}
	return record.NA
}
