// Package record defines the normalized honeypot event model shared by the
// ingestion, enrichment, and aggregation stages.
package record

import "time"

// Sentinel values substituted for fields that are absent or unresolvable,
// so they participate in frequency counts instead of being dropped.
const (
	// Unknown is the sentinel for flat-schema fields (cowrie, sentrypeer).
	Unknown = "unknown"
	// NA is the sentinel for tanner's nested fields, matching the label the
	// upstream reports have always used.
	NA = "N/A"
)

// Family identifies which honeypot produced a log line.
type Family string

const (
	FamilyCowrie     Family = "cowrie"
	FamilySentryPeer Family = "sentrypeer"
	FamilyTanner     Family = "tanner"
)

// Event kinds carried by normalized records. Cowrie records keep the
// eventid from the log line verbatim; the other families emit a single
// kind each.
const (
	EventLoginFailed  = "cowrie.login.failed"
	EventLoginSuccess = "cowrie.login.success"
	EventCommandInput = "cowrie.command.input"
	EventSIPDetection = "sip.detection"
	EventHTTPRequest  = "http.request"
)

// Record is one normalized honeypot event. Only the fields relevant to the
// record's family are populated; those carry a sentinel when the source
// line omitted them. Date and Hour are derived from Timestamp at
// construction. Country starts empty and is filled exactly once by the
// geo enricher.
type Record struct {
	Family    Family    `json:"family"`
	Timestamp time.Time `json:"timestamp"`
	EventKind string    `json:"event_kind"`

	SrcIP   string `json:"src_ip"`
	SrcPort string `json:"src_port,omitempty"`

	// cowrie
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Command  string `json:"command,omitempty"`
	Message  string `json:"message,omitempty"`

	// sentrypeer
	CalledNumber string `json:"called_number,omitempty"`
	Transport    string `json:"transport,omitempty"`

	// tanner (UserAgent is shared with sentrypeer)
	UserAgent string `json:"user_agent,omitempty"`
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
	Status    string `json:"status,omitempty"`
	Detection string `json:"detection,omitempty"`

	// derived columns
	Date    string `json:"date"`
	Hour    int    `json:"hour"`
	Country string `json:"country,omitempty"`
}

// New builds a record with the derived date and hour columns computed from
// the timestamp. Timestamps are normalized to UTC so bucket boundaries are
// stable across hosts.
func New(family Family, ts time.Time) *Record {
	ts = ts.UTC()
	return &Record{
		Family:    family,
		Timestamp: ts,
		Date:      ts.Format("2006-01-02"),
		Hour:      ts.Hour(),
	}
}
