package adapter

import (
	"strings"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

// sentryPeerAdapter handles the SIP honeypot. Its source_ip field packs
// "address:port" into one string and must be split on the last colon so
// IPv6 addresses keep their internal colons.
type sentryPeerAdapter struct{}

func (sentryPeerAdapter) Family() record.Family { return record.FamilySentryPeer }

func (sentryPeerAdapter) Adapt(line []byte) (*record.Record, error) {
	obj, err := parseObject(line)
	if err != nil {
		return nil, err
	}
	ts, ok := parseTimestamp(obj["event_timestamp"])
	if !ok {
		return nil, ErrNoTimestamp
	}

	r := record.New(record.FamilySentryPeer, ts)
	r.EventKind = record.EventSIPDetection
	r.SrcIP, r.SrcPort = splitHostPort(stringField(obj, "source_ip", record.Unknown))
	r.UserAgent = stringField(obj, "sip_user_agent", record.Unknown)
	r.CalledNumber = stringField(obj, "called_number", record.Unknown)
	r.Method = stringField(obj, "sip_method", record.Unknown)
	r.Transport = stringField(obj, "transport_type", record.Unknown)
	return r, nil
}

// splitHostPort splits a combined "address:port" value. A malformed value
// with no colon keeps the whole string as the address and yields an
// unknown port rather than rejecting the record.
func splitHostPort(v string) (addr, port string) {
	if v == record.Unknown {
		return v, record.Unknown
	}
	i := strings.LastIndex(v, ":")
	if i < 0 {
		return v, record.Unknown
	}
	return v[:i], v[i+1:]
}
