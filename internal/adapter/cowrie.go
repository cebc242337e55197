package adapter

import "github.com/ApexPlayground/Tpot-analysis-project/internal/record"

// cowrieAdapter handles the shell/SSH honeypot's flat JSON schema: every
// field of interest sits at the top level and is read by name.
type cowrieAdapter struct{}

func (cowrieAdapter) Family() record.Family { return record.FamilyCowrie }

func (cowrieAdapter) Adapt(line []byte) (*record.Record, error) {
	obj, err := parseObject(line)
	if err != nil {
		return nil, err
	}
	ts, ok := parseTimestamp(obj["timestamp"])
	if !ok {
		return nil, ErrNoTimestamp
	}

	r := record.New(record.FamilyCowrie, ts)
	r.EventKind = stringField(obj, "eventid", record.Unknown)
	r.SrcIP = stringField(obj, "src_ip", record.Unknown)
	r.Username = stringField(obj, "username", record.Unknown)
	r.Password = stringField(obj, "password", record.Unknown)
	r.Command = stringField(obj, "input", record.Unknown)
	r.Message = stringField(obj, "message", record.Unknown)
	return r, nil
}
