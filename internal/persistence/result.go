package persistence

import "fmt"

// Outcome classifies how a record was persisted.
type Outcome int

const (
	// OutcomeFailed means neither the remote nor the fallback store took the record.
	OutcomeFailed Outcome = iota
	// OutcomeRemote means the record reached the remote sheet.
	OutcomeRemote
	// OutcomeFallback means the remote store was unavailable or failed and
	// the record was written to the local fallback store instead.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRemote:
		return "remote"
	case OutcomeFallback:
		return "fallback"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the typed answer of Gateway.Store.
type Result struct {
	Outcome Outcome
	// RemoteErr explains why the remote path was skipped or failed. It is nil
	// for OutcomeRemote.
	RemoteErr error
	// Err is the fallback failure for OutcomeFailed.
	Err error
}

// OK reports whether the record is durably stored somewhere.
func (r Result) OK() bool {
	return r.Outcome == OutcomeRemote || r.Outcome == OutcomeFallback
}

// Degraded reports whether the record only reached the fallback store.
func (r Result) Degraded() bool {
	return r.Outcome == OutcomeFallback
}
