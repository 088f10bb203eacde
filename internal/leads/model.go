package leads

import (
	"strings"
	"time"
)

// TimestampLayout is how lead creation times are written to every store.
const TimestampLayout = "2006-01-02 15:04:05"

// Fixed values stamped on every new lead.
const (
	StatusNew     = "New"
	SourceWebForm = "Web Form"
)

// Columns is the header row shared by the remote sheet and the fallback file.
var Columns = []string{"Timestamp", "Name", "Email", "Phone", "State", "Insurance_Type", "Notes", "Status", "Source"}

// Record is a validated, normalized lead ready to be persisted.
type Record struct {
	Timestamp     string `json:"Timestamp"`
	Name          string `json:"Name"`
	Email         string `json:"Email"`
	Phone         string `json:"Phone"`
	State         string `json:"State"`
	InsuranceType string `json:"Insurance_Type"`
	Notes         string `json:"Notes"`
	Status        string `json:"Status"`
	Source        string `json:"Source"`
}

// Row returns the record's cells in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Timestamp,
		r.Name,
		r.Email,
		r.Phone,
		r.State,
		r.InsuranceType,
		r.Notes,
		r.Status,
		r.Source,
	}
}

// Builder turns validated form input into a Record.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a builder using the given clock; nil means time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build normalizes the input. Callers must run Validate first; Build does not
// re-check anything.
func (b *Builder) Build(in FormInput) Record {
	return Record{
		Timestamp:     b.now().Format(TimestampLayout),
		Name:          strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         DigitsOnly(in.Phone),
		State:         in.State,
		InsuranceType: in.InsuranceType,
		Notes:         "",
		Status:        StatusNew,
		Source:        SourceWebForm,
	}
}
