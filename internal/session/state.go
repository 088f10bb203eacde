// Package session owns per-visitor form state and the submission lifecycle.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/wolfman30/insurance-leadform/internal/leads"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInvalid
	PhaseSubmitting
	PhaseSuccess
	PhaseError
)

var phaseNames = map[Phase]string{
	PhaseIdle:       "idle",
	PhaseInvalid:    "invalid",
	PhaseSubmitting: "submitting",
	PhaseSuccess:    "success",
	PhaseError:      "error",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalJSON encodes the phase by name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a phase name.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for phase, n := range phaseNames {
		if n == name {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("session: unknown phase %q", name)
}

// Snapshot is what the success panel shows back to the visitor. Phone is kept
// as typed, not normalized.
type Snapshot struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	State         string `json:"state"`
	InsuranceType string `json:"insurance_type"`
}

// State is everything remembered about one visitor between requests.
// The zero value is a fresh session.
type State struct {
	Phase Phase `json:"phase"`
	// Submissions counts successful submissions; it only ever grows.
	Submissions int `json:"submissions"`
	// ShowErrors switches the form to warning placeholders.
	ShowErrors bool `json:"show_errors"`
	// ShowSuccess is set while the confirmation panel is displayed.
	ShowSuccess bool `json:"show_success"`
	// SuccessTimer counts elapsed countdown ticks since the last success.
	SuccessTimer int                `json:"success_timer"`
	Submitted    *Snapshot          `json:"submitted,omitempty"`
	Input        leads.FormInput    `json:"input"`
	Warnings     []leads.FieldError `json:"warnings,omitempty"`
	// Message is the system error shown in PhaseError.
	Message string `json:"message,omitempty"`
}

// Reset ends a success cycle: the confirmation, error flag, and every form
// field are cleared. The submission counter survives.
func (s *State) Reset() {
	s.Phase = PhaseIdle
	s.ShowSuccess = false
	s.SuccessTimer = 0
	s.Submitted = nil
	s.ShowErrors = false
	s.Input = leads.FormInput{}
	s.Warnings = nil
	s.Message = ""
}
