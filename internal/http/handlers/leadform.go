package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/session"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/leadform.html"))

const maxLeadBodyBytes = 64 << 10

// Sessions is the slice of session.Manager the form handlers drive.
type Sessions interface {
	Catalog() leads.Catalog
	State(ctx context.Context, id string) (session.State, error)
	Submit(ctx context.Context, id string, in leads.FormInput) (session.State, session.Submission, error)
}

// LeadFormConfig wires a LeadFormHandler.
type LeadFormConfig struct {
	Sessions Sessions
	Logger   *logging.Logger
}

// LeadFormHandler serves the lead form page and its JSON API.
type LeadFormHandler struct {
	sessions Sessions
	logger   *logging.Logger
}

// NewLeadFormHandler creates the form handler.
func NewLeadFormHandler(cfg LeadFormConfig) *LeadFormHandler {
	if cfg.Sessions == nil {
		panic("handlers: sessions required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &LeadFormHandler{
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
	}
}

// leadResponse is the JSON body of POST /api/leads.
type leadResponse struct {
	Phase       session.Phase         `json:"phase"`
	Degraded    bool                  `json:"degraded,omitempty"`
	Submissions int                   `json:"submissions"`
	Submitted   *session.Snapshot     `json:"submitted,omitempty"`
	Countdown   session.CountdownView `json:"countdown"`
	Warnings    []leads.FieldError    `json:"warnings,omitempty"`
	Message     string                `json:"message,omitempty"`
}

// sessionResponse is the JSON body of GET /api/session.
type sessionResponse struct {
	Phase       session.Phase         `json:"phase"`
	Submissions int                   `json:"submissions"`
	ShowErrors  bool                  `json:"show_errors"`
	Submitted   *session.Snapshot     `json:"submitted,omitempty"`
	Countdown   session.CountdownView `json:"countdown"`
	Warnings    []leads.FieldError    `json:"warnings,omitempty"`
	Message     string                `json:"message,omitempty"`
}

// ShowForm handles GET /.
func (h *LeadFormHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}
	st, err := h.sessions.State(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load session", "error", err)
		http.Error(w, session.SystemErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, newPageData(h.sessions.Catalog(), st)); err != nil {
		h.logger.Error("failed to render lead form", "error", err)
	}
}

// SubmitForm handles POST / from the HTML form and redirects back to GET /.
func (h *LeadFormHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxLeadBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := leads.FormInput{
		FirstName:     r.PostFormValue(leads.FieldFirstName),
		LastName:      r.PostFormValue(leads.FieldLastName),
		Email:         r.PostFormValue(leads.FieldEmail),
		Phone:         r.PostFormValue(leads.FieldPhone),
		State:         r.PostFormValue(leads.FieldState),
		InsuranceType: r.PostFormValue(leads.FieldInsuranceType),
	}

	if _, _, err := h.submit(r.Context(), id, in); err != nil && !errors.Is(err, session.ErrConfirmationPending) {
		h.logger.Warn("form submission error", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CreateLead handles POST /api/leads.
func (h *LeadFormHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	var in leads.FormInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLeadBodyBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, sub, err := h.submit(r.Context(), id, in)
	switch {
	case errors.Is(err, session.ErrConfirmationPending):
		writeJSON(w, http.StatusConflict, leadResponse{
			Phase:       st.Phase,
			Submissions: st.Submissions,
			Submitted:   st.Submitted,
			Countdown:   session.Countdown(st),
			Message:     "previous submission is still being confirmed",
		})
		return
	case err != nil && sub.Phase != session.PhaseSuccess:
		h.logger.Error("lead submission failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, leadResponse{
			Phase:   session.PhaseError,
			Message: session.SystemErrorMessage,
		})
		return
	case err != nil:
		// stored, but the confirmation state could not be saved
		h.logger.Warn("lead stored without session update", "error", err)
	}

	resp := leadResponse{
		Phase:       sub.Phase,
		Submissions: st.Submissions,
		Warnings:    sub.Warnings,
		Message:     st.Message,
	}
	switch sub.Phase {
	case session.PhaseInvalid:
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case session.PhaseError:
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		resp.Degraded = sub.Result.Degraded()
		resp.Submitted = st.Submitted
		resp.Countdown = session.Countdown(st)
		writeJSON(w, http.StatusCreated, resp)
	}
}

// SessionStatus handles GET /api/session for countdown polling.
func (h *LeadFormHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing session")
		return
	}
	st, err := h.sessions.State(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load session", "error", err)
		writeError(w, http.StatusInternalServerError, session.SystemErrorMessage)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, sessionResponse{
		Phase:       st.Phase,
		Submissions: st.Submissions,
		ShowErrors:  st.ShowErrors,
		Submitted:   st.Submitted,
		Countdown:   session.Countdown(st),
		Warnings:    st.Warnings,
		Message:     st.Message,
	})
}

func (h *LeadFormHandler) submit(ctx context.Context, id string, in leads.FormInput) (session.State, session.Submission, error) {
	st, sub, err := h.sessions.Submit(ctx, id, in)
	if err == nil {
		h.logger.Info("lead form submitted",
			"phase", sub.Phase.String(),
			"outcome", sub.Result.Outcome.String(),
			"warnings", len(sub.Warnings),
		)
	}
	return st, sub, err
}
