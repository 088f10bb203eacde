package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/observability/metrics"
	"github.com/wolfman30/insurance-leadform/internal/persistence"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// Countdown thresholds, in ticks since the success was recorded.
const (
	ConfirmTicks = 15
	ResetTicks   = 20
)

// DefaultNotifyTimeout bounds one new-lead notification.
const DefaultNotifyTimeout = 15 * time.Second

// SystemErrorMessage is shown when a lead could not be stored anywhere.
const SystemErrorMessage = "❌ System error. Please try again or call us directly."

// Storer persists one lead record.
type Storer interface {
	Store(ctx context.Context, rec leads.Record) persistence.Result
}

// Notifier is told about each stored lead.
type Notifier interface {
	NotifyNewLead(ctx context.Context, rec leads.Record) error
}

// Submission reports what one Submit call did.
type Submission struct {
	Phase    Phase
	Warnings []leads.FieldError
	Record   *leads.Record
	Result   persistence.Result
}

// Err maps the submission to the error taxonomy callers render: nil on
// success, *leads.ValidationError for field problems, and a generic error
// when nothing could be stored.
func (s Submission) Err() error {
	switch s.Phase {
	case PhaseInvalid:
		return &leads.ValidationError{Fields: s.Warnings}
	case PhaseError:
		return fmt.Errorf("session: lead not stored: %w", s.Result.Err)
	default:
		return nil
	}
}

// CountdownView is the confirmation text for the current tick.
type CountdownView struct {
	Active    bool   `json:"active"`
	Remaining int    `json:"remaining"`
	Resetting bool   `json:"resetting"`
	Message   string `json:"message"`
}

// Lifecycle is the submission state machine. It mutates the State it is
// handed and holds no per-session data itself.
type Lifecycle struct {
	catalog  leads.Catalog
	builder  *leads.Builder
	store    Storer
	notifier Notifier
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

// LifecycleConfig wires a Lifecycle.
type LifecycleConfig struct {
	Catalog  leads.Catalog
	Builder  *leads.Builder
	Store    Storer
	Notifier Notifier
	// NotifyTimeout bounds each notification; zero means DefaultNotifyTimeout.
	NotifyTimeout time.Duration
	Metrics       *metrics.LeadMetrics
	Logger        *logging.Logger
}

// NewLifecycle creates the state machine.
func NewLifecycle(cfg LifecycleConfig) *Lifecycle {
	if cfg.Store == nil {
		panic("session: store required")
	}
	if cfg.Builder == nil {
		cfg.Builder = leads.NewBuilder(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	if len(cfg.Catalog.States) == 0 && len(cfg.Catalog.InsuranceTypes) == 0 {
		cfg.Catalog = leads.DefaultCatalog()
	}
	return &Lifecycle{
		catalog:  cfg.Catalog,
		builder:  cfg.Builder,
		store:    cfg.Store,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,

		notifyTimeout: cfg.NotifyTimeout,
	}
}

// Catalog returns the enumerations the lifecycle validates against.
func (l *Lifecycle) Catalog() leads.Catalog {
	return l.catalog
}

// Submit runs validation, then build and store, and moves st to Invalid,
// Success or Error. The record is stored at most once.
func (l *Lifecycle) Submit(ctx context.Context, st *State, in leads.FormInput) Submission {
	st.Input = in
	st.Message = ""

	if warnings := leads.Validate(in, l.catalog); len(warnings) > 0 {
		st.Phase = PhaseInvalid
		st.ShowErrors = true
		st.Warnings = warnings
		l.metrics.ObserveSubmission(PhaseInvalid.String())
		l.logger.Debug("submission rejected", "warnings", len(warnings))
		return Submission{Phase: PhaseInvalid, Warnings: warnings}
	}

	st.ShowErrors = false
	st.Warnings = nil
	st.Phase = PhaseSubmitting

	rec := l.builder.Build(in)
	res := l.store.Store(ctx, rec)
	if !res.OK() {
		st.Phase = PhaseError
		st.Message = SystemErrorMessage
		l.metrics.ObserveSubmission(PhaseError.String())
		return Submission{Phase: PhaseError, Record: &rec, Result: res}
	}

	st.Submissions++
	st.ShowSuccess = true
	st.SuccessTimer = 0
	st.Submitted = &Snapshot{
		Name:          rec.Name,
		Email:         rec.Email,
		Phone:         in.Phone,
		State:         rec.State,
		InsuranceType: rec.InsuranceType,
	}
	st.Phase = PhaseSuccess
	l.metrics.ObserveSubmission(PhaseSuccess.String())

	l.notify(ctx, rec)
	return Submission{Phase: PhaseSuccess, Record: &rec, Result: res}
}

// notify sends the new-lead notice in the background so a slow mail
// provider neither holds the session nor inherits the request deadline.
func (l *Lifecycle) notify(ctx context.Context, rec leads.Record) {
	if l.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.notifyTimeout)
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		defer cancel()
		if err := l.notifier.NotifyNewLead(ctx, rec); err != nil {
			l.logger.Warn("new lead notification failed", "error", err)
		}
	}()
}

// Wait blocks until every notification started so far has finished.
func (l *Lifecycle) Wait() {
	l.pending.Wait()
}

// Tick advances the success countdown by one. It returns true only on the
// tick that performs the reset; outside the success phase it does nothing.
func (l *Lifecycle) Tick(st *State) bool {
	if st.Phase != PhaseSuccess || !st.ShowSuccess {
		return false
	}
	st.SuccessTimer++
	if st.SuccessTimer < ResetTicks {
		return false
	}
	st.Reset()
	l.metrics.ObserveReset()
	return true
}

// Countdown renders the confirmation message for st.
func Countdown(st State) CountdownView {
	if !st.ShowSuccess {
		return CountdownView{}
	}
	remaining := ResetTicks - st.SuccessTimer
	if remaining < 0 {
		remaining = 0
	}
	if st.SuccessTimer <= ConfirmTicks {
		return CountdownView{
			Active:    true,
			Remaining: remaining,
			Message:   fmt.Sprintf("✅ Success! Your request has been received. Form will reset in %d seconds...", remaining),
		}
	}
	return CountdownView{
		Active:    true,
		Remaining: remaining,
		Resetting: true,
		Message:   fmt.Sprintf("🔄 Preparing to reset form... %d seconds remaining...", remaining),
	}
}
