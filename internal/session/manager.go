package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// ErrConfirmationPending is returned when a visitor submits while the success
// confirmation is still counting down; the form is not shown in that phase.
var ErrConfirmationPending = errors.New("session: success confirmation still displayed")

// Manager serializes work per session id and persists state around each
// lifecycle step. Different sessions proceed independently.
type Manager struct {
	lifecycle *Lifecycle
	store     Store
	scheduler *Scheduler
	logger    *logging.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager wires a manager. A nil scheduler disables the automatic
// countdown; Tick must then be driven by the caller.
func NewManager(lifecycle *Lifecycle, store Store, scheduler *Scheduler, logger *logging.Logger) *Manager {
	if lifecycle == nil || store == nil {
		panic("session: lifecycle and store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		lifecycle: lifecycle,
		store:     store,
		scheduler: scheduler,
		logger:    logger,
		locks:     make(map[string]*sessionLock),
	}
}

// Catalog exposes the form enumerations for rendering.
func (m *Manager) Catalog() leads.Catalog {
	return m.lifecycle.Catalog()
}

// State returns the current state of session id. A success state whose
// countdown is not running here, as after a restart with a shared store, has
// its countdown resumed.
func (m *Manager) State(ctx context.Context, id string) (State, error) {
	unlock := m.lock(id)
	defer unlock()
	st, err := m.store.Load(ctx, id)
	if err != nil {
		return State{}, err
	}
	m.resumeCountdown(id, st)
	return st, nil
}

// Submit runs one submission for session id and returns the new state.
func (m *Manager) Submit(ctx context.Context, id string, in leads.FormInput) (State, Submission, error) {
	unlock := m.lock(id)
	defer unlock()

	st, err := m.store.Load(ctx, id)
	if err != nil {
		return State{}, Submission{}, err
	}
	if st.Phase == PhaseSuccess {
		m.resumeCountdown(id, st)
		return st, Submission{Phase: PhaseSuccess}, ErrConfirmationPending
	}

	sub := m.lifecycle.Submit(ctx, &st, in)
	// the lead is stored by now; a spent request deadline must not drop its confirmation
	if err := m.store.Save(context.WithoutCancel(ctx), id, st); err != nil {
		m.logger.Error("failed to save session state", "error", err, "phase", st.Phase.String())
		return st, sub, fmt.Errorf("session: save after submit: %w", err)
	}

	if sub.Phase == PhaseSuccess {
		m.startCountdown(id)
	}
	return st, sub, nil
}

func (m *Manager) startCountdown(id string) {
	if m.scheduler == nil {
		return
	}
	m.scheduler.Start(id, func(ctx context.Context) bool {
		return m.tick(ctx, id)
	})
}

// resumeCountdown must be called with the session lock held.
func (m *Manager) resumeCountdown(id string, st State) {
	if st.Phase != PhaseSuccess || m.scheduler == nil || m.scheduler.Active(id) {
		return
	}
	m.logger.Info("resuming success countdown", "elapsed_ticks", st.SuccessTimer)
	m.startCountdown(id)
}

// Tick advances the countdown of session id once. It reports whether the
// countdown is over, either because this tick reset the form or because the
// session is no longer in the success phase.
func (m *Manager) Tick(ctx context.Context, id string) (bool, error) {
	unlock := m.lock(id)
	defer unlock()

	st, err := m.store.Load(ctx, id)
	if err != nil {
		return false, err
	}
	if st.Phase != PhaseSuccess {
		return true, nil
	}
	reset := m.lifecycle.Tick(&st)
	if err := m.store.Save(ctx, id, st); err != nil {
		return false, fmt.Errorf("session: save after tick: %w", err)
	}
	if reset {
		m.logger.Debug("success countdown finished; form reset")
	}
	return reset, nil
}

func (m *Manager) tick(ctx context.Context, id string) bool {
	done, err := m.Tick(ctx, id)
	if err != nil {
		m.logger.Warn("countdown tick failed", "error", err)
		return false
	}
	return done
}

// Close stops every running countdown and waits for pending notifications.
func (m *Manager) Close() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	m.lifecycle.Wait()
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}
