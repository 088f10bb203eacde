// Package persistence stores lead records remotely with a local fallback.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/observability/metrics"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

var tracer = otel.Tracer("leadform.internal.persistence")

// ErrRemoteUnavailable is recorded in Result.RemoteErr when no remote handle exists.
var ErrRemoteUnavailable = errors.New("persistence: remote store not connected")

// RemoteStore appends a row to the primary tabular store.
type RemoteStore interface {
	Append(ctx context.Context, row []string) error
}

// Connector establishes the remote handle.
type Connector func(ctx context.Context) (RemoteStore, error)

// FallbackStore durably keeps a record locally.
type FallbackStore interface {
	Append(ctx context.Context, rec leads.Record) error
}

// RetryPolicy decides whether a process that failed to connect at startup
// tries the remote store again later.
type RetryPolicy int

const (
	// RemoteRetryNever keeps a process that failed to connect in fallback-only mode.
	RemoteRetryNever RetryPolicy = iota
	// RemoteRetryEachSubmission re-attempts the connection on every store
	// while disconnected.
	RemoteRetryEachSubmission
)

// ParseRetryPolicy maps a config value to a policy.
func ParseRetryPolicy(s string) (RetryPolicy, error) {
	switch s {
	case "", "never":
		return RemoteRetryNever, nil
	case "each-submission", "each_submission":
		return RemoteRetryEachSubmission, nil
	default:
		return RemoteRetryNever, fmt.Errorf("persistence: unknown retry policy %q", s)
	}
}

// Config wires a Gateway.
type Config struct {
	Connect  Connector
	Fallback FallbackStore
	Policy   RetryPolicy
	// RemoteTimeout bounds each remote connect and append. Zero means the
	// caller's context is the only limit.
	RemoteTimeout time.Duration
	Metrics       *metrics.LeadMetrics
	Logger        *logging.Logger
}

// Gateway writes each record once to the remote store, and on any remote
// failure once to the fallback store. The remote handle is cached for the
// life of the process.
type Gateway struct {
	mu       sync.RWMutex
	remote   RemoteStore
	connErr  error
	connect  Connector
	fallback FallbackStore
	policy   RetryPolicy
	timeout  time.Duration
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
}

// NewGateway creates a gateway. Call Connect before serving traffic.
func NewGateway(cfg Config) *Gateway {
	if cfg.Fallback == nil {
		panic("persistence: fallback store required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Gateway{
		connect:  cfg.Connect,
		fallback: cfg.Fallback,
		policy:   cfg.Policy,
		timeout:  cfg.RemoteTimeout,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		connErr:  ErrRemoteUnavailable,
	}
}

// Connect establishes the remote handle. A failure is logged and leaves the
// gateway in fallback-only mode; the error is returned for callers that want
// to report it (the CLI check command does).
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connectLocked(ctx)
}

func (g *Gateway) connectLocked(ctx context.Context) error {
	if g.remote != nil {
		return nil
	}
	if g.connect == nil {
		g.connErr = ErrRemoteUnavailable
		return g.connErr
	}
	remote, err := g.connect(ctx)
	if err != nil {
		g.connErr = fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		g.logger.Warn("remote lead store unavailable; using fallback only", "error", err)
		return g.connErr
	}
	g.remote = remote
	g.connErr = nil
	return nil
}

// Connected reports whether a remote handle is cached.
func (g *Gateway) Connected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.remote != nil
}

func (g *Gateway) remoteHandle(ctx context.Context) (RemoteStore, error) {
	g.mu.RLock()
	remote, connErr := g.remote, g.connErr
	g.mu.RUnlock()
	if remote != nil || g.policy != RemoteRetryEachSubmission {
		return remote, connErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.connectLocked(ctx); err != nil {
		return nil, err
	}
	return g.remote, nil
}

// Store persists rec exactly once: remote first, fallback on any remote error.
func (g *Gateway) Store(ctx context.Context, rec leads.Record) Result {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "persistence.store", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	res := g.store(ctx, rec)

	span.SetAttributes(attribute.String("leadform.persistence.outcome", res.Outcome.String()))
	if res.RemoteErr != nil {
		span.RecordError(res.RemoteErr)
	}
	if !res.OK() {
		span.SetStatus(codes.Error, "lead not persisted")
	}
	g.metrics.ObserveStore(res.Outcome.String(), time.Since(start).Seconds())
	return res
}

func (g *Gateway) store(ctx context.Context, rec leads.Record) Result {
	remoteErr := g.storeRemote(ctx, rec)
	if remoteErr == nil {
		g.logger.Info("lead stored", "outcome", OutcomeRemote.String(), "state", rec.State, "insurance_type", rec.InsuranceType)
		return Result{Outcome: OutcomeRemote}
	}

	// the fallback must not inherit a deadline the remote attempt used up
	if err := g.fallback.Append(context.WithoutCancel(ctx), rec); err != nil {
		g.logger.Error("fallback lead store failed", "error", err, "remote_error", remoteErr)
		return Result{Outcome: OutcomeFailed, RemoteErr: remoteErr, Err: err}
	}
	g.logger.Info("lead stored", "outcome", OutcomeFallback.String(), "state", rec.State, "insurance_type", rec.InsuranceType)
	return Result{Outcome: OutcomeFallback, RemoteErr: remoteErr}
}

func (g *Gateway) storeRemote(ctx context.Context, rec leads.Record) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	remote, err := g.remoteHandle(ctx)
	if remote == nil {
		if err == nil {
			err = ErrRemoteUnavailable
		}
		return err
	}
	if err := remote.Append(ctx, rec.Row()); err != nil {
		g.logger.Warn("remote lead store failed; attempting fallback", "error", err)
		return err
	}
	return nil
}
