package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/insurance-leadform/internal/fallback"
	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/observability/metrics"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

type stubRemote struct {
	rows [][]string
	err  error
}

func (s *stubRemote) Append(_ context.Context, row []string) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

type stubFallback struct {
	records []leads.Record
	err     error
}

func (s *stubFallback) Append(_ context.Context, rec leads.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func record() leads.Record {
	return leads.Record{
		Timestamp:     "2025-01-02 03:04:05",
		Name:          "Jane Smith",
		Email:         "jane@example.com",
		Phone:         "5085794251",
		State:         "Massachusetts",
		InsuranceType: "Medicare",
		Status:        leads.StatusNew,
		Source:        leads.SourceWebForm,
	}
}

func connectTo(remote RemoteStore) Connector {
	return func(context.Context) (RemoteStore, error) { return remote, nil }
}

func newGateway(t *testing.T, cfg Config) *Gateway {
	t.Helper()
	cfg.Logger = logging.Discard()
	cfg.Metrics = metrics.NewLeadMetrics(prometheus.NewRegistry())
	return NewGateway(cfg)
}

func TestStoreRemoteSuccess(t *testing.T) {
	remote := &stubRemote{}
	fb := &stubFallback{}
	g := newGateway(t, Config{Connect: connectTo(remote), Fallback: fb})
	require.NoError(t, g.Connect(context.Background()))
	assert.True(t, g.Connected())

	res := g.Store(context.Background(), record())
	assert.Equal(t, OutcomeRemote, res.Outcome)
	assert.True(t, res.OK())
	assert.False(t, res.Degraded())
	assert.NoError(t, res.RemoteErr)
	require.Len(t, remote.rows, 1)
	assert.Equal(t, record().Row(), remote.rows[0])
	assert.Empty(t, fb.records)
}

func TestStoreFallsBackOnRemoteError(t *testing.T) {
	boom := errors.New("quota exceeded")
	remote := &stubRemote{err: boom}
	fb := &stubFallback{}
	g := newGateway(t, Config{Connect: connectTo(remote), Fallback: fb})
	require.NoError(t, g.Connect(context.Background()))

	res := g.Store(context.Background(), record())
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.True(t, res.OK())
	assert.True(t, res.Degraded())
	assert.ErrorIs(t, res.RemoteErr, boom)
	assert.Len(t, fb.records, 1)
}

func TestStoreFailsWhenBothPathsFail(t *testing.T) {
	diskErr := errors.New("disk full")
	g := newGateway(t, Config{
		Connect:  connectTo(&stubRemote{err: errors.New("network")}),
		Fallback: &stubFallback{err: diskErr},
	})
	require.NoError(t, g.Connect(context.Background()))

	res := g.Store(context.Background(), record())
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, diskErr)
	assert.Error(t, res.RemoteErr)
}

func TestStartupFailureMeansFallbackOnly(t *testing.T) {
	attempts := 0
	connect := func(context.Context) (RemoteStore, error) {
		attempts++
		return nil, errors.New("invalid credentials")
	}
	fb := &stubFallback{}
	g := newGateway(t, Config{Connect: connect, Fallback: fb})

	err := g.Connect(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.False(t, g.Connected())

	for i := 0; i < 3; i++ {
		res := g.Store(context.Background(), record())
		assert.Equal(t, OutcomeFallback, res.Outcome)
		assert.ErrorIs(t, res.RemoteErr, ErrRemoteUnavailable)
	}
	assert.Equal(t, 1, attempts, "default policy must not reconnect")
	assert.Len(t, fb.records, 3)
}

func TestEachSubmissionPolicyReconnects(t *testing.T) {
	remote := &stubRemote{}
	attempts := 0
	connect := func(context.Context) (RemoteStore, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient dns failure")
		}
		return remote, nil
	}
	fb := &stubFallback{}
	g := newGateway(t, Config{Connect: connect, Fallback: fb, Policy: RemoteRetryEachSubmission})

	require.Error(t, g.Connect(context.Background()))

	res := g.Store(context.Background(), record())
	assert.Equal(t, OutcomeRemote, res.Outcome)
	assert.Equal(t, 2, attempts)

	res = g.Store(context.Background(), record())
	assert.Equal(t, OutcomeRemote, res.Outcome)
	assert.Equal(t, 2, attempts, "cached handle is reused")
	assert.Len(t, remote.rows, 2)
	assert.Empty(t, fb.records)
}

func TestNilConnectorIsFallbackOnly(t *testing.T) {
	fb := &stubFallback{}
	g := newGateway(t, Config{Fallback: fb, Policy: RemoteRetryEachSubmission})
	assert.ErrorIs(t, g.Connect(context.Background()), ErrRemoteUnavailable)
	assert.Equal(t, OutcomeFallback, g.Store(context.Background(), record()).Outcome)
}

func TestFallbackFileHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insurance_leads_backup.csv")
	g := newGateway(t, Config{Fallback: fallback.NewCSVStore(path)})
	_ = g.Connect(context.Background())

	first := g.Store(context.Background(), record())
	second := g.Store(context.Background(), record())
	assert.True(t, first.OK())
	assert.True(t, second.OK())

	rows, err := fallback.NewCSVStore(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, leads.Columns, rows[0])
	assert.NotEqual(t, leads.Columns, rows[2])
}

type hangingRemote struct{}

func (hangingRemote) Append(ctx context.Context, _ []string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestStoreFallsBackWhenRemoteTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insurance_leads_backup.csv")
	g := newGateway(t, Config{
		Connect:       connectTo(hangingRemote{}),
		Fallback:      fallback.NewCSVStore(path),
		RemoteTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, g.Connect(context.Background()))

	res := g.Store(context.Background(), record())
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.ErrorIs(t, res.RemoteErr, context.DeadlineExceeded)
	assert.NoError(t, res.Err)

	rows, err := fallback.NewCSVStore(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Smith", rows[1][1])
}

func TestStoreFallbackOutlivesCallerDeadline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insurance_leads_backup.csv")
	g := newGateway(t, Config{Connect: connectTo(hangingRemote{}), Fallback: fallback.NewCSVStore(path)})
	require.NoError(t, g.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := g.Store(ctx, record())
	require.True(t, res.OK(), "remote hang must not lose the lead: %v", res.Err)
	assert.Equal(t, OutcomeFallback, res.Outcome)

	rows, err := fallback.NewCSVStore(path).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseRetryPolicy(t *testing.T) {
	p, err := ParseRetryPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RemoteRetryNever, p)

	p, err = ParseRetryPolicy("each-submission")
	require.NoError(t, err)
	assert.Equal(t, RemoteRetryEachSubmission, p)

	_, err = ParseRetryPolicy("sometimes")
	assert.Error(t, err)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "remote", OutcomeRemote.String())
	assert.Equal(t, "fallback", OutcomeFallback.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
