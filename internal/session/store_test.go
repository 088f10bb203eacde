package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/insurance-leadform/internal/leads"
)

func sampleState() State {
	return State{
		Phase:        PhaseSuccess,
		Submissions:  2,
		ShowSuccess:  true,
		SuccessTimer: 7,
		Submitted:    &Snapshot{Name: "Jane Smith", Phone: "(508) 579-4251"},
		Input:        leads.FormInput{FirstName: "Jane"},
		Warnings:     []leads.FieldError{{Field: leads.FieldEmail, Message: "Please enter a valid email address"}},
	}
}

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	st, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	require.NoError(t, store.Save(ctx, "s1", sampleState()))
	st, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sampleState(), st)

	now = now.Add(2 * time.Minute)
	st, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	require.NoError(t, store.Save(ctx, "s2", sampleState()))
	require.NoError(t, store.Delete(ctx, "s2"))
	st, _ = store.Load(ctx, "s2")
	assert.Equal(t, State{}, st)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "", time.Hour)

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	require.NoError(t, store.Save(ctx, "s1", sampleState()))
	assert.True(t, mr.Exists("leadform:session:s1"))
	assert.Equal(t, time.Hour, mr.TTL("leadform:session:s1"))

	st, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sampleState(), st)

	require.NoError(t, store.Delete(ctx, "s1"))
	assert.False(t, mr.Exists("leadform:session:s1"))
}

func TestRedisStoreRejectsCorruptState(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("leadform:session:bad", "{not json"))

	_, err := NewRedisStore(client, "", 0).Load(context.Background(), "bad")
	assert.ErrorContains(t, err, "decode state")
}

func TestRedisStoreSurfacesConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedisStore(client, "", 0).Load(context.Background(), "s1")
	assert.ErrorContains(t, err, "redis get")
}
