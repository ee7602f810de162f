package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
)

type staticBackend struct{}

func (staticBackend) Stats(context.Context) (marketplace.Stats, error) {
	return marketplace.Stats{}, nil
}
func (staticBackend) PendingGigs(context.Context) ([]marketplace.PendingGig, error) {
	return nil, nil
}
func (staticBackend) Reports(context.Context) ([]marketplace.AbuseReport, error) { return nil, nil }
func (staticBackend) ApproveGig(context.Context, string) error                   { return nil }
func (staticBackend) BlockUser(context.Context, string) error                    { return nil }
func (staticBackend) DeleteReview(context.Context, string) error                 { return nil }

func buildStatic() (*Controller, error) {
	return New(Options{Backend: staticBackend{}})
}

func TestRegistry_ReusesControllerPerKey(t *testing.T) {
	r := NewRegistry(time.Minute)
	a, err := r.Get("session-a", "ana@example.test", buildStatic)
	require.NoError(t, err)
	again, err := r.Get("session-a", "ana@example.test", buildStatic)
	require.NoError(t, err)
	other, err := r.Get("session-b", "bo@example.test", buildStatic)
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_NewOwnerReplacesController(t *testing.T) {
	r := NewRegistry(time.Minute)
	a, err := r.Get("session-a", "ana@example.test", buildStatic)
	require.NoError(t, err)
	b, err := r.Get("session-a", "bo@example.test", buildStatic)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestRegistry_ExpiresIdleControllers(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(10 * time.Minute)
	r.now = func() time.Time { return now }

	a, err := r.Get("s", "op", buildStatic)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	again, _ := r.Get("s", "op", buildStatic)
	assert.Same(t, a, again, "use refreshes the idle timer")

	now = now.Add(9 * time.Minute)
	assert.Equal(t, 0, r.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, r.Len())

	fresh, _ := r.Get("s", "op", buildStatic)
	assert.NotSame(t, a, fresh)
}

func TestRegistry_Forget(t *testing.T) {
	r := NewRegistry(time.Minute)
	_, err := r.Get("s", "op", buildStatic)
	require.NoError(t, err)
	r.Forget("s")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_BuildErrorIsNotCached(t *testing.T) {
	r := NewRegistry(time.Minute)
	_, err := r.Get("s", "op", func() (*Controller, error) { return nil, errors.New("no token") })
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())

	_, err = r.Get("", "op", buildStatic)
	require.Error(t, err)
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	r := NewRegistry(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
