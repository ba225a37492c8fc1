package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/product-search/internal/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistry_AddGetRemove(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry()
	run := session.NewRunner(newScriptedFetcher())

	id, err := reg.Add(run)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []string{id}, reg.IDs())

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Same(t, run, got)

	_, err = reg.Get("missing")
	require.ErrorIs(t, err, session.ErrNotFound)

	removed, err := reg.Remove(id)
	require.NoError(t, err)
	assert.Same(t, run, removed)
	assert.Equal(t, 0, reg.Len())

	_, err = reg.Remove(id)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestRegistry_MaxSessions(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(session.WithMaxSessions(2))
	for range 2 {
		_, err := reg.Add(session.NewRunner(newScriptedFetcher()))
		require.NoError(t, err)
	}
	_, err := reg.Add(session.NewRunner(newScriptedFetcher()))
	require.ErrorIs(t, err, session.ErrRegistryFull)
}

func TestRegistry_EvictIdle(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	reg := session.NewRegistry(session.WithRegistryNowFunc(clock.Now))

	idle, err := reg.Add(session.NewRunner(newScriptedFetcher()))
	require.NoError(t, err)
	busy, err := reg.Add(session.NewRunner(newScriptedFetcher()))
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = reg.Get(busy)
	require.NoError(t, err)
	clock.Advance(15 * time.Minute)

	var evicted []string
	n := reg.EvictIdle(30*time.Minute, func(id string, run *session.Runner) {
		evicted = append(evicted, id)
		run.Close()
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{idle}, evicted)
	assert.Equal(t, []string{busy}, reg.IDs())
}

func TestRegistry_CloseAll(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry()
	runners := make([]*session.Runner, 3)
	for i := range runners {
		runners[i] = session.NewRunner(newScriptedFetcher())
		runners[i].Start(context.Background())
		_, err := reg.Add(runners[i])
		require.NoError(t, err)
	}

	reg.CloseAll()
	assert.Equal(t, 0, reg.Len())
	for _, run := range runners {
		select {
		case <-run.Done():
		case <-time.After(time.Second):
			t.Fatal("runner not stopped")
		}
	}
}
