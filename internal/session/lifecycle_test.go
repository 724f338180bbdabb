package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	l := NewLifecycle()
	assert.False(t, l.Ready())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)

	waited := make(chan error)

	go func() { waited <- l.Wait(context.Background()) }()

	l.MarkReady()
	l.MarkReady()
	require.NoError(t, <-waited)
	assert.True(t, l.Ready())

	l.Reset()
	assert.False(t, l.Ready())

	l.MarkReady()
	require.NoError(t, l.Wait(context.Background()))
}

func TestLifecycle_ZeroValue(t *testing.T) {
	var l Lifecycle

	l.MarkReady()
	assert.True(t, l.Ready())
	require.NoError(t, l.Wait(context.Background()))
}

func TestMemoryNavigator(t *testing.T) {
	n := NewMemoryNavigator("/login")
	n.Navigate("/dashboard")
	n.Navigate("/sales")

	assert.Equal(t, "/sales", n.Location())
	assert.Equal(t, []string{"/dashboard", "/sales"}, n.History())
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateIdle:            "idle",
		StateBootstrapping:   "bootstrapping",
		StateRefreshingToken: "refreshing_token",
		StateAuthenticated:   "authenticated",
		StateUnauthenticated: "unauthenticated",
		StateLoggingOut:      "logging_out",
		State(99):            "unknown",
	} {
		assert.Equal(t, want, s.String())
	}
}
