package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type recordedSleep struct {
	waits []time.Duration
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func TestExponential(t *testing.T) {
	b := Exponential(time.Second)

	assert.Equal(t, time.Second, b(0))
	assert.Equal(t, 2*time.Second, b(1))
	assert.Equal(t, 4*time.Second, b(2))
	assert.Equal(t, time.Second, b(-3))
}

func TestDo(t *testing.T) {
	testCases := []struct {
		name      string
		failures  int
		classify  ClassifyFunc
		wantCalls int
		wantWaits []time.Duration
		wantErr   bool
	}{
		{
			name:      "succeeds first time",
			failures:  0,
			wantCalls: 1,
		},
		{
			name:      "always fails backs off twice",
			failures:  10,
			wantCalls: 3,
			wantWaits: []time.Duration{time.Second, 2 * time.Second},
			wantErr:   true,
		},
		{
			name:      "recovers on second attempt",
			failures:  1,
			wantCalls: 2,
			wantWaits: []time.Duration{time.Second},
		},
		{
			name:      "stop decision",
			failures:  10,
			classify:  func(context.Context, error, int) Decision { return Stop },
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:     "immediate retry does not sleep",
			failures: 10,
			classify: func(_ context.Context, _ error, attempt int) Decision {
				if attempt == 0 {
					return Immediately
				}

				return Stop
			},
			wantCalls: 2,
			wantErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				calls int
				rec   recordedSleep
			)

			err := Do(context.Background(), Policy{
				MaxAttempts: 3,
				Backoff:     Exponential(time.Second),
				Classify:    tc.classify,
				Sleep:       rec.sleep,
			}, func(_ context.Context, attempt int) error {
				assert.Equal(t, calls, attempt)
				calls++

				if calls <= tc.failures {
					return errBoom
				}

				return nil
			})

			assert.Equal(t, tc.wantCalls, calls)
			assert.Equal(t, tc.wantWaits, rec.waits)

			if tc.wantErr {
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDo_InvalidPolicy(t *testing.T) {
	err := Do(context.Background(), Policy{}, func(context.Context, int) error { return nil })
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestDo_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int

	err := Do(ctx, Policy{
		MaxAttempts: 3,
		Backoff:     Exponential(time.Hour),
	}, func(context.Context, int) error {
		calls++
		cancel()

		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
