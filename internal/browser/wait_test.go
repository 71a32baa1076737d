package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/arofill/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFor(t *testing.T) {
	ctx := context.Background()

	t.Run("ImmediateSuccess", func(t *testing.T) {
		calls := 0
		err := WaitFor(ctx, 100*time.Millisecond, 10*time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return true, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("EventualSuccess", func(t *testing.T) {
		calls := 0
		err := WaitFor(ctx, time.Second, 5*time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return calls >= 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Timeout", func(t *testing.T) {
		err := WaitFor(ctx, 30*time.Millisecond, 10*time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})
		assert.ErrorIs(t, err, shared.ErrNotReady)
	})

	t.Run("PredicateErrorStopsPolling", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := WaitFor(ctx, time.Second, 5*time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("Cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := WaitFor(cctx, time.Second, 10*time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})
		assert.Error(t, err)
	})
}
