package browser

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/desertthunder/arofill/internal/shared"
)

// WaitFor polls pred until it reports true, the timeout budget is spent, or
// the context is cancelled.
//
// A pred error is treated as unrecoverable and returned immediately; a pred
// that never reports true yields [shared.ErrNotReady]. The interval defaults
// to 500ms.
func WaitFor(ctx context.Context, timeout, interval time.Duration, pred func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	attempts := uint(timeout / interval)
	if attempts == 0 {
		attempts = 1
	}

	return retry.Do(
		func() error {
			ok, err := pred(ctx)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if !ok {
				return shared.ErrNotReady
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
