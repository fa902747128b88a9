package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/user/codereview-adk/pkg/logging"
)

// RetryPolicy retries a call with exponential backoff. The wait after the
// nth failed attempt is Multiplier*2^(n-1), clamped to [Min, Max].
type RetryPolicy struct {
	Attempts   int
	Multiplier time.Duration
	Min        time.Duration
	Max        time.Duration
	// Sleep waits between attempts; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetry makes three attempts waiting 2s between them.
var DefaultRetry = RetryPolicy{
	Attempts:   3,
	Multiplier: time.Second,
	Min:        2 * time.Second,
	Max:        10 * time.Second,
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.Multiplier
	for i := 1; i < attempt && d < p.Max; i++ {
		d *= 2
	}
	if d < p.Min {
		d = p.Min
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// Do calls fn until it succeeds, the attempts run out or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for n := 1; n <= attempts; n++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("retry aborted after attempt %d: %w", n, ctxErr)
		}
		logging.Logger.Warnw("Model call failed", "attempt", n, "max_attempts", attempts, "error", err)
		if n == attempts {
			break
		}
		if serr := sleep(ctx, p.Delay(n)); serr != nil {
			return fmt.Errorf("retry aborted after attempt %d: %w", n, serr)
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
