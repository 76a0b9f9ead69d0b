// internal/common/retry/retry.go
package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Policy defines a shared backoff policy for transient infrastructure calls.
type Policy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultPolicy is used for database, cache and notification calls.
var DefaultPolicy = Policy{
	Attempts: 3,
	Delay:    200 * time.Millisecond,
	MaxDelay: 5 * time.Second,
}

// Do runs fn with exponential backoff and jitter. Permanent errors can be
// marked with retry.Unrecoverable at the call site.
func Do(ctx context.Context, p Policy, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.Delay(p.Delay),
		retry.MaxDelay(p.MaxDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
}

// Unrecoverable marks an error so Do stops retrying immediately.
func Unrecoverable(err error) error {
	return retry.Unrecoverable(err)
}
