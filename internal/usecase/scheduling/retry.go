package scheduling

import (
	"context"
	"errors"
	"math/rand"
	"time"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
)

const storageRetryAttempts = 3

// withStorageRetry re-attempts fn on ErrStorageUnavailable only. Conflicts
// and stale versions are business outcomes and pass straight through.
func withStorageRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < storageRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(backoffDelay(attempt)):
			}
		}
		if err = fn(); !errors.Is(err, domain.ErrStorageUnavailable) {
			return err
		}
	}
	return err
}

func backoffDelay(attempt int) time.Duration {
	base := 50 * time.Millisecond << (attempt - 1)
	return base + time.Duration(rand.Int63n(int64(base)))
}
