package source

import (
	"context"
	"os"
	"time"

	"lanis_war_tracker/internal/config"
)

// readDrop reads a drop file, retrying transient read failures with backoff.
// A missing file is returned immediately: the scraper has not written it yet,
// and waiting within one cycle will not change that.
func readDrop(ctx context.Context, readFile func(string) ([]byte, error), path string, retry config.RetryConfig) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var lastErr error
	wait := retry.InitialWait
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			wait = time.Duration(float64(wait) * retry.Multiplier)
			if wait > retry.MaxWait {
				wait = retry.MaxWait
			}
		}

		data, err := readFile(path)
		if err == nil {
			return data, nil
		}
		if os.IsNotExist(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
