package db

import (
	"context"
	"fmt"
	"time"
)

// WaitForReady pings p right away and then every interval until it answers
// or timeout expires. name labels the backend in the timeout error.
func WaitForReady(ctx context.Context, p Pinger, name string, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s: %w", name, ctx.Err())
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
