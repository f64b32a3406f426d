// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// waitComplete polls done every interval until it is set. It gives up when
// ctx is cancelled or, if stop is non-nil, when stop is set. tick runs on
// every poll that did not complete.
func waitComplete(ctx context.Context, done, stop *atomic.Bool, interval time.Duration, tick func()) error {
	if done.Load() {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case <-ticker.C:
		}
		if done.Load() {
			return nil
		}
		if stop != nil && stop.Load() {
			return fmt.Errorf("%w: stop requested", ErrCancelled)
		}
		if tick != nil {
			tick()
		}
	}
}

// runStream starts an opened stream, waits for the callback to signal done
// and always stops and closes the stream before returning, so the caller
// owns the buffer again when runStream returns.
func runStream(ctx context.Context, stream Stream, done, stop *atomic.Bool, interval time.Duration, tick func()) error {
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("%w: %w", ErrDeviceStart, err)
	}

	waitErr := waitComplete(ctx, done, stop, interval, tick)

	stopErr := stream.Stop()
	closeErr := stream.Close()
	if waitErr != nil {
		return waitErr
	}
	if stopErr != nil {
		return fmt.Errorf("%w: stop: %w", ErrStream, stopErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close: %w", ErrStream, closeErr)
	}
	return nil
}
