package browser

import (
	"context"
	"fmt"
	"time"
)

// WaitFunc pauses for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// sleepContext is the WaitFunc used outside tests.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ConvergenceResult describes how the scroll loop ended.
type ConvergenceResult struct {
	// Iterations is the number of scroll rounds performed
	Iterations int

	// Converged is true when two consecutive heights were equal
	Converged bool

	// FinalHeight is the last measured scroll height
	FinalHeight int
}

// Converge scrolls page to the bottom until its height stops changing or
// maxIterations rounds have run. Running out of rounds is not an error; the
// result reports Converged=false.
func Converge(ctx context.Context, page Page, interval time.Duration, maxIterations int, wait WaitFunc) (ConvergenceResult, error) {
	if wait == nil {
		wait = sleepContext
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxScrollIterations
	}

	last, err := page.ScrollHeight(ctx)
	if err != nil {
		return ConvergenceResult{}, fmt.Errorf("failed to measure page height: %w", err)
	}

	for i := 1; i <= maxIterations; i++ {
		if err := page.ScrollToBottom(ctx); err != nil {
			return ConvergenceResult{Iterations: i, FinalHeight: last}, fmt.Errorf("failed to scroll: %w", err)
		}
		if err := wait(ctx, interval); err != nil {
			return ConvergenceResult{Iterations: i, FinalHeight: last}, err
		}

		height, err := page.ScrollHeight(ctx)
		if err != nil {
			return ConvergenceResult{Iterations: i, FinalHeight: last}, fmt.Errorf("failed to measure page height: %w", err)
		}
		if height == last {
			return ConvergenceResult{Iterations: i, Converged: true, FinalHeight: height}, nil
		}
		last = height
	}

	return ConvergenceResult{Iterations: maxIterations, Converged: false, FinalHeight: last}, nil
}
