package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverge(t *testing.T) {
	tests := []struct {
		name           string
		heights        []int
		maxIterations  int
		wantIterations int
		wantConverged  bool
		wantHeight     int
	}{
		{
			name:           "static page converges after one scroll",
			heights:        []int{800, 800},
			maxIterations:  20,
			wantIterations: 1,
			wantConverged:  true,
			wantHeight:     800,
		},
		{
			name:           "infinite feed that stops growing",
			heights:        []int{800, 1600, 2400, 2400},
			maxIterations:  20,
			wantIterations: 3,
			wantConverged:  true,
			wantHeight:     2400,
		},
		{
			name:           "page that never stops growing hits the bound",
			heights:        []int{100, 200, 300, 400, 500, 600, 700},
			maxIterations:  5,
			wantIterations: 5,
			wantConverged:  false,
			wantHeight:     600,
		},
		{
			name:           "zero bound falls back to the default",
			heights:        []int{50, 50},
			maxIterations:  0,
			wantIterations: 1,
			wantConverged:  true,
			wantHeight:     50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &fakePage{heights: tt.heights}
			waiter := &recordingWait{}

			result, err := Converge(context.Background(), page, time.Second, tt.maxIterations, waiter.wait)
			require.NoError(t, err)

			assert.Equal(t, tt.wantIterations, result.Iterations)
			assert.Equal(t, tt.wantConverged, result.Converged)
			assert.Equal(t, tt.wantHeight, result.FinalHeight)
			assert.Equal(t, tt.wantIterations, page.scrolls)
			assert.Len(t, waiter.delays, tt.wantIterations)
			for _, d := range waiter.delays {
				assert.Equal(t, time.Second, d)
			}
		})
	}
}

func TestConvergeNeverExceedsBound(t *testing.T) {
	heights := make([]int, 100)
	for i := range heights {
		heights[i] = (i + 1) * 10
	}
	page := &fakePage{heights: heights}
	waiter := &recordingWait{}

	result, err := Converge(context.Background(), page, time.Millisecond, 20, waiter.wait)
	require.NoError(t, err)

	assert.False(t, result.Converged)
	assert.Equal(t, 20, result.Iterations)
	assert.Equal(t, 20, page.scrolls)
	assert.Equal(t, 21, page.measured)
}

func TestConvergeErrors(t *testing.T) {
	t.Run("measure failure", func(t *testing.T) {
		page := &fakePage{heightErr: errDriver}
		_, err := Converge(context.Background(), page, time.Second, 5, (&recordingWait{}).wait)
		require.Error(t, err)
		assert.ErrorIs(t, err, errDriver)
		assert.Contains(t, err.Error(), "failed to measure page height")
	})

	t.Run("scroll failure", func(t *testing.T) {
		page := &fakePage{heights: []int{10, 20}, scrollErr: errDriver}
		result, err := Converge(context.Background(), page, time.Second, 5, (&recordingWait{}).wait)
		require.Error(t, err)
		assert.ErrorIs(t, err, errDriver)
		assert.Equal(t, 1, result.Iterations)
		assert.Equal(t, 10, result.FinalHeight)
	})

	t.Run("canceled context stops the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		page := &fakePage{heights: []int{10, 20, 30}}
		result, err := Converge(ctx, page, time.Second, 5, (&recordingWait{}).wait)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, result.Converged)
		assert.Equal(t, 1, page.scrolls)
	})
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleepContext(ctx, 0), context.Canceled)
}
