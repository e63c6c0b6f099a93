package watch

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacesedan/redditwatch/internal/models"
)

func TestMarkStartedOnce(t *testing.T) {
	ws := NewWatchSet()

	require.True(t, ws.MarkStarted("golang", models.KindSubmission))
	require.False(t, ws.MarkStarted("golang", models.KindSubmission))
	require.True(t, ws.IsStarted("golang", models.KindSubmission))

	// A different kind on the same entity is its own watch.
	require.True(t, ws.MarkStarted("golang", models.KindComment))
	require.False(t, ws.IsStarted("rust", models.KindSubmission))
}

func TestMarkStartedConcurrent(t *testing.T) {
	ws := NewWatchSet()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ws.MarkStarted("golang", models.KindSubmission) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load(), "exactly one caller may win the start")
}

func TestMarkStoppedAllowsRestart(t *testing.T) {
	ws := NewWatchSet()

	require.True(t, ws.MarkStarted("golang", models.KindSubmission))
	ws.MarkStopped("golang", models.KindSubmission)
	require.False(t, ws.IsStarted("golang", models.KindSubmission))
	require.True(t, ws.MarkStarted("golang", models.KindSubmission))
}
