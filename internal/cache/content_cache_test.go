package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObserveReturnsPrior(t *testing.T) {
	cc, err := NewContentCache(16)
	require.NoError(t, err)

	_, ok := cc.Observe(Snapshot{ID: "abc", Body: "first"})
	require.False(t, ok, "first observation has no prior")

	prior, ok := cc.Observe(Snapshot{ID: "abc", Body: "second"})
	require.True(t, ok)
	require.Equal(t, "first", prior.Body)

	prior, ok = cc.Observe(Snapshot{ID: "abc", Body: "third"})
	require.True(t, ok)
	require.Equal(t, "second", prior.Body)
}

func TestCapturePreEditWriteOnce(t *testing.T) {
	cc, err := NewContentCache(16)
	require.NoError(t, err)

	_, ok := cc.PreEdit("abc")
	require.False(t, ok, "no pre-edit before any capture")

	cc.CapturePreEdit("abc", Snapshot{ID: "abc", Body: "original"})
	cc.CapturePreEdit("abc", Snapshot{ID: "abc", Body: "later"})

	snap, ok := cc.PreEdit("abc")
	require.True(t, ok)
	require.Equal(t, "original", snap.Body, "pre-edit snapshot must never be overwritten")
}

func TestMarkEditSeenBlocksLaterCapture(t *testing.T) {
	cc, err := NewContentCache(16)
	require.NoError(t, err)

	cc.MarkEditSeen("abc")

	_, ok := cc.PreEdit("abc")
	require.False(t, ok, "an edit-seen marker holds no content")

	// A later capture attempt for the same id must not replace the marker;
	// the first detected edit had nothing to diff against, and that fact
	// is permanent for the lifetime of the entry.
	cc.CapturePreEdit("abc", Snapshot{ID: "abc", Body: "post-edit"})

	_, ok = cc.PreEdit("abc")
	require.False(t, ok)
}

func TestCacheIsBounded(t *testing.T) {
	const capacity = 8
	cc, err := NewContentCache(capacity)
	require.NoError(t, err)

	for i := 0; i < capacity*4; i++ {
		cc.Observe(Snapshot{ID: fmt.Sprintf("id-%d", i), Body: "x"})
	}

	require.LessOrEqual(t, cc.Len(), capacity)
}

func TestEvictionDegradesSilently(t *testing.T) {
	cc, err := NewContentCache(2)
	require.NoError(t, err)

	cc.Observe(Snapshot{ID: "a", Body: "a1"})
	cc.Observe(Snapshot{ID: "b", Body: "b1"})
	cc.Observe(Snapshot{ID: "c", Body: "c1"}) // evicts "a"

	_, ok := cc.Observe(Snapshot{ID: "a", Body: "a2"})
	require.False(t, ok, "evicted id behaves like a never-seen one")
}

func TestConcurrentObserve(t *testing.T) {
	cc, err := NewContentCache(128)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("id-%d", i%32)
				cc.Observe(Snapshot{ID: id, Body: fmt.Sprintf("g%d-%d", g, i)})
				cc.CapturePreEdit(id, Snapshot{ID: id, Body: "pre"})
				cc.PreEdit(id)
			}
		}(g)
	}
	wg.Wait()

	require.LessOrEqual(t, cc.Len(), 128)
}
