package watch

import (
	"sync"

	"github.com/spacesedan/redditwatch/internal/models"
)

// WatchSet tracks which (entity, content kind) pairs already have a running
// watcher, so concurrent Watch calls never start two loops for the same pair.
type WatchSet struct {
	mu      sync.Mutex
	started map[string]struct{}
}

func NewWatchSet() *WatchSet {
	return &WatchSet{started: make(map[string]struct{})}
}

func watchKey(entity string, kind models.ContentKind) string {
	return entity + "/" + string(kind)
}

// MarkStarted returns true exactly once per (entity, kind) across all callers.
// The caller that gets true owns spawning the watcher loop.
func (ws *WatchSet) MarkStarted(entity string, kind models.ContentKind) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	key := watchKey(entity, kind)
	if _, ok := ws.started[key]; ok {
		return false
	}
	ws.started[key] = struct{}{}
	return true
}

func (ws *WatchSet) IsStarted(entity string, kind models.ContentKind) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	_, ok := ws.started[watchKey(entity, kind)]
	return ok
}

// MarkStopped clears the pair so a later Watch may start it again.
func (ws *WatchSet) MarkStopped(entity string, kind models.ContentKind) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.started, watchKey(entity, kind))
}
