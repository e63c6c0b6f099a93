// Package cache holds the last-observed content of watched submissions and
// comments so that edit events can report what changed. Both maps are
// size-bounded; an id falling out of the cache silently degrades edit
// reporting for that id, it is never an error.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Snapshot is the content of an item as observed at one point in time.
type Snapshot struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Title      string  `json:"title,omitempty"`
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
}

// preEditEntry distinguishes a captured pre-edit snapshot from a bare
// edit-seen marker. The marker exists for items whose first observed state
// was already edited: there is nothing to capture for them, and a duplicate
// delivery must not backfill the post-edit content as "previous".
type preEditEntry struct {
	snap     Snapshot
	captured bool
}

// ContentCache maps item ids to their most recently observed content, plus a
// shadow map holding the content an item had before its first observed edit.
// A pre-edit snapshot, once written for an id, is never overwritten.
type ContentCache struct {
	mu      sync.Mutex
	current *lru.Cache[string, Snapshot]
	preEdit *lru.Cache[string, preEditEntry]
}

func NewContentCache(capacity int) (*ContentCache, error) {
	current, err := lru.New[string, Snapshot](capacity)
	if err != nil {
		return nil, err
	}
	preEdit, err := lru.New[string, preEditEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &ContentCache{current: current, preEdit: preEdit}, nil
}

// Observe records snap as the current content for its id and returns the
// previously recorded content, if any. Called exactly once per observation.
func (cc *ContentCache) Observe(snap Snapshot) (Snapshot, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	prior, ok := cc.current.Get(snap.ID)
	cc.current.Add(snap.ID, snap)
	return prior, ok
}

// CapturePreEdit stores snap as the pre-edit content for id unless an edit
// was already recorded for it. Idempotent under duplicate deliveries.
func (cc *ContentCache) CapturePreEdit(id string, snap Snapshot) {
	cc.preEdit.ContainsOrAdd(id, preEditEntry{snap: snap, captured: true})
}

// MarkEditSeen records that an edit was detected for id without any prior
// content to capture. Later deliveries of the same edit find the marker and
// capture nothing.
func (cc *ContentCache) MarkEditSeen(id string) {
	cc.preEdit.ContainsOrAdd(id, preEditEntry{})
}

// PreEdit returns the content an item had before its first observed edit.
// Absent if the item was never edited, arrived already edited, or has aged
// out.
func (cc *ContentCache) PreEdit(id string) (Snapshot, bool) {
	entry, ok := cc.preEdit.Peek(id)
	if !ok || !entry.captured {
		return Snapshot{}, false
	}
	return entry.snap, true
}

// Len reports how many current snapshots are held.
func (cc *ContentCache) Len() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.Len()
}
