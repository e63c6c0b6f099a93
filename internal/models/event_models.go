package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Scope says whether the watch that produced an event was following a
// subreddit or a redditor's profile.
type Scope string

const (
	ScopeSubreddit Scope = "subreddit"
	ScopeUser      Scope = "user"
)

// ContentKind is the kind of content an event is about.
type ContentKind string

const (
	KindSubmission ContentKind = "submission"
	KindComment    ContentKind = "comment"
	KindMembership ContentKind = "membership"
)

// Transition is the semantic change observed for one item. The membership
// transitions (joined/left/banned) are part of the taxonomy but no current
// input produces them - the listing feed carries no membership signal.
type Transition string

const (
	TransitionCreated Transition = "created"
	TransitionEdited  Transition = "edited"
	TransitionDeleted Transition = "deleted"
	TransitionRemoved Transition = "removed"
	TransitionPinned  Transition = "pinned"

	TransitionJoined Transition = "joined"
	TransitionLeft   Transition = "left"
	TransitionBanned Transition = "banned"
)

// Event is one classified observation. Scope, Kind and Transition are
// orthogonal; consumers switch on the fields rather than on type identity.
// Events are never mutated after construction.
type Event struct {
	Scope      Scope       `json:"scope"`
	Kind       ContentKind `json:"kind"`
	Transition Transition  `json:"transition"`

	ItemID string `json:"item_id"`
	Entity string `json:"entity"`
	Author string `json:"author"`

	// Submission fields. Title and URL are empty for comments.
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Body  string `json:"body"`

	// Comment fields.
	ParentID string `json:"parent_id,omitempty"`
	TopLevel bool   `json:"top_level,omitempty"`

	// Set on edited transitions when the pre-edit content was still cached.
	PreEditBody   string `json:"pre_edit_body,omitempty"`
	PreEditAuthor string `json:"pre_edit_author,omitempty"`
	HasPreEdit    bool   `json:"has_pre_edit"`

	CreatedUTC float64   `json:"created_utc"`
	ObservedAt time.Time `json:"observed_at"`
}

// Fingerprint derives the dedupe key consumers use against at-least-once bus
// delivery. It hashes over transition and content as well as the item id: the
// same item legitimately produces several distinct events over its life, and
// only a bit-identical redelivery of one of them may be skipped.
func (e Event) Fingerprint() string {
	raw := fmt.Sprintf("%s:%s:%s:%s", e.ItemID, e.Transition, e.Body, e.Author)
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}
