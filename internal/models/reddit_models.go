package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Sentinel strings the listing API substitutes into items that are gone.
// There is no explicit lifecycle field; these are the only signal available.
const (
	RemovedSentinel = "[removed]"
	DeletedSentinel = "[deleted]"
)

// Fullname prefixes used in parent_id / name fields.
const (
	CommentFullnamePrefix    = "t1_"
	SubmissionFullnamePrefix = "t3_"
)

// EditedFlag is either false or a float edit timestamp on the wire.
type EditedFlag float64

func (e *EditedFlag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("false")) {
		*e = 0
		return nil
	}
	if bytes.Equal(trimmed, []byte("true")) {
		*e = 1
		return nil
	}
	var ts float64
	if err := json.Unmarshal(trimmed, &ts); err != nil {
		return fmt.Errorf("edited flag is neither bool nor timestamp: %w", err)
	}
	*e = EditedFlag(ts)
	return nil
}

func (e EditedFlag) MarshalJSON() ([]byte, error) {
	if e == 0 {
		return []byte("false"), nil
	}
	return json.Marshal(float64(e))
}

// Truthy reports whether the feed flagged the item as edited at all.
func (e EditedFlag) Truthy() bool { return e != 0 }

type Submission struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Subreddit  string     `json:"subreddit"`
	Author     string     `json:"author"`
	Title      string     `json:"title"`
	Selftext   string     `json:"selftext"`
	URL        string     `json:"url"`
	Stickied   bool       `json:"stickied"`
	Edited     EditedFlag `json:"edited"`
	CreatedUTC float64    `json:"created_utc"`
}

type Comment struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Subreddit  string     `json:"subreddit"`
	Author     string     `json:"author"`
	Body       string     `json:"body"`
	ParentID   string     `json:"parent_id"`
	LinkID     string     `json:"link_id"`
	Edited     EditedFlag `json:"edited"`
	CreatedUTC float64    `json:"created_utc"`
}

// TopLevel reports whether the comment hangs directly off a submission
// rather than off another comment.
func (c Comment) TopLevel() bool {
	return strings.HasPrefix(c.ParentID, SubmissionFullnamePrefix)
}

// Listing envelopes, as returned by /r/<entity>/new and /r/<entity>/comments.
// The same shape carries both content kinds; only the child data differs.

type SubmissionListing struct {
	Data SubmissionListingData `json:"data"`
}

type SubmissionListingData struct {
	After    string            `json:"after"`
	Before   string            `json:"before"`
	Children []SubmissionChild `json:"children"`
}

type SubmissionChild struct {
	Data Submission `json:"data"`
}

type CommentListing struct {
	Data CommentListingData `json:"data"`
}

type CommentListingData struct {
	After    string         `json:"after"`
	Before   string         `json:"before"`
	Children []CommentChild `json:"children"`
}

type CommentChild struct {
	Data Comment `json:"data"`
}

// ProfileName maps a redditor to the pseudo-subreddit their profile lives in.
func ProfileName(redditor string) string {
	return "u_" + redditor
}
