package watch

import (
	"strings"

	"github.com/spacesedan/redditwatch/internal/cache"
	"github.com/spacesedan/redditwatch/internal/models"
)

// Item is one feed observation, normalized across submissions and comments.
// It lives only for the duration of one classification call.
type Item struct {
	Kind models.ContentKind

	ID       string
	Entity   string
	Author   string
	Title    string
	Body     string
	URL      string
	ParentID string

	CreatedUTC float64
	Edited     bool
	Stickied   bool
}

func submissionItem(entity string, s models.Submission) Item {
	return Item{
		Kind:       models.KindSubmission,
		ID:         s.ID,
		Entity:     entity,
		Author:     s.Author,
		Title:      s.Title,
		Body:       s.Selftext,
		URL:        s.URL,
		CreatedUTC: s.CreatedUTC,
		Edited:     s.Edited.Truthy(),
		Stickied:   s.Stickied,
	}
}

func commentItem(entity string, c models.Comment) Item {
	return Item{
		Kind:       models.KindComment,
		ID:         c.ID,
		Entity:     entity,
		Author:     c.Author,
		Body:       c.Body,
		ParentID:   c.ParentID,
		CreatedUTC: c.CreatedUTC,
		Edited:     c.Edited.Truthy(),
	}
}

// Classification is the outcome of classifying one item: the transition it
// represents plus the extra fields an event built from it needs.
type Classification struct {
	Transition models.Transition
	TopLevel   bool
	PreEdit    cache.Snapshot
	HasPreEdit bool
}

// Classify decides which transition one observed item represents, consulting
// and updating the content cache. The precedence is fixed policy, not
// accident: the deletion sentinels destroy the body, so they win over the
// edited flag; a duplicate delivery of an already-edited item re-derives the
// same transition it produced on first sight.
//
// Removal vs. deletion detection leans on the "[removed]"/"[deleted]"
// sentinel text. The feed gives no explicit lifecycle signal, and the
// sentinels are English-only; this is a known limitation.
func Classify(item Item, cc *cache.ContentCache) Classification {
	snap := cache.Snapshot{
		ID:         item.ID,
		Author:     item.Author,
		Title:      item.Title,
		Body:       item.Body,
		CreatedUTC: item.CreatedUTC,
	}
	prior, hadPrior := cc.Observe(snap)

	cls := Classification{
		TopLevel: strings.HasPrefix(item.ParentID, models.SubmissionFullnamePrefix),
	}

	switch {
	case item.Body == models.RemovedSentinel && item.Author == models.DeletedSentinel:
		cls.Transition = models.TransitionRemoved
	case item.Body == models.DeletedSentinel:
		cls.Transition = models.TransitionDeleted
	case item.Stickied && item.Kind == models.KindSubmission:
		cls.Transition = models.TransitionPinned
	case item.Edited:
		cls.Transition = models.TransitionEdited
		// The pre-edit content is whatever the cache held before this
		// observation; captured once, never overwritten. If the item
		// arrived already edited there is nothing to capture, and the
		// edit-seen marker keeps a duplicate delivery from backfilling
		// the post-edit content as "previous".
		if hadPrior {
			cc.CapturePreEdit(item.ID, prior)
		} else {
			cc.MarkEditSeen(item.ID)
		}
		cls.PreEdit, cls.HasPreEdit = cc.PreEdit(item.ID)
	default:
		cls.Transition = models.TransitionCreated
	}

	return cls
}
