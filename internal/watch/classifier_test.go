package watch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacesedan/redditwatch/internal/cache"
	"github.com/spacesedan/redditwatch/internal/models"
)

func newTestCache(t *testing.T) *cache.ContentCache {
	t.Helper()
	cc, err := cache.NewContentCache(64)
	require.NoError(t, err)
	return cc
}

func submission(id, author, body string) Item {
	return Item{
		Kind:   models.KindSubmission,
		ID:     id,
		Entity: "golang",
		Author: author,
		Title:  "a title",
		Body:   body,
	}
}

func TestClassifyRemovedBeatsEditedFlag(t *testing.T) {
	cc := newTestCache(t)

	item := submission("s1", models.DeletedSentinel, models.RemovedSentinel)
	item.Edited = true

	cls := Classify(item, cc)
	require.Equal(t, models.TransitionRemoved, cls.Transition,
		"removal sentinels win regardless of the edited flag")
}

func TestRemovedSentinelWithLiveAuthorFallsThrough(t *testing.T) {
	cc := newTestCache(t)

	// A "[removed]" body alone is not a removal; only the author turning
	// into "[deleted]" as well confirms it. Until then the item classifies
	// by the remaining rules.
	item := submission("s1", "bob", models.RemovedSentinel)
	cls := Classify(item, cc)
	require.Equal(t, models.TransitionCreated, cls.Transition)

	edited := submission("s2", "bob", models.RemovedSentinel)
	edited.Edited = true
	cls = Classify(edited, cc)
	require.Equal(t, models.TransitionEdited, cls.Transition)
}

func TestClassifyDeleted(t *testing.T) {
	cc := newTestCache(t)

	item := submission("s1", "bob", models.DeletedSentinel)
	cls := Classify(item, cc)
	require.Equal(t, models.TransitionDeleted, cls.Transition)
}

func TestClassifyCreated(t *testing.T) {
	cc := newTestCache(t)

	cls := Classify(submission("s1", "bob", "hello"), cc)
	require.Equal(t, models.TransitionCreated, cls.Transition)
	require.False(t, cls.HasPreEdit)
}

func TestClassifyPinnedSubmission(t *testing.T) {
	cc := newTestCache(t)

	item := submission("s1", "bob", "announcement")
	item.Stickied = true

	cls := Classify(item, cc)
	require.Equal(t, models.TransitionPinned, cls.Transition)

	// A stickied comment is not a pinned event; only submissions pin.
	comment := Item{Kind: models.KindComment, ID: "c1", Author: "bob", Body: "hi", Stickied: true}
	cls = Classify(comment, cc)
	require.Equal(t, models.TransitionCreated, cls.Transition)
}

func TestEditDiffRoundTrip(t *testing.T) {
	cc := newTestCache(t)

	cls := Classify(submission("42", "bob", "A"), cc)
	require.Equal(t, models.TransitionCreated, cls.Transition)

	second := submission("42", "bob", "B")
	second.Edited = true
	cls = Classify(second, cc)
	require.Equal(t, models.TransitionEdited, cls.Transition)
	require.True(t, cls.HasPreEdit)
	require.Equal(t, "A", cls.PreEdit.Body)

	third := submission("42", "bob", "C")
	third.Edited = true
	cls = Classify(third, cc)
	require.Equal(t, models.TransitionEdited, cls.Transition)
	require.True(t, cls.HasPreEdit)
	require.Equal(t, "A", cls.PreEdit.Body, "pre-edit snapshot is captured once, not overwritten")
}

func TestEditedOnFirstSightHasNoPreEdit(t *testing.T) {
	cc := newTestCache(t)

	item := submission("s1", "bob", "already edited")
	item.Edited = true

	cls := Classify(item, cc)
	require.Equal(t, models.TransitionEdited, cls.Transition)
	require.False(t, cls.HasPreEdit, "nothing to diff against if the item arrived edited")
}

func TestDuplicateFirstSightEditNeverFabricatesPreEdit(t *testing.T) {
	cc := newTestCache(t)

	item := submission("s9", "bob", "already edited body")
	item.Edited = true

	first := Classify(item, cc)
	require.Equal(t, models.TransitionEdited, first.Transition)
	require.False(t, first.HasPreEdit)

	// The duplicate now finds the first delivery's body in the cache. That
	// body is post-edit content; reporting it as "previous" would claim the
	// edit changed nothing.
	second := Classify(item, cc)
	require.Equal(t, models.TransitionEdited, second.Transition)
	require.False(t, second.HasPreEdit,
		"duplicate delivery must not backfill a pre-edit snapshot from post-edit content")
}

func TestReclassificationIsIdempotent(t *testing.T) {
	cc := newTestCache(t)

	Classify(submission("42", "bob", "A"), cc)

	edited := submission("42", "bob", "B")
	edited.Edited = true
	first := Classify(edited, cc)

	// Duplicate delivery of the identical item.
	dup := submission("42", "bob", "B")
	dup.Edited = true
	second := Classify(dup, cc)

	require.Equal(t, first.Transition, second.Transition)
	require.Equal(t, "A", second.PreEdit.Body,
		"duplicate delivery must not disturb the captured pre-edit snapshot")
}

func TestRedeliveredUnchangedItemIsCreatedAgain(t *testing.T) {
	cc := newTestCache(t)

	first := Classify(submission("1", "bob", "hello"), cc)
	second := Classify(submission("1", "bob", "hello"), cc)

	require.Equal(t, models.TransitionCreated, first.Transition)
	require.Equal(t, models.TransitionCreated, second.Transition,
		"unchanged redelivery re-derives the same transition")
}

func TestTopLevelFlag(t *testing.T) {
	cc := newTestCache(t)

	topLevel := Item{Kind: models.KindComment, ID: "c1", Author: "bob", Body: "hi", ParentID: "t3_s1"}
	cls := Classify(topLevel, cc)
	require.True(t, cls.TopLevel)

	nested := Item{Kind: models.KindComment, ID: "c2", Author: "bob", Body: "hi", ParentID: "t1_c1"}
	cls = Classify(nested, cc)
	require.False(t, cls.TopLevel)
}
