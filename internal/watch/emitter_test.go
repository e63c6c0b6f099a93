package watch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacesedan/redditwatch/internal/cache"
	"github.com/spacesedan/redditwatch/internal/models"
)

func TestBuildEventCarriesPreEdit(t *testing.T) {
	item := Item{
		Kind:   models.KindComment,
		ID:     "c1",
		Entity: "golang",
		Author: "bob",
		Body:   "new text",
	}
	cls := Classification{
		Transition: models.TransitionEdited,
		TopLevel:   true,
		PreEdit:    cache.Snapshot{ID: "c1", Author: "bob", Body: "old text"},
		HasPreEdit: true,
	}

	evt := BuildEvent(models.ScopeSubreddit, item, cls)
	require.Equal(t, models.TransitionEdited, evt.Transition)
	require.Equal(t, "new text", evt.Body)
	require.Equal(t, "old text", evt.PreEditBody)
	require.Equal(t, "bob", evt.PreEditAuthor)
	require.True(t, evt.HasPreEdit)
	require.True(t, evt.TopLevel)
	require.False(t, evt.ObservedAt.IsZero())
}

func TestBuildEventWithoutPreEdit(t *testing.T) {
	evt := BuildEvent(models.ScopeUser, Item{Kind: models.KindSubmission, ID: "s1"}, Classification{
		Transition: models.TransitionCreated,
	})
	require.False(t, evt.HasPreEdit)
	require.Empty(t, evt.PreEditBody)
}

func TestEmitReportsBusFailure(t *testing.T) {
	busErr := errors.New("bus unavailable")
	bus := &fakeBus{err: busErr}
	emitter := NewEmitter(bus)

	_, err := emitter.Emit(context.Background(), models.ScopeSubreddit,
		Item{Kind: models.KindSubmission, ID: "s1"}, Classification{Transition: models.TransitionCreated})
	require.ErrorIs(t, err, busErr)
}
