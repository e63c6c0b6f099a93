package watch

import (
	"context"
	"time"

	"github.com/spacesedan/redditwatch/internal/models"
)

// EventBus is the downstream sink events are handed to. Back-pressure and
// retry policy belong to the bus, not to the emitter.
type EventBus interface {
	Publish(ctx context.Context, event models.Event) error
}

// Emitter builds immutable events from classified items and hands them off.
type Emitter struct {
	bus EventBus
}

func NewEmitter(bus EventBus) *Emitter {
	return &Emitter{bus: bus}
}

// BuildEvent assembles the event for one classified observation. The event is
// complete on return; nothing mutates it afterwards.
func BuildEvent(scope models.Scope, item Item, cls Classification) models.Event {
	evt := models.Event{
		Scope:      scope,
		Kind:       item.Kind,
		Transition: cls.Transition,
		ItemID:     item.ID,
		Entity:     item.Entity,
		Author:     item.Author,
		Title:      item.Title,
		URL:        item.URL,
		Body:       item.Body,
		ParentID:   item.ParentID,
		TopLevel:   cls.TopLevel,
		CreatedUTC: item.CreatedUTC,
		ObservedAt: time.Now().UTC(),
	}
	if cls.HasPreEdit {
		evt.PreEditBody = cls.PreEdit.Body
		evt.PreEditAuthor = cls.PreEdit.Author
		evt.HasPreEdit = true
	}
	return evt
}

// Emit publishes the event for one classified item. A bus failure is returned
// to the caller; the event is not requeued here.
func (e *Emitter) Emit(ctx context.Context, scope models.Scope, item Item, cls Classification) (models.Event, error) {
	evt := BuildEvent(scope, item, cls)
	if err := e.bus.Publish(ctx, evt); err != nil {
		return evt, err
	}
	return evt, nil
}
