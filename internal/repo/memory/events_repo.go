package memory

import (
	"context"
	"sync"

	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/event"
)

// EventsRepo is a map-backed store used in tests.
type EventsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]event.Event
}

func NewEventsRepo() *EventsRepo {
	return &EventsRepo{
		nextID: 1,
		items:  make(map[int64]event.Event),
	}
}

func (r *EventsRepo) Create(_ context.Context, e event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	r.items[e.ID] = e

	return e, nil
}

func (r *EventsRepo) GetByID(_ context.Context, id int64) (event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]

	if !ok {
		return event.Event{}, apperr.NotFound("Event", id)
	}

	return e, nil
}

func (r *EventsRepo) Update(_ context.Context, id int64, apply func(*event.Event) error) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]

	if !ok {
		return event.Event{}, apperr.NotFound("Event", id)
	}

	if err := apply(&e); err != nil {
		return event.Event{}, err
	}

	r.items[id] = e

	return e, nil
}
