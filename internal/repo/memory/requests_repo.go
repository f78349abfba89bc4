package memory

import (
	"context"
	"sync"
	"time"

	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/request"
)

// RequestsRepo is a map-backed store used in tests. Create serializes the
// capacity check and the insert behind one mutex, matching the row-lock
// discipline of the SQL implementation.
type RequestsRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]request.Request
	events *EventsRepo
}

func NewRequestsRepo(events *EventsRepo) *RequestsRepo {
	return &RequestsRepo{
		nextID: 1,
		items:  make(map[int64]request.Request),
		events: events,
	}
}

func (r *RequestsRepo) Create(ctx context.Context, userID, eventID int64) (request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.events.GetByID(ctx, eventID)

	if err != nil {
		return request.Request{}, err
	}

	confirmed := 0

	for _, existing := range r.items {
		if existing.EventID == eventID {
			if existing.RequesterID == userID {
				return request.Request{}, apperr.Conflictf("request from user with id=%d for event with id=%d already exists", userID, eventID)
			}

			if existing.Status == request.StatusConfirmed {
				confirmed++
			}
		}
	}

	if err := request.ValidateCreate(userID, e, confirmed); err != nil {
		return request.Request{}, err
	}

	req := request.Request{
		ID:          r.nextID,
		RequesterID: userID,
		EventID:     eventID,
		Created:     time.Now().UTC(),
		Status:      request.DetermineStatus(e),
	}
	r.nextID++
	r.items[req.ID] = req

	return req, nil
}

func (r *RequestsRepo) ListByEvent(_ context.Context, eventID int64) ([]request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]request.Request, 0)

	for _, req := range r.items {
		if req.EventID == eventID {
			out = append(out, req)
		}
	}

	return out, nil
}

func (r *RequestsRepo) Update(_ context.Context, id int64, apply func(*request.Request) error) (request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.items[id]

	if !ok {
		return request.Request{}, apperr.NotFound("Request", id)
	}

	if err := apply(&req); err != nil {
		return request.Request{}, err
	}

	r.items[id] = req

	return req, nil
}
