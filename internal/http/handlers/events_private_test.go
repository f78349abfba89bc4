package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/category"
	"github.com/openmeet/openmeet/internal/domain/event"
	"github.com/openmeet/openmeet/internal/domain/location"
	"github.com/openmeet/openmeet/internal/domain/request"
	"github.com/openmeet/openmeet/internal/http/handlers"
	"github.com/openmeet/openmeet/internal/timefmt"
)

type fakeEventsStore struct {
	createFn func(ctx context.Context, e event.Event) (event.Event, error)
	getFn    func(ctx context.Context, id int64) (event.Event, error)
	listFn   func(ctx context.Context, userID int64, offset, limit int) ([]event.Event, error)
	updateFn func(ctx context.Context, id int64, apply func(*event.Event) error) (event.Event, error)
}

func (f *fakeEventsStore) Create(ctx context.Context, e event.Event) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	e.ID = 1
	return e, nil
}

func (f *fakeEventsStore) GetByID(ctx context.Context, id int64) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return event.Event{ID: id}, nil
}

func (f *fakeEventsStore) ListByInitiator(ctx context.Context, userID int64, offset, limit int) ([]event.Event, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, offset, limit)
	}
	return nil, nil
}

func (f *fakeEventsStore) Update(ctx context.Context, id int64, apply func(*event.Event) error) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, apply)
	}
	return event.Event{}, nil
}

func (f *fakeEventsStore) ListAdmin(ctx context.Context, _ event.AdminFilter) ([]event.Event, error) {
	return nil, nil
}

type fakeCategories struct {
	getFn func(ctx context.Context, id int64) (category.Category, error)
}

func (f *fakeCategories) GetByID(ctx context.Context, id int64) (category.Category, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return category.Category{ID: id, Name: "concerts"}, nil
}

type fakeLocations struct {
	resolveFn func(ctx context.Context, ref event.LocationRef) (location.Location, error)
}

func (f *fakeLocations) ResolveForEvent(ctx context.Context, ref event.LocationRef) (location.Location, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, ref)
	}
	return location.Location{ID: 3, Latitude: 55.75, Longitude: 37.62, State: location.StateApproved}, nil
}

type fakeUsers struct {
	existsFn func(ctx context.Context, id int64) (bool, error)
}

func (f *fakeUsers) Exists(ctx context.Context, id int64) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, id)
	}
	return true, nil
}

type fakeEventRequests struct {
	listFn func(ctx context.Context, eventID int64) ([]request.Request, error)
}

func (f *fakeEventRequests) ListByEvent(ctx context.Context, eventID int64) ([]request.Request, error) {
	if f.listFn != nil {
		return f.listFn(ctx, eventID)
	}
	return nil, nil
}

func validCreateBody(date time.Time) string {
	return fmt.Sprintf(`{
		"title": "Open air jazz night",
		"annotation": "An evening of live jazz under the open sky.",
		"description": "Three bands, food trucks and a riverside stage. Bring a blanket.",
		"category": 2,
		"eventDate": %q,
		"location": {"lat": 55.75, "lon": 37.62},
		"paid": true,
		"participantLimit": 100
	}`, timefmt.Format(date))
}

func TestCreatePrivateEvent(t *testing.T) {
	future := time.Now().UTC().Add(48 * time.Hour)

	tests := []struct {
		name           string
		body           string
		users          *fakeUsers
		categories     *fakeCategories
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           validCreateBody(future),
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "date_too_soon",
			body:           validCreateBody(time.Now().UTC().Add(30 * time.Minute)),
			wantStatusCode: http.StatusConflict,
		},
		{
			name:           "short_annotation",
			body:           `{"title": "Jazz", "annotation": "short", "description": "also way too short"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown_user",
			body: validCreateBody(future),
			users: &fakeUsers{existsFn: func(_ context.Context, _ int64) (bool, error) {
				return false, nil
			}},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "unknown_category",
			body: validCreateBody(future),
			categories: &fakeCategories{getFn: func(_ context.Context, id int64) (category.Category, error) {
				return category.Category{}, apperr.NotFound("Category", id)
			}},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			users := tt.users
			if users == nil {
				users = &fakeUsers{}
			}

			categories := tt.categories
			if categories == nil {
				categories = &fakeCategories{}
			}

			h := handlers.NewPrivateEventsHandler(
				&fakeEventsStore{}, categories, &fakeLocations{}, users, &fakeEventRequests{})

			r := setupRouter(http.MethodPost, "/users/:userId/events", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/users/9/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetOwnEvent(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(_ context.Context, id int64) (event.Event, error) {
			return event.Event{ID: id, InitiatorID: 9, State: event.StatePending}, nil
		},
	}

	h := handlers.NewPrivateEventsHandler(store, &fakeCategories{}, &fakeLocations{}, &fakeUsers{}, &fakeEventRequests{})
	r := setupRouter(http.MethodGet, "/users/:userId/events/:eventId", h.Get)

	t.Run("initiator_sees_any_state", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/9/events/4", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/8/events/4", nil))

		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})
}

func TestPatchOwnEvent(t *testing.T) {
	update := func(current event.Event) *fakeEventsStore {
		return &fakeEventsStore{
			updateFn: func(_ context.Context, id int64, apply func(*event.Event) error) (event.Event, error) {
				e := current
				e.ID = id

				if err := apply(&e); err != nil {
					return event.Event{}, err
				}

				return e, nil
			},
		}
	}

	pending := event.Event{InitiatorID: 9, State: event.StatePending, EventDate: time.Now().Add(72 * time.Hour)}
	published := event.Event{InitiatorID: 9, State: event.StatePublished, EventDate: time.Now().Add(72 * time.Hour)}

	tests := []struct {
		name           string
		current        event.Event
		url            string
		body           string
		wantStatusCode int
	}{
		{
			name:           "cancel_review",
			current:        pending,
			url:            "/users/9/events/4",
			body:           `{"stateAction": "CANCEL_REVIEW"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "published_conflict",
			current:        published,
			url:            "/users/9/events/4",
			body:           `{"title": "New title"}`,
			wantStatusCode: http.StatusConflict,
		},
		{
			name:           "stranger_forbidden",
			current:        pending,
			url:            "/users/8/events/4",
			body:           `{"title": "New title"}`,
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin_action_rejected_by_binding",
			current:        pending,
			url:            "/users/9/events/4",
			body:           `{"stateAction": "PUBLISH_EVENT"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewPrivateEventsHandler(
				update(tt.current), &fakeCategories{}, &fakeLocations{}, &fakeUsers{}, &fakeEventRequests{})

			r := setupRouter(http.MethodPatch, "/users/:userId/events/:eventId", h.Patch)

			req := httptest.NewRequest(http.MethodPatch, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListEventRequestsOwnership(t *testing.T) {
	store := &fakeEventsStore{
		getFn: func(_ context.Context, id int64) (event.Event, error) {
			return event.Event{ID: id, InitiatorID: 9}, nil
		},
	}

	requests := &fakeEventRequests{
		listFn: func(_ context.Context, eventID int64) ([]request.Request, error) {
			return []request.Request{{ID: 1, EventID: eventID, Status: request.StatusPending}}, nil
		},
	}

	knownUsers := &fakeUsers{existsFn: func(_ context.Context, id int64) (bool, error) {
		return id == 9 || id == 8, nil
	}}

	h := handlers.NewPrivateEventsHandler(store, &fakeCategories{}, &fakeLocations{}, knownUsers, requests)
	r := setupRouter(http.MethodGet, "/users/:userId/events/:eventId/requests", h.ListRequests)

	t.Run("initiator_lists", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/9/events/4/requests", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/8/events/4/requests", nil))

		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown_caller_not_found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/777/events/4/requests", nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})
}
