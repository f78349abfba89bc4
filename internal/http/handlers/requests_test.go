package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/request"
	"github.com/openmeet/openmeet/internal/http/handlers"
)

type fakeRequestsRepo struct {
	createFn func(ctx context.Context, userID, eventID int64) (request.Request, error)
	listFn   func(ctx context.Context, userID int64) ([]request.Request, error)
	updateFn func(ctx context.Context, id int64, apply func(*request.Request) error) (request.Request, error)
}

func (f *fakeRequestsRepo) Create(ctx context.Context, userID, eventID int64) (request.Request, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, eventID)
	}
	return request.Request{}, nil
}

func (f *fakeRequestsRepo) ListByRequester(ctx context.Context, userID int64) ([]request.Request, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeRequestsRepo) Update(ctx context.Context, id int64, apply func(*request.Request) error) (request.Request, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, apply)
	}
	return request.Request{}, nil
}

func TestCreateRequestHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeRequestsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/users/9/requests?eventId=4",
			repoSetup: func(f *fakeRequestsRepo) {
				f.createFn = func(_ context.Context, userID, eventID int64) (request.Request, error) {
					if userID != 9 || eventID != 4 {
						t.Errorf("wrong ids: user=%d event=%d", userID, eventID)
					}

					return request.Request{
						ID:          1,
						RequesterID: userID,
						EventID:     eventID,
						Created:     time.Now().UTC(),
						Status:      request.StatusConfirmed,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_event_id",
			url:            "/users/9/requests",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_conflict",
			url:  "/users/9/requests?eventId=4",
			repoSetup: func(f *fakeRequestsRepo) {
				f.createFn = func(_ context.Context, _, _ int64) (request.Request, error) {
					return request.Request{}, apperr.Conflictf("request already exists")
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "unknown_user",
			url:  "/users/9/requests?eventId=4",
			repoSetup: func(f *fakeRequestsRepo) {
				f.createFn = func(_ context.Context, userID, _ int64) (request.Request, error) {
					return request.Request{}, apperr.NotFound("User", userID)
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRequestsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(repo)
			}

			h := handlers.NewRequestsHandler(repo)
			r := setupRouter(http.MethodPost, "/users/:userId/requests", h.Create)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.url, nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCancelRequestHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetup      func(*fakeRequestsRepo)
		wantStatusCode int
		wantStatus     request.Status
	}{
		{
			name: "success",
			repoSetup: func(f *fakeRequestsRepo) {
				f.updateFn = func(_ context.Context, id int64, apply func(*request.Request) error) (request.Request, error) {
					r := request.Request{ID: id, RequesterID: 9, Status: request.StatusPending}

					if err := apply(&r); err != nil {
						return request.Request{}, err
					}

					return r, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     request.StatusCanceled,
		},
		{
			name: "foreign_request_forbidden",
			repoSetup: func(f *fakeRequestsRepo) {
				f.updateFn = func(_ context.Context, id int64, apply func(*request.Request) error) (request.Request, error) {
					r := request.Request{ID: id, RequesterID: 777, Status: request.StatusPending}

					if err := apply(&r); err != nil {
						return request.Request{}, err
					}

					return r, nil
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "missing_request",
			repoSetup: func(f *fakeRequestsRepo) {
				f.updateFn = func(_ context.Context, id int64, _ func(*request.Request) error) (request.Request, error) {
					return request.Request{}, apperr.NotFound("Request", id)
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRequestsRepo{}
			tt.repoSetup(repo)

			h := handlers.NewRequestsHandler(repo)
			r := setupRouter(http.MethodPatch, "/users/:userId/requests/:requestId/cancel", h.Cancel)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/users/9/requests/3/cancel", nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var out request.DtoOut

			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("bad body: %v", err)
			}

			if out.Status != tt.wantStatus {
				t.Fatalf("got status %s, want %s", out.Status, tt.wantStatus)
			}
		})
	}
}
