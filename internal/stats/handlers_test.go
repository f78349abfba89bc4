package stats_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRecorder struct {
	insertFn func(ctx context.Context, h stats.Hit) error
	countsFn func(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]stats.Line, error)
}

func (f *fakeRecorder) Insert(ctx context.Context, h stats.Hit) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, h)
	}
	return nil
}

func (f *fakeRecorder) Counts(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]stats.Line, error) {
	if f.countsFn != nil {
		return f.countsFn(ctx, start, end, uris, unique)
	}
	return nil, nil
}

func setupRouter(repo *fakeRecorder) *gin.Engine {
	h := stats.NewHandler(repo)

	r := gin.New()
	r.POST("/hit", h.Hit)
	r.GET("/stats", h.Stats)

	return r
}

func TestHitEndpoint(t *testing.T) {
	var recorded stats.Hit

	repo := &fakeRecorder{insertFn: func(_ context.Context, h stats.Hit) error {
		recorded = h
		return nil
	}}

	r := setupRouter(repo)

	body := `{"service": "openmeet-api", "uri": "/events/3", "ip": "192.0.2.7", "timestamp": "2026-08-30 12:00:00"}`

	req := httptest.NewRequest(http.MethodPost, "/hit", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if recorded.Service != "openmeet-api" || recorded.URI != "/events/3" || recorded.IP != "192.0.2.7" {
		t.Errorf("recorded unexpected hit: %+v", recorded)
	}
}

func TestHitEndpointRejectsIncompleteBody(t *testing.T) {
	r := setupRouter(&fakeRecorder{})

	req := httptest.NewRequest(http.MethodPost, "/hit", bytes.NewBufferString(`{"service": "openmeet-api"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		query          url.Values
		wantStatusCode int
		wantUnique     bool
		wantURIs       []string
	}{
		{
			name: "success",
			query: url.Values{
				"start":  {"2026-01-01 00:00:00"},
				"end":    {"2026-12-31 23:59:59"},
				"uris":   {"/events/1,/events/2"},
				"unique": {"true"},
			},
			wantStatusCode: http.StatusOK,
			wantUnique:     true,
			wantURIs:       []string{"/events/1", "/events/2"},
		},
		{
			name: "missing_start",
			query: url.Values{
				"end": {"2026-12-31 23:59:59"},
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "bad_start_format",
			query: url.Values{
				"start": {"2026-01-01T00:00:00Z"},
				"end":   {"2026-12-31 23:59:59"},
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "start_after_end",
			query: url.Values{
				"start": {"2026-12-31 23:59:59"},
				"end":   {"2026-01-01 00:00:00"},
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "bad_unique",
			query: url.Values{
				"start":  {"2026-01-01 00:00:00"},
				"end":    {"2026-12-31 23:59:59"},
				"unique": {"maybe"},
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var gotUnique bool
			var gotURIs []string

			repo := &fakeRecorder{
				countsFn: func(_ context.Context, _, _ time.Time, uris []string, unique bool) ([]stats.Line, error) {
					gotUnique = unique
					gotURIs = uris

					return []stats.Line{{Service: "openmeet-api", URI: "/events/1", Hits: 5}}, nil
				},
			}

			r := setupRouter(repo)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats?"+tt.query.Encode(), nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			if gotUnique != tt.wantUnique {
				t.Errorf("got unique=%t, want %t", gotUnique, tt.wantUnique)
			}

			if len(gotURIs) != len(tt.wantURIs) {
				t.Fatalf("got uris %v, want %v", gotURIs, tt.wantURIs)
			}

			for i := range gotURIs {
				if gotURIs[i] != tt.wantURIs[i] {
					t.Errorf("got uris %v, want %v", gotURIs, tt.wantURIs)
				}
			}

			var lines []stats.Line

			if err := json.Unmarshal(w.Body.Bytes(), &lines); err != nil {
				t.Fatalf("could not decode response: %v", err)
			}

			if len(lines) != 1 || lines[0].Hits != 5 {
				t.Errorf("got lines %+v", lines)
			}
		})
	}
}
