package request

import (
	"testing"

	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/event"
)

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name       string
		moderation bool
		limit      int
		want       Status
	}{
		{"moderated_with_limit", true, 10, StatusPending},
		{"no_moderation", false, 10, StatusConfirmed},
		{"no_limit", true, 0, StatusConfirmed},
		{"neither", false, 0, StatusConfirmed},
	}

	for _, tt := range tests {
		e := event.Event{RequestModeration: tt.moderation, ParticipantLimit: tt.limit}

		if got := DetermineStatus(e); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestValidateCreate(t *testing.T) {
	published := event.Event{ID: 1, InitiatorID: 5, State: event.StatePublished, ParticipantLimit: 2}

	t.Run("ok", func(t *testing.T) {
		if err := ValidateCreate(9, published, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("own_event", func(t *testing.T) {
		if err := ValidateCreate(5, published, 0); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("unpublished", func(t *testing.T) {
		e := published
		e.State = event.StatePending

		if err := ValidateCreate(9, e, 0); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("limit_reached", func(t *testing.T) {
		if err := ValidateCreate(9, published, 2); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("zero_limit_never_full", func(t *testing.T) {
		e := published
		e.ParticipantLimit = 0

		if err := ValidateCreate(9, e, 10_000); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCancel(t *testing.T) {
	t.Run("requester_cancels", func(t *testing.T) {
		r := Request{RequesterID: 3, Status: StatusPending}

		if err := r.Cancel(3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if r.Status != StatusCanceled {
			t.Fatalf("got status %s", r.Status)
		}
	})

	t.Run("cancel_is_idempotent", func(t *testing.T) {
		r := Request{RequesterID: 3, Status: StatusCanceled}

		if err := r.Cancel(3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if r.Status != StatusCanceled {
			t.Fatalf("got status %s", r.Status)
		}
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		r := Request{RequesterID: 3, Status: StatusPending}

		if err := r.Cancel(4); !apperr.IsForbidden(err) {
			t.Fatalf("expected forbidden, got %v", err)
		}

		if r.Status != StatusPending {
			t.Fatal("status changed on forbidden cancel")
		}
	})
}
