package event

import (
	"testing"
	"time"

	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/timefmt"
)

func TestValidateEventDate(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    time.Time
		state   State
		wantErr bool
	}{
		{"pending_far_enough", now.Add(3 * time.Hour), StatePending, false},
		{"pending_exactly_two_hours", now.Add(2 * time.Hour), StatePending, false},
		{"pending_too_soon", now.Add(90 * time.Minute), StatePending, true},
		{"published_one_hour_ok", now.Add(61 * time.Minute), StatePublished, false},
		{"published_too_soon", now.Add(30 * time.Minute), StatePublished, true},
		{"past_date", now.Add(-time.Hour), StatePending, true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEventDate(tt.date, tt.state, now)

			if (err != nil) != tt.wantErr {
				t.Fatalf("got err=%v, wantErr=%v", err, tt.wantErr)
			}

			if err != nil && !apperr.IsConflict(err) {
				t.Fatalf("expected a conflict, got %v", err)
			}
		})
	}
}

func TestPublish(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending_publishes_and_stamps", func(t *testing.T) {
		e := Event{State: StatePending, EventDate: now.Add(2 * time.Hour)}

		if err := e.Publish(now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.State != StatePublished {
			t.Fatalf("got state %s", e.State)
		}

		if e.PublishedOn == nil || !e.PublishedOn.Equal(now) {
			t.Fatalf("publishedOn not stamped: %v", e.PublishedOn)
		}
	})

	t.Run("canceled_cannot_publish", func(t *testing.T) {
		e := Event{State: StateCanceled, EventDate: now.Add(24 * time.Hour)}

		if err := e.Publish(now); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}

		if e.PublishedOn != nil {
			t.Fatal("publishedOn must stay nil on failed publish")
		}
	})

	t.Run("published_cannot_publish_again", func(t *testing.T) {
		e := Event{State: StatePublished, EventDate: now.Add(24 * time.Hour)}

		if err := e.Publish(now); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("date_too_close_at_publication", func(t *testing.T) {
		e := Event{State: StatePending, EventDate: now.Add(30 * time.Minute)}

		if err := e.Publish(now); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}

		if e.State != StatePending {
			t.Fatalf("state must not change on failed publish, got %s", e.State)
		}
	})
}

func TestReject(t *testing.T) {
	t.Run("pending_rejects", func(t *testing.T) {
		e := Event{State: StatePending}

		if err := e.Reject(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.State != StateCanceled {
			t.Fatalf("got state %s", e.State)
		}
	})

	t.Run("published_cannot_reject", func(t *testing.T) {
		e := Event{State: StatePublished}

		if err := e.Reject(); !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}

func TestApplyOwnerUpdate(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	base := func() Event {
		return Event{
			InitiatorID:      7,
			State:            StateCanceled,
			Title:            "Old title",
			Annotation:       "Old annotation text, long enough to be valid",
			Paid:             false,
			ParticipantLimit: 10,
			EventDate:        now.Add(24 * time.Hour),
		}
	}

	t.Run("wrong_user_forbidden", func(t *testing.T) {
		e := base()

		err := e.ApplyOwnerUpdate(8, UpdateRequest{}, now)

		if !apperr.IsForbidden(err) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("published_conflict", func(t *testing.T) {
		e := base()
		e.State = StatePublished

		err := e.ApplyOwnerUpdate(7, UpdateRequest{}, now)

		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("partial_update_leaves_other_fields", func(t *testing.T) {
		e := base()
		title := "New title"
		paid := true

		err := e.ApplyOwnerUpdate(7, UpdateRequest{Title: &title, Paid: &paid}, now)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.Title != "New title" || !e.Paid {
			t.Fatalf("patch not applied: %+v", e)
		}

		if e.ParticipantLimit != 10 || e.Annotation != "Old annotation text, long enough to be valid" {
			t.Fatalf("untouched fields changed: %+v", e)
		}
	})

	t.Run("send_to_review", func(t *testing.T) {
		e := base()

		if err := e.ApplyOwnerUpdate(7, UpdateRequest{StateAction: ActionSendToReview}, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.State != StatePending {
			t.Fatalf("got state %s", e.State)
		}
	})

	t.Run("cancel_review", func(t *testing.T) {
		e := base()
		e.State = StatePending

		if err := e.ApplyOwnerUpdate(7, UpdateRequest{StateAction: ActionCancelReview}, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.State != StateCanceled {
			t.Fatalf("got state %s", e.State)
		}
	})

	t.Run("new_date_revalidated", func(t *testing.T) {
		e := base()
		tooSoon := now.Add(time.Hour)

		err := e.ApplyOwnerUpdate(7, UpdateRequest{EventDate: dateTimePtr(tooSoon)}, now)

		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}

		if !e.EventDate.Equal(now.Add(24 * time.Hour)) {
			t.Fatal("eventDate changed despite failed validation")
		}
	})
}

func TestApplyAdminUpdate(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("publish_action", func(t *testing.T) {
		e := Event{State: StatePending, EventDate: now.Add(3 * time.Hour)}

		err := e.ApplyAdminUpdate(AdminUpdateRequest{StateAction: ActionPublishEvent}, now)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.State != StatePublished || e.PublishedOn == nil {
			t.Fatalf("publish not applied: %+v", e)
		}
	})

	t.Run("reject_action_on_published", func(t *testing.T) {
		e := Event{State: StatePublished, EventDate: now.Add(3 * time.Hour)}

		err := e.ApplyAdminUpdate(AdminUpdateRequest{StateAction: ActionRejectEvent}, now)

		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("plain_edit_keeps_state", func(t *testing.T) {
		e := Event{State: StatePublished, EventDate: now.Add(3 * time.Hour)}
		title := "Edited"

		err := e.ApplyAdminUpdate(AdminUpdateRequest{Title: &title}, now)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if e.State != StatePublished || e.Title != "Edited" {
			t.Fatalf("edit went wrong: %+v", e)
		}
	})
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		confirmed int
		want      bool
	}{
		{"no_limit", 0, 100, true},
		{"below_limit", 10, 9, true},
		{"at_limit", 10, 10, false},
	}

	for _, tt := range tests {
		e := Event{ParticipantLimit: tt.limit, ConfirmedRequests: tt.confirmed}

		if e.Available() != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, e.Available(), tt.want)
		}
	}
}

func dateTimePtr(t time.Time) *timefmt.DateTime {
	d := timefmt.DateTime(t)
	return &d
}
