package event

import (
	"time"

	"github.com/openmeet/openmeet/internal/apperr"
)

type State string

const (
	StatePending   State = "PENDING"
	StatePublished State = "PUBLISHED"
	StateCanceled  State = "CANCELED"
)

func ParseState(s string) (State, bool) {
	switch State(s) {
	case StatePending, StatePublished, StateCanceled:
		return State(s), true
	}
	return "", false
}

// Minimum lead time between "now" and the scheduled date, depending on
// whether the event is already published.
const (
	minLeadUnpublished = 2 * time.Hour
	minLeadPublished   = 1 * time.Hour
)

type Event struct {
	ID                int64
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	CategoryName      string
	InitiatorID       int64
	InitiatorName     string
	LocationID        int64
	Lat               float64
	Lon               float64
	EventDate         time.Time
	CreatedAt         time.Time
	PublishedOn       *time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	State             State

	// Derived, never stored: live count of CONFIRMED requests.
	ConfirmedRequests int
}

// ValidateEventDate enforces the lead-time rule: 2h while the event is not
// yet published, 1h at the moment of publication.
func ValidateEventDate(date time.Time, state State, now time.Time) error {
	lead := minLeadUnpublished
	moment := "current"

	if state == StatePublished {
		lead = minLeadPublished
		moment = "publishing"
	}

	if date.Before(now.Add(lead)) {
		return apperr.Conflictf("the event date must be no earlier than %d hours from the %s time",
			int(lead.Hours()), moment)
	}

	return nil
}

// Publish moves a PENDING event to PUBLISHED and stamps publishedOn.
func (e *Event) Publish(now time.Time) error {
	if e.State != StatePending {
		return apperr.Conflictf("cannot publish the event because it is not in the right state: %s", e.State)
	}

	if err := ValidateEventDate(e.EventDate, StatePublished, now); err != nil {
		return err
	}

	e.State = StatePublished
	e.PublishedOn = &now

	return nil
}

// Reject cancels any not-yet-published event.
func (e *Event) Reject() error {
	if e.State == StatePublished {
		return apperr.Conflictf("cannot reject the event because it is already published")
	}

	e.State = StateCanceled

	return nil
}

// ApplyOwnerUpdate merges an initiator's partial update. Only the recorded
// initiator may edit, and only while the event is not published. SEND_TO_REVIEW
// and CANCEL_REVIEW move the event between PENDING and CANCELED.
func (e *Event) ApplyOwnerUpdate(userID int64, patch UpdateRequest, now time.Time) error {
	if e.InitiatorID != userID {
		return apperr.Forbiddenf("only the initiator can edit the event")
	}

	if e.State == StatePublished {
		return apperr.Conflictf("cannot update a published event")
	}

	if err := e.mergeFields(patch.fields(), now); err != nil {
		return err
	}

	switch patch.StateAction {
	case "":
	case ActionSendToReview:
		e.State = StatePending
	case ActionCancelReview:
		e.State = StateCanceled
	default:
		return apperr.Invalidf("unknown state action: %s", patch.StateAction)
	}

	return nil
}

// ApplyAdminUpdate merges an administrator's partial update in any state and
// optionally publishes or rejects the event. A plain field edit never changes
// the state of a published event.
func (e *Event) ApplyAdminUpdate(patch AdminUpdateRequest, now time.Time) error {
	if err := e.mergeFields(patch.fields(), now); err != nil {
		return err
	}

	switch patch.StateAction {
	case "":
	case ActionPublishEvent:
		return e.Publish(now)
	case ActionRejectEvent:
		return e.Reject()
	default:
		return apperr.Invalidf("unknown state action: %s", patch.StateAction)
	}

	return nil
}

// mergeFields applies the provided fields only; absent (nil) fields are left
// untouched. Changing eventDate re-runs the lead-time check against the
// event's current state.
func (e *Event) mergeFields(f patchFields, now time.Time) error {
	if f.Title != nil {
		e.Title = *f.Title
	}
	if f.Annotation != nil {
		e.Annotation = *f.Annotation
	}
	if f.Description != nil {
		e.Description = *f.Description
	}
	if f.Paid != nil {
		e.Paid = *f.Paid
	}
	if f.ParticipantLimit != nil {
		e.ParticipantLimit = *f.ParticipantLimit
	}
	if f.RequestModeration != nil {
		e.RequestModeration = *f.RequestModeration
	}

	if f.EventDate != nil {
		if err := ValidateEventDate(*f.EventDate, e.State, now); err != nil {
			return err
		}
		e.EventDate = *f.EventDate
	}

	return nil
}

// Available reports whether the event can still take confirmed participants.
func (e *Event) Available() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < e.ParticipantLimit
}
