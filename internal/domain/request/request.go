package request

import (
	"time"

	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/event"
	"github.com/openmeet/openmeet/internal/timefmt"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCanceled  Status = "CANCELED"
)

type Request struct {
	ID          int64
	RequesterID int64
	EventID     int64
	Created     time.Time
	Status      Status
}

// DetermineStatus fixes the status of a new request at creation time: events
// without moderation or without a limit confirm immediately.
func DetermineStatus(e event.Event) Status {
	if !e.RequestModeration || e.ParticipantLimit == 0 {
		return StatusConfirmed
	}

	return StatusPending
}

// ValidateCreate rejects a request against an event the requester may not
// join: own event, unpublished event, or one at capacity. confirmedCount is
// the live count of CONFIRMED requests at decision time.
func ValidateCreate(requesterID int64, e event.Event, confirmedCount int) error {
	if e.InitiatorID == requesterID {
		return apperr.Conflictf("the initiator cannot request participation in their own event")
	}

	if e.State != event.StatePublished {
		return apperr.Conflictf("cannot participate in an unpublished event")
	}

	if e.ParticipantLimit > 0 && confirmedCount >= e.ParticipantLimit {
		return apperr.Conflictf("the participant limit of the event has been reached")
	}

	return nil
}

// Cancel is idempotent: re-canceling a CANCELED request is not an error.
func (r *Request) Cancel(userID int64) error {
	if r.RequesterID != userID {
		return apperr.Forbiddenf("only the requester can cancel the request")
	}

	r.Status = StatusCanceled

	return nil
}

type DtoOut struct {
	ID        int64            `json:"id"`
	Requester int64            `json:"requester"`
	Event     int64            `json:"event"`
	Created   timefmt.DateTime `json:"created"`
	Status    Status           `json:"status"`
}

func ToDto(r Request) DtoOut {
	return DtoOut{
		ID:        r.ID,
		Requester: r.RequesterID,
		Event:     r.EventID,
		Created:   timefmt.DateTime(r.Created),
		Status:    r.Status,
	}
}
