package event

import (
	"time"

	"github.com/openmeet/openmeet/internal/timefmt"
)

// State actions accepted in partial updates.
const (
	ActionSendToReview = "SEND_TO_REVIEW"
	ActionCancelReview = "CANCEL_REVIEW"
	ActionPublishEvent = "PUBLISH_EVENT"
	ActionRejectEvent  = "REJECT_EVENT"
)

// LocationRef points at an existing approved location by id, or carries raw
// coordinates to be resolved into an auto-generated one.
type LocationRef struct {
	ID  *int64   `json:"id" binding:"omitempty,min=1"`
	Lat *float64 `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lon *float64 `json:"lon" binding:"omitempty,gte=-180,lte=180"`
}

type CreateRequest struct {
	Title             string           `json:"title" binding:"required,min=3,max=120"`
	Annotation        string           `json:"annotation" binding:"required,min=20,max=2000"`
	Description       string           `json:"description" binding:"required,min=20,max=7000"`
	CategoryID        int64            `json:"category" binding:"required,min=1"`
	EventDate         timefmt.DateTime `json:"eventDate" binding:"required"`
	Location          LocationRef      `json:"location" binding:"required"`
	Paid              bool             `json:"paid"`
	ParticipantLimit  int              `json:"participantLimit" binding:"omitempty,min=0"`
	RequestModeration *bool            `json:"requestModeration"`
}

// NewFromCreateRequest builds a PENDING event owned by userID. Category and
// location references are resolved by the caller before saving.
func NewFromCreateRequest(userID int64, req CreateRequest, now time.Time) Event {
	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}

	return Event{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		InitiatorID:       userID,
		EventDate:         req.EventDate.Time(),
		CreatedAt:         now,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
		State:             StatePending,
	}
}

type UpdateRequest struct {
	Title             *string           `json:"title" binding:"omitempty,min=3,max=120"`
	Annotation        *string           `json:"annotation" binding:"omitempty,min=20,max=2000"`
	Description       *string           `json:"description" binding:"omitempty,min=20,max=7000"`
	CategoryID        *int64            `json:"category" binding:"omitempty,min=1"`
	EventDate         *timefmt.DateTime `json:"eventDate"`
	Location          *LocationRef      `json:"location"`
	Paid              *bool             `json:"paid"`
	ParticipantLimit  *int              `json:"participantLimit" binding:"omitempty,min=0"`
	RequestModeration *bool             `json:"requestModeration"`
	StateAction       string            `json:"stateAction" binding:"omitempty,oneof=SEND_TO_REVIEW CANCEL_REVIEW"`
}

type AdminUpdateRequest struct {
	Title             *string           `json:"title" binding:"omitempty,min=3,max=120"`
	Annotation        *string           `json:"annotation" binding:"omitempty,min=20,max=2000"`
	Description       *string           `json:"description" binding:"omitempty,min=20,max=7000"`
	CategoryID        *int64            `json:"category" binding:"omitempty,min=1"`
	EventDate         *timefmt.DateTime `json:"eventDate"`
	Location          *LocationRef      `json:"location"`
	Paid              *bool             `json:"paid"`
	ParticipantLimit  *int              `json:"participantLimit" binding:"omitempty,min=0"`
	RequestModeration *bool             `json:"requestModeration"`
	StateAction       string            `json:"stateAction" binding:"omitempty,oneof=PUBLISH_EVENT REJECT_EVENT"`
}

// patchFields is the common merge payload of both update DTOs.
type patchFields struct {
	Title             *string
	Annotation        *string
	Description       *string
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

func (r UpdateRequest) fields() patchFields {
	return patchFields{
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		EventDate:         dateOrNil(r.EventDate),
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
	}
}

func (r AdminUpdateRequest) fields() patchFields {
	return patchFields{
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		EventDate:         dateOrNil(r.EventDate),
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
	}
}

func dateOrNil(d *timefmt.DateTime) *time.Time {
	if d == nil {
		return nil
	}

	t := d.Time()
	return &t
}

type CategoryOut struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type InitiatorOut struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LocationOut struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type DtoOut struct {
	ID                int64             `json:"id"`
	Title             string            `json:"title"`
	Annotation        string            `json:"annotation"`
	Description       string            `json:"description"`
	Category          CategoryOut       `json:"category"`
	Initiator         InitiatorOut      `json:"initiator"`
	Location          LocationOut       `json:"location"`
	EventDate         timefmt.DateTime  `json:"eventDate"`
	CreatedOn         timefmt.DateTime  `json:"createdOn"`
	PublishedOn       *timefmt.DateTime `json:"publishedOn,omitempty"`
	Paid              bool              `json:"paid"`
	ParticipantLimit  int               `json:"participantLimit"`
	RequestModeration bool              `json:"requestModeration"`
	State             State             `json:"state"`
	ConfirmedRequests int               `json:"confirmedRequests"`
	Views             int               `json:"views"`
}

type ShortDtoOut struct {
	ID                int64            `json:"id"`
	Title             string           `json:"title"`
	Annotation        string           `json:"annotation"`
	Category          CategoryOut      `json:"category"`
	Initiator         InitiatorOut     `json:"initiator"`
	EventDate         timefmt.DateTime `json:"eventDate"`
	Paid              bool             `json:"paid"`
	ConfirmedRequests int              `json:"confirmedRequests"`
	Views             int              `json:"views"`
}

func ToDto(e Event) DtoOut {
	out := DtoOut{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		Category:          CategoryOut{ID: e.CategoryID, Name: e.CategoryName},
		Initiator:         InitiatorOut{ID: e.InitiatorID, Name: e.InitiatorName},
		Location:          LocationOut{ID: e.LocationID, Lat: e.Lat, Lon: e.Lon},
		EventDate:         timefmt.DateTime(e.EventDate),
		CreatedOn:         timefmt.DateTime(e.CreatedAt),
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             e.State,
		ConfirmedRequests: e.ConfirmedRequests,
	}

	if e.PublishedOn != nil {
		p := timefmt.DateTime(*e.PublishedOn)
		out.PublishedOn = &p
	}

	return out
}

func ToShortDto(e Event) ShortDtoOut {
	return ShortDtoOut{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Category:          CategoryOut{ID: e.CategoryID, Name: e.CategoryName},
		Initiator:         InitiatorOut{ID: e.InitiatorID, Name: e.InitiatorName},
		EventDate:         timefmt.DateTime(e.EventDate),
		Paid:              e.Paid,
		ConfirmedRequests: e.ConfirmedRequests,
	}
}
