package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/category"
	"github.com/openmeet/openmeet/internal/domain/event"
	"github.com/openmeet/openmeet/internal/domain/location"
	"github.com/openmeet/openmeet/internal/domain/request"
)

type EventsStore interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	GetByID(ctx context.Context, id int64) (event.Event, error)
	ListByInitiator(ctx context.Context, userID int64, offset, limit int) ([]event.Event, error)
	Update(ctx context.Context, id int64, apply func(*event.Event) error) (event.Event, error)
}

type CategoryGetter interface {
	GetByID(ctx context.Context, id int64) (category.Category, error)
}

type EventLocationResolver interface {
	ResolveForEvent(ctx context.Context, ref event.LocationRef) (location.Location, error)
}

type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type EventRequestsLister interface {
	ListByEvent(ctx context.Context, eventID int64) ([]request.Request, error)
}

type PrivateEventsHandler struct {
	events     EventsStore
	categories CategoryGetter
	locations  EventLocationResolver
	users      UserChecker
	requests   EventRequestsLister
}

func NewPrivateEventsHandler(
	events EventsStore,
	categories CategoryGetter,
	locations EventLocationResolver,
	users UserChecker,
	requests EventRequestsLister,
) *PrivateEventsHandler {
	return &PrivateEventsHandler{
		events:     events,
		categories: categories,
		locations:  locations,
		users:      users,
		requests:   requests,
	}
}

func (h *PrivateEventsHandler) requireUser(ctx *gin.Context, userID int64) bool {
	exists, err := h.users.Exists(ctx.Request.Context(), userID)

	if err != nil {
		RespondInternal(ctx, "Could not verify user")
		return false
	}

	if !exists {
		RespondDomainError(ctx, apperr.NotFound("User", userID))
		return false
	}

	return true
}

func (h *PrivateEventsHandler) Create(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	var req event.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !h.requireUser(ctx, userID) {
		return
	}

	now := time.Now().UTC()

	if err := event.ValidateEventDate(req.EventDate.Time(), event.StatePending, now); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	cat, err := h.categories.GetByID(ctx.Request.Context(), req.CategoryID)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	loc, err := h.locations.ResolveForEvent(ctx.Request.Context(), req.Location)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	e := event.NewFromCreateRequest(userID, req, now)
	e.CategoryID = cat.ID
	e.CategoryName = cat.Name
	e.LocationID = loc.ID
	e.Lat = loc.Latitude
	e.Lon = loc.Longitude

	created, err := h.events.Create(ctx.Request.Context(), e)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, event.ToDto(created))
}

func (h *PrivateEventsHandler) List(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	from, ok := queryInt(ctx, "from", 0)
	if !ok {
		return
	}

	size, ok := queryInt(ctx, "size", 10)
	if !ok {
		return
	}

	if !h.requireUser(ctx, userID) {
		return
	}

	page := event.Pagination{From: from, Size: size}

	events, err := h.events.ListByInitiator(ctx.Request.Context(), userID, page.Offset(), page.Limit())

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	out := make([]event.ShortDtoOut, 0, len(events))

	for _, e := range events {
		out = append(out, event.ToShortDto(e))
	}

	ctx.JSON(http.StatusOK, out)
}

func (h *PrivateEventsHandler) Get(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	eventID, ok := pathID(ctx, "eventId")

	if !ok {
		return
	}

	e, err := h.events.GetByID(ctx.Request.Context(), eventID)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	if e.InitiatorID != userID {
		RespondForbidden(ctx, "only the initiator can view the full event")
		return
	}

	ctx.JSON(http.StatusOK, event.ToDto(e))
}

func (h *PrivateEventsHandler) Patch(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	eventID, ok := pathID(ctx, "eventId")

	if !ok {
		return
	}

	var req event.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	refs, ok := h.resolveRefs(ctx, req.CategoryID, req.Location)

	if !ok {
		return
	}

	now := time.Now().UTC()

	updated, err := h.events.Update(ctx.Request.Context(), eventID, func(e *event.Event) error {
		if err := e.ApplyOwnerUpdate(userID, req, now); err != nil {
			return err
		}

		refs.applyTo(e)

		return nil
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, event.ToDto(updated))
}

func (h *PrivateEventsHandler) ListRequests(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	eventID, ok := pathID(ctx, "eventId")

	if !ok {
		return
	}

	if !h.requireUser(ctx, userID) {
		return
	}

	e, err := h.events.GetByID(ctx.Request.Context(), eventID)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	if e.InitiatorID != userID {
		RespondForbidden(ctx, "only the initiator can view the event's requests")
		return
	}

	requests, err := h.requests.ListByEvent(ctx.Request.Context(), eventID)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	out := make([]request.DtoOut, 0, len(requests))

	for _, r := range requests {
		out = append(out, request.ToDto(r))
	}

	ctx.JSON(http.StatusOK, out)
}

// resolvedRefs carries pre-validated category and location replacements for
// a partial update; nil fields mean "keep current".
type resolvedRefs struct {
	category *category.Category
	location *location.Location
}

func (r resolvedRefs) applyTo(e *event.Event) {
	if r.category != nil {
		e.CategoryID = r.category.ID
		e.CategoryName = r.category.Name
	}

	if r.location != nil {
		e.LocationID = r.location.ID
		e.Lat = r.location.Latitude
		e.Lon = r.location.Longitude
	}
}

func (h *PrivateEventsHandler) resolveRefs(ctx *gin.Context, categoryID *int64, ref *event.LocationRef) (resolvedRefs, bool) {
	return resolveEventRefs(ctx, h.categories, h.locations, categoryID, ref)
}

func resolveEventRefs(
	ctx *gin.Context,
	categories CategoryGetter,
	locations EventLocationResolver,
	categoryID *int64,
	ref *event.LocationRef,
) (refs resolvedRefs, ok bool) {
	if categoryID != nil {
		cat, err := categories.GetByID(ctx.Request.Context(), *categoryID)

		if err != nil {
			RespondDomainError(ctx, err)
			return refs, false
		}

		refs.category = &cat
	}

	if ref != nil {
		loc, err := locations.ResolveForEvent(ctx.Request.Context(), *ref)

		if err != nil {
			RespondDomainError(ctx, err)
			return refs, false
		}

		refs.location = &loc
	}

	return refs, true
}
