package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/domain/event"
)

type AdminEventsStore interface {
	ListAdmin(ctx context.Context, f event.AdminFilter) ([]event.Event, error)
	Update(ctx context.Context, id int64, apply func(*event.Event) error) (event.Event, error)
}

type AdminEventsHandler struct {
	events     AdminEventsStore
	categories CategoryGetter
	locations  EventLocationResolver
}

func NewAdminEventsHandler(events AdminEventsStore, categories CategoryGetter, locations EventLocationResolver) *AdminEventsHandler {
	return &AdminEventsHandler{
		events:     events,
		categories: categories,
		locations:  locations,
	}
}

func (h *AdminEventsHandler) List(ctx *gin.Context) {
	f, ok := parseAdminFilter(ctx)

	if !ok {
		return
	}

	events, err := h.events.ListAdmin(ctx.Request.Context(), f)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	out := make([]event.DtoOut, 0, len(events))

	for _, e := range events {
		out = append(out, event.ToDto(e))
	}

	ctx.JSON(http.StatusOK, out)
}

func (h *AdminEventsHandler) Patch(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "eventId")

	if !ok {
		return
	}

	var req event.AdminUpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	refs, ok := resolveEventRefs(ctx, h.categories, h.locations, req.CategoryID, req.Location)

	if !ok {
		return
	}

	now := time.Now().UTC()

	updated, err := h.events.Update(ctx.Request.Context(), eventID, func(e *event.Event) error {
		if err := e.ApplyAdminUpdate(req, now); err != nil {
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

func parseAdminFilter(ctx *gin.Context) (event.AdminFilter, bool) {
	var f event.AdminFilter

	users, ok := queryIDList(ctx, "users")
	if !ok {
		return f, false
	}
	f.Users = users

	categories, ok := queryIDList(ctx, "categories")
	if !ok {
		return f, false
	}
	f.Categories = categories

	for _, raw := range queryStringList(ctx, "states") {
		state, valid := event.ParseState(raw)

		if !valid {
			RespondBadRequest(ctx, "unknown event state: "+raw, nil)
			return f, false
		}

		f.States = append(f.States, state)
	}

	start, ok := queryTime(ctx, "rangeStart")
	if !ok {
		return f, false
	}
	f.RangeStart = start

	end, ok := queryTime(ctx, "rangeEnd")
	if !ok {
		return f, false
	}
	f.RangeEnd = end

	if start != nil && end != nil && start.After(*end) {
		RespondBadRequest(ctx, "rangeStart must not be after rangeEnd", nil)
		return f, false
	}

	from, ok := queryInt(ctx, "from", 0)
	if !ok {
		return f, false
	}

	size, ok := queryInt(ctx, "size", 10)
	if !ok {
		return f, false
	}

	f.Page = event.Pagination{From: from, Size: size}

	return f, true
}
