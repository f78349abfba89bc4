package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/location"
	"github.com/openmeet/openmeet/internal/geo"
)

type LocationsStore interface {
	CreateUser(ctx context.Context, userID int64, req location.CreateRequest) (location.Location, error)
	CreateAdmin(ctx context.Context, req location.CreateRequest) (location.Location, error)
	GetByID(ctx context.Context, id int64) (location.Location, error)
	List(ctx context.Context, f location.Filter) ([]location.Location, error)
	ListApproved(ctx context.Context) ([]location.Location, error)
	Update(ctx context.Context, id int64, apply func(*location.Location) error) (location.Location, error)
	Delete(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, userID, id int64) error
}

type PublicLocationsHandler struct {
	repo LocationsStore
}

func NewPublicLocationsHandler(repo LocationsStore) *PublicLocationsHandler {
	return &PublicLocationsHandler{repo: repo}
}

func (h *PublicLocationsHandler) List(ctx *gin.Context) {
	locations, err := h.repo.ListApproved(ctx.Request.Context())

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	out := make([]location.DtoOut, 0, len(locations))

	for _, l := range locations {
		out = append(out, location.ToDto(l))
	}

	ctx.JSON(http.StatusOK, out)
}

type UserLocationsHandler struct {
	repo  LocationsStore
	users UserChecker
}

func NewUserLocationsHandler(repo LocationsStore, users UserChecker) *UserLocationsHandler {
	return &UserLocationsHandler{repo: repo, users: users}
}

func (h *UserLocationsHandler) Create(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	var req location.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	exists, err := h.users.Exists(ctx.Request.Context(), userID)

	if err != nil {
		RespondInternal(ctx, "Could not verify user")
		return
	}

	if !exists {
		RespondNotFound(ctx, "User not found")
		return
	}

	created, err := h.repo.CreateUser(ctx.Request.Context(), userID, req)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, location.ToFullDto(created))
}

func (h *UserLocationsHandler) List(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	f, ok := parseLocationsFilter(ctx)

	if !ok {
		return
	}

	// Own locations only, whatever the query says.
	f.Creators = []int64{userID}

	locations, err := h.repo.List(ctx.Request.Context(), f)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	out := make([]location.FullDtoOut, 0, len(locations))

	for _, l := range locations {
		out = append(out, location.ToFullDto(l))
	}

	ctx.JSON(http.StatusOK, out)
}

func (h *UserLocationsHandler) Get(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	id, ok := pathID(ctx, "locationId")

	if !ok {
		return
	}

	l, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	if l.CreatorID == nil || *l.CreatorID != userID {
		RespondForbidden(ctx, "only the creator can view this location")
		return
	}

	ctx.JSON(http.StatusOK, location.ToFullDto(l))
}

func (h *UserLocationsHandler) Patch(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	id, ok := pathID(ctx, "locationId")

	if !ok {
		return
	}

	var req location.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.repo.Update(ctx.Request.Context(), id, func(l *location.Location) error {
		if l.CreatorID == nil || *l.CreatorID != userID {
			return apperr.Forbiddenf("user with id=%d is not the creator of location with id=%d", userID, id)
		}

		if l.State != location.StatePending {
			return apperr.Conflictf("location with id=%d is in state %s and can only be changed by an admin", id, l.State)
		}

		l.Merge(req)

		return nil
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, location.ToFullDto(updated))
}

func (h *UserLocationsHandler) Delete(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	id, ok := pathID(ctx, "locationId")

	if !ok {
		return
	}

	if err := h.repo.DeleteUser(ctx.Request.Context(), userID, id); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

type AdminLocationsHandler struct {
	repo LocationsStore
}

func NewAdminLocationsHandler(repo LocationsStore) *AdminLocationsHandler {
	return &AdminLocationsHandler{repo: repo}
}

func (h *AdminLocationsHandler) Create(ctx *gin.Context) {
	var req location.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.repo.CreateAdmin(ctx.Request.Context(), req)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, location.ToFullDto(created))
}

func (h *AdminLocationsHandler) List(ctx *gin.Context) {
	f, ok := parseLocationsFilter(ctx)

	if !ok {
		return
	}

	creators, ok := queryIDList(ctx, "users")
	if !ok {
		return
	}
	f.Creators = creators

	locations, err := h.repo.List(ctx.Request.Context(), f)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	out := make([]location.FullDtoOut, 0, len(locations))

	for _, l := range locations {
		out = append(out, location.ToFullDto(l))
	}

	ctx.JSON(http.StatusOK, out)
}

func (h *AdminLocationsHandler) Patch(ctx *gin.Context) {
	id, ok := pathID(ctx, "locationId")

	if !ok {
		return
	}

	var req location.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.repo.Update(ctx.Request.Context(), id, func(l *location.Location) error {
		l.Merge(req)

		if req.State != "" {
			state, _ := location.ParseState(req.State)
			return l.ChangeState(state)
		}

		return nil
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, location.ToFullDto(updated))
}

func (h *AdminLocationsHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "locationId")

	if !ok {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AdminLocationsHandler) Distance(ctx *gin.Context) {
	id1, ok := pathID(ctx, "id1")

	if !ok {
		return
	}

	id2, ok := pathID(ctx, "id2")

	if !ok {
		return
	}

	if id1 == id2 {
		ctx.JSON(http.StatusOK, gin.H{"distanceMeters": 0.0})
		return
	}

	a, err := h.repo.GetByID(ctx.Request.Context(), id1)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	b, err := h.repo.GetByID(ctx.Request.Context(), id2)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"distanceMeters": geo.DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude),
	})
}

func parseLocationsFilter(ctx *gin.Context) (location.Filter, bool) {
	var f location.Filter

	if text := ctx.Query("text"); text != "" {
		f.Text = &text
	}

	if raw := ctx.Query("state"); raw != "" {
		state, valid := location.ParseState(raw)

		if !valid {
			RespondBadRequest(ctx, "unknown location state: "+raw, nil)
			return f, false
		}

		f.State = &state
	}

	lat, ok := queryFloat(ctx, "lat")
	if !ok {
		return f, false
	}
	f.Lat = lat

	lon, ok := queryFloat(ctx, "lon")
	if !ok {
		return f, false
	}
	f.Lon = lon

	if (lat == nil) != (lon == nil) {
		RespondBadRequest(ctx, "lat and lon must be supplied together", nil)
		return f, false
	}

	radius, ok := queryFloat(ctx, "radius")
	if !ok {
		return f, false
	}

	if radius != nil {
		f.Radius = *radius
	}

	minEvents, ok := queryInt(ctx, "minEvents", -1)
	if !ok {
		return f, false
	}

	if minEvents >= 0 {
		f.MinEvents = &minEvents
	}

	maxEvents, ok := queryInt(ctx, "maxEvents", -1)
	if !ok {
		return f, false
	}

	if maxEvents >= 0 {
		f.MaxEvents = &maxEvents
	}

	offset, ok := queryInt(ctx, "from", 0)
	if !ok {
		return f, false
	}
	f.Offset = offset

	limit, ok := queryInt(ctx, "size", 10)
	if !ok {
		return f, false
	}

	if limit == 0 {
		RespondBadRequest(ctx, "size must be a positive integer", nil)
		return f, false
	}

	f.Limit = limit

	return f, true
}
