package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/domain/request"
)

type RequestsStore interface {
	Create(ctx context.Context, userID, eventID int64) (request.Request, error)
	ListByRequester(ctx context.Context, userID int64) ([]request.Request, error)
	Update(ctx context.Context, id int64, apply func(*request.Request) error) (request.Request, error)
}

type RequestsHandler struct {
	repo RequestsStore
}

func NewRequestsHandler(repo RequestsStore) *RequestsHandler {
	return &RequestsHandler{repo: repo}
}

func (h *RequestsHandler) Create(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	eventID, ok := queryInt64(ctx, "eventId")

	if !ok {
		return
	}

	if eventID == nil || *eventID <= 0 {
		RespondBadRequest(ctx, "eventId is required", nil)
		return
	}

	req, err := h.repo.Create(ctx.Request.Context(), userID, *eventID)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, request.ToDto(req))
}

func (h *RequestsHandler) List(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	requests, err := h.repo.ListByRequester(ctx.Request.Context(), userID)

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

func (h *RequestsHandler) Cancel(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	requestID, ok := pathID(ctx, "requestId")

	if !ok {
		return
	}

	updated, err := h.repo.Update(ctx.Request.Context(), requestID, func(r *request.Request) error {
		return r.Cancel(userID)
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, request.ToDto(updated))
}
