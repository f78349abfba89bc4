package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/domain/user"
)

type UsersStore interface {
	Create(ctx context.Context, req user.NewUserRequest) (user.User, error)
	List(ctx context.Context, ids []int64, offset, limit int) ([]user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	repo UsersStore
}

func NewUsersHandler(repo UsersStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.NewUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.repo.Create(ctx.Request.Context(), req)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) List(ctx *gin.Context) {
	ids, ok := queryIDList(ctx, "ids")

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

	if size == 0 {
		RespondBadRequest(ctx, "size must be a positive integer", nil)
		return
	}

	users, err := h.repo.List(ctx.Request.Context(), ids, pageOffset(from, size), size)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "userId")

	if !ok {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
