package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/domain/category"
)

type CategoriesStore interface {
	Create(ctx context.Context, name string) (category.Category, error)
	GetByID(ctx context.Context, id int64) (category.Category, error)
	List(ctx context.Context, offset, limit int) ([]category.Category, error)
	Update(ctx context.Context, id int64, name string) (category.Category, error)
	Delete(ctx context.Context, id int64) error
}

type CategoriesHandler struct {
	repo CategoriesStore
}

func NewCategoriesHandler(repo CategoriesStore) *CategoriesHandler {
	return &CategoriesHandler{repo: repo}
}

func (h *CategoriesHandler) List(ctx *gin.Context) {
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

	categories, err := h.repo.List(ctx.Request.Context(), pageOffset(from, size), size)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

func (h *CategoriesHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "catId")

	if !ok {
		return
	}

	c, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CategoriesHandler) Create(ctx *gin.Context) {
	var req category.Dto

	if !BindJSON(ctx, &req) {
		return
	}

	c, err := h.repo.Create(ctx.Request.Context(), req.Name)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CategoriesHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "catId")

	if !ok {
		return
	}

	var req category.Dto

	if !BindJSON(ctx, &req) {
		return
	}

	c, err := h.repo.Update(ctx.Request.Context(), id, req.Name)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CategoriesHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "catId")

	if !ok {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
