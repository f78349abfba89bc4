package stats

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/http/handlers"
	"github.com/openmeet/openmeet/internal/timefmt"
)

type Recorder interface {
	Insert(ctx context.Context, h Hit) error
	Counts(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]Line, error)
}

type Handler struct {
	repo Recorder
}

func NewHandler(repo Recorder) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Hit(ctx *gin.Context) {
	var req HitDto

	if !handlers.BindJSON(ctx, &req) {
		return
	}

	if err := h.repo.Insert(ctx.Request.Context(), req.ToHit()); err != nil {
		handlers.RespondInternal(ctx, "Could not record hit")
		return
	}

	ctx.Status(http.StatusCreated)
}

func (h *Handler) Stats(ctx *gin.Context) {
	start, ok := requiredTime(ctx, "start")

	if !ok {
		return
	}

	end, ok := requiredTime(ctx, "end")

	if !ok {
		return
	}

	if start.After(end) {
		handlers.RespondBadRequest(ctx, "start must not be after end", nil)
		return
	}

	var uris []string

	for _, raw := range ctx.QueryArray("uris") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)

			if part != "" {
				uris = append(uris, part)
			}
		}
	}

	unique := false

	if raw := ctx.Query("unique"); raw != "" {
		v, err := strconv.ParseBool(raw)

		if err != nil {
			handlers.RespondBadRequest(ctx, "unique must be a boolean", nil)
			return
		}

		unique = v
	}

	lines, err := h.repo.Counts(ctx.Request.Context(), start, end, uris, unique)

	if err != nil {
		handlers.RespondInternal(ctx, "Could not fetch stats")
		return
	}

	ctx.JSON(http.StatusOK, lines)
}

func requiredTime(ctx *gin.Context, name string) (time.Time, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		handlers.RespondBadRequest(ctx, name+" is required", nil)
		return time.Time{}, false
	}

	t, err := timefmt.Parse(raw)

	if err != nil {
		handlers.RespondBadRequest(ctx, name+" must use the format "+timefmt.Layout, nil)
		return time.Time{}, false
	}

	return t, true
}
