package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/domain/event"
)

type PublishedEventsLister interface {
	List(ctx context.Context, f event.Filter) ([]event.Event, error)
	GetPublishedByID(ctx context.Context, id int64) (event.Event, error)
}

// ViewsSource records hits and answers view counts, both best-effort.
type ViewsSource interface {
	RecordHit(ctx context.Context, uri, ip string)
	Counts(ctx context.Context, uris []string) map[string]int
}

type PublicEventsHandler struct {
	repo  PublishedEventsLister
	views ViewsSource
}

func NewPublicEventsHandler(repo PublishedEventsLister, views ViewsSource) *PublicEventsHandler {
	return &PublicEventsHandler{repo: repo, views: views}
}

func eventURI(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

func (h *PublicEventsHandler) List(ctx *gin.Context) {
	f, ok := parsePublicFilter(ctx)

	if !ok {
		return
	}

	events, err := h.repo.List(ctx.Request.Context(), f)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.views.RecordHit(ctx.Request.Context(), "/events", ctx.ClientIP())

	uris := make([]string, 0, len(events))

	for _, e := range events {
		uris = append(uris, eventURI(e.ID))
	}

	counts := h.views.Counts(ctx.Request.Context(), uris)

	out := make([]event.ShortDtoOut, 0, len(events))

	for _, e := range events {
		dto := event.ToShortDto(e)
		dto.Views = counts[eventURI(e.ID)]
		out = append(out, dto)
	}

	// View counts live outside the database, so the VIEWS order is applied
	// to the already-fetched page.
	if f.Sort == event.SortViews {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Views > out[j].Views
		})
	}

	ctx.JSON(http.StatusOK, out)
}

func (h *PublicEventsHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "eventId")

	if !ok {
		return
	}

	e, err := h.repo.GetPublishedByID(ctx.Request.Context(), id)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	uri := eventURI(id)

	h.views.RecordHit(ctx.Request.Context(), uri, ctx.ClientIP())

	counts := h.views.Counts(ctx.Request.Context(), []string{uri})

	dto := event.ToDto(e)
	dto.Views = counts[uri]

	ctx.JSON(http.StatusOK, dto)
}

func parsePublicFilter(ctx *gin.Context) (event.Filter, bool) {
	var f event.Filter

	if text := ctx.Query("text"); text != "" {
		f.Text = &text
	}

	categories, ok := queryIDList(ctx, "categories")
	if !ok {
		return f, false
	}
	f.Categories = categories

	paid, ok := queryBool(ctx, "paid")
	if !ok {
		return f, false
	}
	f.Paid = paid

	start, ok := queryTime(ctx, "rangeStart")
	if !ok {
		return f, false
	}

	end, ok := queryTime(ctx, "rangeEnd")
	if !ok {
		return f, false
	}

	if start != nil && end != nil && start.After(*end) {
		RespondBadRequest(ctx, "rangeStart must not be after rangeEnd", nil)
		return f, false
	}

	// Without an explicit range only upcoming events are listed.
	if start == nil && end == nil {
		now := time.Now().UTC()
		start = &now
	}

	f.RangeStart = start
	f.RangeEnd = end

	onlyAvailable, ok := queryBool(ctx, "onlyAvailable")
	if !ok {
		return f, false
	}
	f.OnlyAvailable = onlyAvailable != nil && *onlyAvailable

	switch s := ctx.Query("sort"); s {
	case "", event.SortEventDate:
		f.Sort = event.SortEventDate
	case event.SortViews:
		f.Sort = event.SortViews
	default:
		RespondBadRequest(ctx, "sort must be EVENT_DATE or VIEWS", nil)
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

	if size == 0 {
		RespondBadRequest(ctx, "size must be a positive integer", nil)
		return f, false
	}

	published := event.StatePublished
	f.State = &published
	f.Page = event.Pagination{From: from, Size: size}

	return f, true
}
