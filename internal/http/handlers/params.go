package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmeet/openmeet/internal/timefmt"
)

// pathID parses an integer path parameter, answering whether it was valid.
// On failure a 400 has already been written.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, name+" must be a positive integer", nil)
		return 0, false
	}

	return id, true
}

func queryInt(ctx *gin.Context, name string, def int) (int, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		return def, true
	}

	v, err := strconv.Atoi(raw)

	if err != nil || v < 0 {
		RespondBadRequest(ctx, name+" must be a non-negative integer", nil)
		return 0, false
	}

	return v, true
}

// pageOffset aligns an element offset down to the enclosing page boundary:
// offset = (from / size) * size.
func pageOffset(from, size int) int {
	if from < 0 || size < 1 {
		return 0
	}

	return (from / size) * size
}

func queryBool(ctx *gin.Context, name string) (*bool, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		return nil, true
	}

	v, err := strconv.ParseBool(raw)

	if err != nil {
		RespondBadRequest(ctx, name+" must be a boolean", nil)
		return nil, false
	}

	return &v, true
}

func queryInt64(ctx *gin.Context, name string) (*int64, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		return nil, true
	}

	v, err := strconv.ParseInt(raw, 10, 64)

	if err != nil {
		RespondBadRequest(ctx, name+" must be an integer", nil)
		return nil, false
	}

	return &v, true
}

func queryFloat(ctx *gin.Context, name string) (*float64, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		return nil, true
	}

	v, err := strconv.ParseFloat(raw, 64)

	if err != nil {
		RespondBadRequest(ctx, name+" must be a number", nil)
		return nil, false
	}

	return &v, true
}

// queryIDList parses a repeated or comma-separated list of integer ids.
func queryIDList(ctx *gin.Context, name string) ([]int64, bool) {
	var out []int64

	for _, raw := range ctx.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)

			if part == "" {
				continue
			}

			id, err := strconv.ParseInt(part, 10, 64)

			if err != nil {
				RespondBadRequest(ctx, name+" must be a list of integers", nil)
				return nil, false
			}

			out = append(out, id)
		}
	}

	return out, true
}

func queryStringList(ctx *gin.Context, name string) []string {
	var out []string

	for _, raw := range ctx.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)

			if part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func queryTime(ctx *gin.Context, name string) (*time.Time, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		return nil, true
	}

	t, err := timefmt.Parse(raw)

	if err != nil {
		RespondBadRequest(ctx, name+" must use the format "+timefmt.Layout, nil)
		return nil, false
	}

	return &t, true
}
