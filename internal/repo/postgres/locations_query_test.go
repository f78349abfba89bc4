package postgres

import (
	"strings"
	"testing"

	"github.com/openmeet/openmeet/internal/domain/location"
)

func TestBuildLocationsQueryNoFilters(t *testing.T) {
	query, args := buildLocationsQuery(location.Filter{})

	if strings.Contains(query, "WHERE") {
		t.Fatalf("empty filter must not produce a WHERE clause:\n%s", query)
	}

	if !strings.Contains(query, "ORDER BY l.id DESC LIMIT $1 OFFSET $2") {
		t.Fatalf("unexpected tail:\n%s", query)
	}

	if len(args) != 2 || args[0] != 10 || args[1] != 0 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildLocationsQueryProximity(t *testing.T) {
	lat, lon := 55.75, 37.62

	query, args := buildLocationsQuery(location.Filter{
		Lat: &lat,
		Lon: &lon,
	})

	if !strings.Contains(query, "asin(sqrt(") {
		t.Fatalf("proximity filter must use the haversine expression:\n%s", query)
	}

	if !strings.Contains(query, "<= $3") {
		t.Fatalf("radius must bind after the point:\n%s", query)
	}

	if len(args) != 5 {
		t.Fatalf("got %d args: %v", len(args), args)
	}

	if args[2] != location.DefaultRadius {
		t.Errorf("radius must default, got %v", args[2])
	}
}

func TestBuildLocationsQueryPageAlignsOffset(t *testing.T) {
	tests := []struct {
		name       string
		offset     int
		limit      int
		wantOffset int
	}{
		{"aligned", 20, 10, 20},
		{"rounds_down", 25, 10, 20},
		{"within_first_page", 7, 10, 0},
		{"small_page", 8, 3, 6},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, args := buildLocationsQuery(location.Filter{Offset: tt.offset, Limit: tt.limit})

			if len(args) != 2 {
				t.Fatalf("got %d args: %v", len(args), args)
			}

			if args[1] != tt.wantOffset {
				t.Errorf("got offset %v, want %d", args[1], tt.wantOffset)
			}
		})
	}
}

func TestBuildLocationsQueryAllFilters(t *testing.T) {
	text := "Park"
	state := location.StateApproved
	minEvents, maxEvents := 1, 5
	lat, lon := 55.75, 37.62

	query, args := buildLocationsQuery(location.Filter{
		Text:      &text,
		Creators:  []int64{4},
		State:     &state,
		Lat:       &lat,
		Lon:       &lon,
		Radius:    500,
		MinEvents: &minEvents,
		MaxEvents: &maxEvents,
		Offset:    10,
		Limit:     5,
	})

	wantFragments := []string{
		"lower(l.name) LIKE $1",
		"lower(l.address) LIKE $1",
		"l.creator_id = ANY($2)",
		"l.state = $3",
		"<= $6",
		"e.location_id = l.id) >= $7",
		"e.location_id = l.id) <= $8",
		"LIMIT $9 OFFSET $10",
	}

	for _, frag := range wantFragments {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}

	if len(args) != 10 {
		t.Fatalf("got %d args: %v", len(args), args)
	}

	if args[0] != "%park%" {
		t.Errorf("text pattern not lowercased/wrapped: %v", args[0])
	}

	if args[5] != 500.0 {
		t.Errorf("explicit radius not bound: %v", args[5])
	}
}

func TestHaversineToPointBindsPositions(t *testing.T) {
	expr := haversineToPoint(2, 3)

	if !strings.Contains(expr, "$2") || !strings.Contains(expr, "$3") {
		t.Fatalf("expression must reference the given positions: %s", expr)
	}

	if strings.Contains(expr, "%!") {
		t.Fatalf("malformed expression: %s", expr)
	}
}
