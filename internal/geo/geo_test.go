package geo

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	t.Run("same_point_is_zero", func(t *testing.T) {
		if d := DistanceMeters(55.754167, 37.62, 55.754167, 37.62); d != 0 {
			t.Fatalf("got %f", d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := DistanceMeters(59.9386, 30.3141, 55.754167, 37.62)
		b := DistanceMeters(55.754167, 37.62, 59.9386, 30.3141)

		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("asymmetric: %f vs %f", a, b)
		}
	})

	t.Run("one_degree_latitude", func(t *testing.T) {
		// One degree of latitude is close to 111.2 km everywhere.
		d := DistanceMeters(50, 10, 51, 10)

		if math.Abs(d-111195) > 200 {
			t.Fatalf("got %f, want ~111195", d)
		}
	})

	t.Run("nearby_points_within_dedup_radius", func(t *testing.T) {
		// Roughly 15 m apart; must fall inside the 50 m duplicate radius.
		d := DistanceMeters(55.754167, 37.62, 55.754300, 37.62)

		if d < 10 || d > 20 {
			t.Fatalf("got %f, want ~15", d)
		}
	})

	t.Run("equator_longitude_degree", func(t *testing.T) {
		d := DistanceMeters(0, 0, 0, 1)

		if math.Abs(d-111195) > 200 {
			t.Fatalf("got %f, want ~111195", d)
		}
	})
}
