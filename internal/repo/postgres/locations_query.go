package postgres

import (
	"fmt"
	"strings"

	"github.com/openmeet/openmeet/internal/domain/location"
)

const locationSelect = `SELECT l.id, l.creator_id, l.name, l.address, l.latitude, l.longitude, l.state
FROM locations l
`

// haversineToPoint renders the great-circle distance, in meters, between a
// location row and a bind-parameter point (latPos, lonPos).
func haversineToPoint(latPos, lonPos int) string {
	return fmt.Sprintf(`(2 * 6371000 * asin(sqrt(
		power(sin(radians(l.latitude - $%d) / 2), 2) +
		cos(radians($%d)) * cos(radians(l.latitude)) *
		power(sin(radians(l.longitude - $%d) / 2), 2))))`, latPos, latPos, lonPos)
}

func buildLocationsQuery(f location.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	pos := 1

	if f.Text != nil && *f.Text != "" {
		pattern := "%" + strings.ToLower(*f.Text) + "%"
		conds = append(conds, fmt.Sprintf("(lower(l.name) LIKE $%d OR lower(l.address) LIKE $%d)", pos, pos))
		args = append(args, pattern)
		pos++
	}

	if len(f.Creators) > 0 {
		conds = append(conds, fmt.Sprintf("l.creator_id = ANY($%d)", pos))
		args = append(args, f.Creators)
		pos++
	}

	if f.State != nil {
		conds = append(conds, fmt.Sprintf("l.state = $%d", pos))
		args = append(args, string(*f.State))
		pos++
	}

	if f.Lat != nil && f.Lon != nil {
		radius := f.Radius
		if radius <= 0 {
			radius = location.DefaultRadius
		}

		conds = append(conds, fmt.Sprintf("%s <= $%d", haversineToPoint(pos, pos+1), pos+2))
		args = append(args, *f.Lat, *f.Lon, radius)
		pos += 3
	}

	if f.MinEvents != nil {
		conds = append(conds, fmt.Sprintf("(SELECT COUNT(*) FROM events e WHERE e.location_id = l.id) >= $%d", pos))
		args = append(args, *f.MinEvents)
		pos++
	}

	if f.MaxEvents != nil {
		conds = append(conds, fmt.Sprintf("(SELECT COUNT(*) FROM events e WHERE e.location_id = l.id) <= $%d", pos))
		args = append(args, *f.MaxEvents)
		pos++
	}

	query := locationSelect

	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}

	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	// The offset is page-aligned: rounded down to the enclosing page boundary.
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	offset = (offset / limit) * limit

	query += fmt.Sprintf("ORDER BY l.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	return query, args
}
