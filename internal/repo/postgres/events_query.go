package postgres

import (
	"fmt"
	"strings"

	"github.com/openmeet/openmeet/internal/domain/event"
)

// confirmedCountExpr is the live count of CONFIRMED requests; it is computed
// per row, never read from a stored counter.
const confirmedCountExpr = `(SELECT COUNT(*) FROM requests r WHERE r.event_id = e.id AND r.status = 'CONFIRMED')`

const eventSelect = `SELECT e.id,
	e.title,
	e.annotation,
	e.description,
	e.category_id,
	c.name,
	e.initiator_id,
	u.name,
	e.location_id,
	l.latitude,
	l.longitude,
	e.event_date,
	e.created_at,
	e.published_on,
	e.paid,
	e.participant_limit,
	e.request_moderation,
	e.state,
	` + confirmedCountExpr + ` AS confirmed_requests
FROM events e
JOIN categories c ON c.id = e.category_id
JOIN users u ON u.id = e.initiator_id
JOIN locations l ON l.id = e.location_id
`

// buildEventsQuery turns the optional public-listing predicates into one
// conjunctive WHERE clause; absent fields contribute no condition at all.
func buildEventsQuery(f event.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	pos := 1

	if f.Text != nil && *f.Text != "" {
		pattern := "%" + strings.ToLower(*f.Text) + "%"
		conds = append(conds, fmt.Sprintf(
			"(lower(e.title) LIKE $%d OR lower(e.annotation) LIKE $%d OR lower(e.description) LIKE $%d)",
			pos, pos, pos))
		args = append(args, pattern)
		pos++
	}

	if len(f.Categories) > 0 {
		conds = append(conds, fmt.Sprintf("e.category_id = ANY($%d)", pos))
		args = append(args, f.Categories)
		pos++
	}

	if f.Paid != nil {
		conds = append(conds, fmt.Sprintf("e.paid = $%d", pos))
		args = append(args, *f.Paid)
		pos++
	}

	if f.State != nil {
		conds = append(conds, fmt.Sprintf("e.state = $%d", pos))
		args = append(args, string(*f.State))
		pos++
	}

	if f.RangeStart != nil {
		conds = append(conds, fmt.Sprintf("e.event_date >= $%d", pos))
		args = append(args, *f.RangeStart)
		pos++
	}

	if f.RangeEnd != nil {
		conds = append(conds, fmt.Sprintf("e.event_date <= $%d", pos))
		args = append(args, *f.RangeEnd)
		pos++
	}

	if f.OnlyAvailable {
		conds = append(conds, "(e.participant_limit = 0 OR "+confirmedCountExpr+" < e.participant_limit)")
	}

	query := eventSelect

	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}

	// VIEWS ordering happens after stats enrichment; the page itself always
	// leaves the store newest-first by event date.
	query += fmt.Sprintf("ORDER BY e.event_date DESC, e.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Page.Limit(), f.Page.Offset())

	return query, args
}

func buildAdminEventsQuery(f event.AdminFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	pos := 1

	if len(f.Users) > 0 {
		conds = append(conds, fmt.Sprintf("e.initiator_id = ANY($%d)", pos))
		args = append(args, f.Users)
		pos++
	}

	if len(f.Categories) > 0 {
		conds = append(conds, fmt.Sprintf("e.category_id = ANY($%d)", pos))
		args = append(args, f.Categories)
		pos++
	}

	if len(f.States) > 0 {
		states := make([]string, 0, len(f.States))
		for _, s := range f.States {
			states = append(states, string(s))
		}
		conds = append(conds, fmt.Sprintf("e.state = ANY($%d)", pos))
		args = append(args, states)
		pos++
	}

	if f.RangeStart != nil {
		conds = append(conds, fmt.Sprintf("e.event_date >= $%d", pos))
		args = append(args, *f.RangeStart)
		pos++
	}

	if f.RangeEnd != nil {
		conds = append(conds, fmt.Sprintf("e.event_date <= $%d", pos))
		args = append(args, *f.RangeEnd)
		pos++
	}

	query := eventSelect

	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}

	query += fmt.Sprintf("ORDER BY e.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Page.Limit(), f.Page.Offset())

	return query, args
}
