package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/event"
	"github.com/openmeet/openmeet/internal/observability"
)

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var e event.Event

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Annotation,
		&e.Description,
		&e.CategoryID,
		&e.CategoryName,
		&e.InitiatorID,
		&e.InitiatorName,
		&e.LocationID,
		&e.Lat,
		&e.Lon,
		&e.EventDate,
		&e.CreatedAt,
		&e.PublishedOn,
		&e.Paid,
		&e.ParticipantLimit,
		&e.RequestModeration,
		&e.State,
		&e.ConfirmedRequests,
	)

	return e, err
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	err := r.observe("events.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO events (title, annotation, description, category_id, initiator_id, location_id,
				event_date, created_at, paid, participant_limit, request_moderation, state)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			RETURNING id
		`,
			e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID, e.LocationID,
			e.EventDate, e.CreatedAt, e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State),
		).Scan(&e.ID)
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return event.Event{}, apperr.NotFoundf("referenced category, user or location was not found")
		}

		return event.Event{}, err
	}

	return r.GetByID(ctx, e.ID)
}

func (r *EventsRepo) GetByID(ctx context.Context, id int64) (e event.Event, err error) {
	err = r.observe("events.get_by_id", func() error {
		var scanErr error
		e, scanErr = scanEvent(r.pool.QueryRow(ctx, eventSelect+`WHERE e.id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, apperr.NotFound("Event", id)
		}
		return event.Event{}, err
	}

	return e, nil
}

// GetPublishedByID returns only a PUBLISHED event; anything else is NotFound.
func (r *EventsRepo) GetPublishedByID(ctx context.Context, id int64) (e event.Event, err error) {
	err = r.observe("events.get_published_by_id", func() error {
		var scanErr error
		e, scanErr = scanEvent(r.pool.QueryRow(ctx, eventSelect+`WHERE e.id = $1 AND e.state = 'PUBLISHED'`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, apperr.NotFound("Event", id)
		}
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, f event.Filter) ([]event.Event, error) {
	query, args := buildEventsQuery(f)
	return r.list(ctx, "events.list", query, args)
}

func (r *EventsRepo) ListAdmin(ctx context.Context, f event.AdminFilter) ([]event.Event, error) {
	query, args := buildAdminEventsQuery(f)
	return r.list(ctx, "events.list_admin", query, args)
}

func (r *EventsRepo) ListByInitiator(ctx context.Context, userID int64, offset, limit int) ([]event.Event, error) {
	query := eventSelect + `WHERE e.initiator_id = $1 ORDER BY e.id LIMIT $2 OFFSET $3`
	return r.list(ctx, "events.list_by_initiator", query, []interface{}{userID, limit, offset})
}

func (r *EventsRepo) list(ctx context.Context, op, query string, args []interface{}) (out []event.Event, err error) {
	var rows pgx.Rows

	err = r.observe(op, func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out = make([]event.Event, 0)

	for rows.Next() {
		e, scanErr := scanEvent(rows)

		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, e)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

// Update runs a read-modify-write as one atomic unit: the event row is locked
// for the duration of the merge so concurrent edits cannot interleave.
func (r *EventsRepo) Update(ctx context.Context, id int64, apply func(*event.Event) error) (updated event.Event, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return event.Event{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var e event.Event

	err = r.observe("events.update.lock", func() error {
		var scanErr error
		e, scanErr = scanEvent(tx.QueryRow(ctx, eventSelect+`WHERE e.id = $1 FOR UPDATE OF e`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, apperr.NotFound("Event", id)
		}
		return event.Event{}, err
	}

	if err = apply(&e); err != nil {
		return event.Event{}, err
	}

	err = r.observe("events.update.save", func() error {
		_, execErr := tx.Exec(ctx, `
			UPDATE events
			SET title = $2,
				annotation = $3,
				description = $4,
				category_id = $5,
				location_id = $6,
				event_date = $7,
				published_on = $8,
				paid = $9,
				participant_limit = $10,
				request_moderation = $11,
				state = $12
			WHERE id = $1
		`,
			e.ID, e.Title, e.Annotation, e.Description, e.CategoryID, e.LocationID,
			e.EventDate, e.PublishedOn, e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State),
		)
		return execErr
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return event.Event{}, apperr.NotFoundf("referenced category or location was not found")
		}
		return event.Event{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return event.Event{}, err
	}

	return r.GetByID(ctx, id)
}

// CountAtLocation backs the location-deletion guard.
func (r *EventsRepo) CountAtLocation(ctx context.Context, locationID int64) (int, error) {
	var total int
	err := r.observe("events.count_at_location", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE location_id = $1`, locationID).Scan(&total)
	})
	return total, err
}

// CountInCategory backs the category-deletion guard.
func (r *EventsRepo) CountInCategory(ctx context.Context, categoryID int64) (int, error) {
	var total int
	err := r.observe("events.count_in_category", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE category_id = $1`, categoryID).Scan(&total)
	})
	return total, err
}
