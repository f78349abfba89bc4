package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/event"
	"github.com/openmeet/openmeet/internal/domain/request"
	"github.com/openmeet/openmeet/internal/observability"
)

const requestSelect = `
	SELECT pr.id, pr.requester_id, pr.event_id, pr.created, pr.status
	FROM requests pr
`

type RequestsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRequestsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RequestsRepo {
	return &RequestsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *RequestsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanRequest(row rowScanner) (request.Request, error) {
	var req request.Request

	err := row.Scan(&req.ID, &req.RequesterID, &req.EventID, &req.Created, &req.Status)

	return req, err
}

// Create adds a participation request. The event row is locked FOR UPDATE
// before the confirmed count is read, so two concurrent requests against the
// last free slot serialize and the second one sees the limit reached.
func (r *RequestsRepo) Create(ctx context.Context, userID, eventID int64) (created request.Request, err error) {
	var exists bool

	err = r.observe("requests.create.user_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	})

	if err != nil {
		return request.Request{}, err
	}

	if !exists {
		return request.Request{}, apperr.NotFound("User", userID)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return request.Request{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var e event.Event

	err = r.observe("requests.create.lock_event", func() error {
		var scanErr error
		e, scanErr = scanEvent(tx.QueryRow(ctx, eventSelect+`WHERE e.id = $1 FOR UPDATE OF e`, eventID))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, apperr.NotFound("Event", eventID)
		}
		return request.Request{}, err
	}

	var duplicate bool

	err = r.observe("requests.create.duplicate_check", func() error {
		return tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM requests WHERE requester_id = $1 AND event_id = $2)
		`, userID, eventID).Scan(&duplicate)
	})

	if err != nil {
		return request.Request{}, err
	}

	if duplicate {
		return request.Request{}, apperr.Conflictf("request from user with id=%d for event with id=%d already exists", userID, eventID)
	}

	var confirmed int

	err = r.observe("requests.create.confirmed_count", func() error {
		return tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = 'CONFIRMED'
		`, eventID).Scan(&confirmed)
	})

	if err != nil {
		return request.Request{}, err
	}

	if err = request.ValidateCreate(userID, e, confirmed); err != nil {
		return request.Request{}, err
	}

	req := request.Request{
		RequesterID: userID,
		EventID:     eventID,
		Created:     time.Now().UTC(),
		Status:      request.DetermineStatus(e),
	}

	err = r.observe("requests.create.insert", func() error {
		return tx.QueryRow(ctx, `
			INSERT INTO requests (requester_id, event_id, created, status)
			VALUES ($1,$2,$3,$4)
			RETURNING id
		`, req.RequesterID, req.EventID, req.Created, string(req.Status)).Scan(&req.ID)
	})

	if err != nil {
		// Unique index on (requester_id, event_id) backstops the EXISTS check.
		if IsUniqueViolation(err) {
			return request.Request{}, apperr.Conflictf("request from user with id=%d for event with id=%d already exists", userID, eventID)
		}
		return request.Request{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return request.Request{}, err
	}

	return req, nil
}

func (r *RequestsRepo) ListByRequester(ctx context.Context, userID int64) (out []request.Request, err error) {
	var exists bool

	err = r.observe("requests.list.user_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	})

	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, apperr.NotFound("User", userID)
	}

	return r.list(ctx, "requests.list_by_requester",
		requestSelect+`WHERE pr.requester_id = $1 ORDER BY pr.id`, userID)
}

func (r *RequestsRepo) ListByEvent(ctx context.Context, eventID int64) ([]request.Request, error) {
	return r.list(ctx, "requests.list_by_event",
		requestSelect+`WHERE pr.event_id = $1 ORDER BY pr.id`, eventID)
}

func (r *RequestsRepo) list(ctx context.Context, op, query string, args ...interface{}) (out []request.Request, err error) {
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

	out = make([]request.Request, 0)

	for rows.Next() {
		req, scanErr := scanRequest(rows)

		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, req)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

// Update locks the request row, applies the change and saves it.
func (r *RequestsRepo) Update(ctx context.Context, id int64, apply func(*request.Request) error) (updated request.Request, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return request.Request{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var req request.Request

	err = r.observe("requests.update.lock", func() error {
		var scanErr error
		req, scanErr = scanRequest(tx.QueryRow(ctx, requestSelect+`WHERE pr.id = $1 FOR UPDATE`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, apperr.NotFound("Request", id)
		}
		return request.Request{}, err
	}

	if err = apply(&req); err != nil {
		return request.Request{}, err
	}

	err = r.observe("requests.update.save", func() error {
		_, execErr := tx.Exec(ctx, `UPDATE requests SET status = $2 WHERE id = $1`, req.ID, string(req.Status))
		return execErr
	})

	if err != nil {
		return request.Request{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return request.Request{}, err
	}

	return req, nil
}
