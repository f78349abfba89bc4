package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/event"
	"github.com/openmeet/openmeet/internal/domain/location"
	"github.com/openmeet/openmeet/internal/observability"
)

type LocationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewLocationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *LocationsRepo {
	return &LocationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *LocationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanLocation(row rowScanner) (location.Location, error) {
	var l location.Location

	err := row.Scan(&l.ID, &l.CreatorID, &l.Name, &l.Address, &l.Latitude, &l.Longitude, &l.State)

	return l, err
}

// CreateUser inserts a PENDING location owned by userID. The same-named
// nearby duplicate check and the insert run inside one serializable
// transaction so two concurrent submissions cannot both pass the check.
func (r *LocationsRepo) CreateUser(ctx context.Context, userID int64, req location.CreateRequest) (created location.Location, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})

	if err != nil {
		return location.Location{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var existing location.Location
	var found bool

	err = r.observe("locations.create_user.duplicate_check", func() error {
		// Auto-generated points never block a named location.
		query := locationSelect + `WHERE lower(l.name) = lower($1)
			AND l.state <> 'AUTO_GENERATED'
			AND ` + haversineToPoint(2, 3) + ` <= $4
			LIMIT 1`

		var scanErr error
		existing, scanErr = scanLocation(tx.QueryRow(ctx, query,
			req.Name, *req.Latitude, *req.Longitude, location.NearbyRadiusMeters))

		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil
		}

		if scanErr == nil {
			found = true
		}

		return scanErr
	})

	if err != nil {
		return location.Location{}, err
	}

	if found {
		return location.Location{}, location.DuplicateError(existing)
	}

	l := location.Location{
		CreatorID: &userID,
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		State:     location.StatePending,
	}

	err = r.observe("locations.create_user.insert", func() error {
		return tx.QueryRow(ctx, `
			INSERT INTO locations (creator_id, name, address, latitude, longitude, state)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`, l.CreatorID, l.Name, l.Address, l.Latitude, l.Longitude, string(l.State)).Scan(&l.ID)
	})

	if err != nil {
		return location.Location{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return location.Location{}, err
	}

	return l, nil
}

// CreateAdmin inserts directly in APPROVED, with no duplicate check.
func (r *LocationsRepo) CreateAdmin(ctx context.Context, req location.CreateRequest) (location.Location, error) {
	l := location.Location{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		State:     location.StateApproved,
	}

	err := r.observe("locations.create_admin", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO locations (creator_id, name, address, latitude, longitude, state)
			VALUES (NULL,$1,$2,$3,$4,$5)
			RETURNING id
		`, l.Name, l.Address, l.Latitude, l.Longitude, string(l.State)).Scan(&l.ID)
	})

	if err != nil {
		return location.Location{}, err
	}

	return l, nil
}

func (r *LocationsRepo) GetByID(ctx context.Context, id int64) (l location.Location, err error) {
	err = r.observe("locations.get_by_id", func() error {
		var scanErr error
		l, scanErr = scanLocation(r.pool.QueryRow(ctx, locationSelect+`WHERE l.id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.Location{}, apperr.NotFound("Location", id)
		}
		return location.Location{}, err
	}

	return l, nil
}

// ResolveForEvent maps an event's location reference onto a location row: an
// id must point at an APPROVED location; bare coordinates reuse a nearby
// AUTO_GENERATED point or synthesize a new one. Lookup and synthesis run in
// one serializable transaction, mirroring the capacity-check discipline.
func (r *LocationsRepo) ResolveForEvent(ctx context.Context, ref event.LocationRef) (location.Location, error) {
	if ref.ID != nil {
		var l location.Location

		err := r.observe("locations.resolve.by_id", func() error {
			var scanErr error
			l, scanErr = scanLocation(r.pool.QueryRow(ctx,
				locationSelect+`WHERE l.id = $1 AND l.state = 'APPROVED'`, *ref.ID))
			return scanErr
		})

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return location.Location{}, apperr.NotFound("Location", *ref.ID)
			}
			return location.Location{}, err
		}

		return l, nil
	}

	if ref.Lat == nil || ref.Lon == nil {
		return location.Location{}, apperr.Conflictf("invalid location: id or coordinates are required")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})

	if err != nil {
		return location.Location{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var l location.Location
	var found bool

	err = r.observe("locations.resolve.nearby_auto", func() error {
		query := locationSelect + `WHERE l.state = 'AUTO_GENERATED'
			AND ` + haversineToPoint(1, 2) + ` <= $3
			ORDER BY ` + haversineToPoint(1, 2) + `
			LIMIT 1`

		var scanErr error
		l, scanErr = scanLocation(tx.QueryRow(ctx, query, *ref.Lat, *ref.Lon, location.NearbyRadiusMeters))

		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil
		}

		if scanErr == nil {
			found = true
		}

		return scanErr
	})

	if err != nil {
		return location.Location{}, err
	}

	if !found {
		l = location.Location{
			Latitude:  *ref.Lat,
			Longitude: *ref.Lon,
			State:     location.StateAutoGenerated,
		}

		err = r.observe("locations.resolve.synthesize", func() error {
			return tx.QueryRow(ctx, `
				INSERT INTO locations (creator_id, name, address, latitude, longitude, state)
				VALUES (NULL,'','',$1,$2,$3)
				RETURNING id
			`, l.Latitude, l.Longitude, string(l.State)).Scan(&l.ID)
		})

		if err != nil {
			return location.Location{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return location.Location{}, err
	}

	return l, nil
}

func (r *LocationsRepo) List(ctx context.Context, f location.Filter) (out []location.Location, err error) {
	query, args := buildLocationsQuery(f)

	var rows pgx.Rows

	err = r.observe("locations.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out = make([]location.Location, 0)

	for rows.Next() {
		l, scanErr := scanLocation(rows)

		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, l)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *LocationsRepo) ListApproved(ctx context.Context) ([]location.Location, error) {
	approved := location.StateApproved
	return r.List(ctx, location.Filter{State: &approved, Limit: 1000})
}

// Update locks the row, applies the merge and saves, as one atomic unit.
func (r *LocationsRepo) Update(ctx context.Context, id int64, apply func(*location.Location) error) (updated location.Location, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return location.Location{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var l location.Location

	err = r.observe("locations.update.lock", func() error {
		var scanErr error
		l, scanErr = scanLocation(tx.QueryRow(ctx, locationSelect+`WHERE l.id = $1 FOR UPDATE`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.Location{}, apperr.NotFound("Location", id)
		}
		return location.Location{}, err
	}

	if err = apply(&l); err != nil {
		return location.Location{}, err
	}

	err = r.observe("locations.update.save", func() error {
		_, execErr := tx.Exec(ctx, `
			UPDATE locations
			SET name = $2, address = $3, latitude = $4, longitude = $5, state = $6
			WHERE id = $1
		`, l.ID, l.Name, l.Address, l.Latitude, l.Longitude, string(l.State))
		return execErr
	})

	if err != nil {
		return location.Location{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return location.Location{}, err
	}

	return l, nil
}

// DeleteUser removes the caller's own location. Checks go in a fixed order:
// existence, then state, then ownership, then event references.
func (r *LocationsRepo) DeleteUser(ctx context.Context, userID, id int64) error {
	l, err := r.GetByID(ctx, id)

	if err != nil {
		return err
	}

	if l.State == location.StateApproved {
		return apperr.Conflictf("location with id=%d is approved and cannot be deleted", id)
	}

	if l.CreatorID == nil || *l.CreatorID != userID {
		return apperr.Forbiddenf("user with id=%d is not the creator of location with id=%d", userID, id)
	}

	return r.Delete(ctx, id)
}

// Delete removes a location unless events still reference it. The check and
// the delete share one transaction; the FK on events.location_id backstops.
func (r *LocationsRepo) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var inUse int

	err = r.observe("locations.delete.events_check", func() error {
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE location_id = $1`, id).Scan(&inUse)
	})

	if err != nil {
		return err
	}

	if inUse > 0 {
		return apperr.Conflictf("there are events in this location")
	}

	var tag int64

	err = r.observe("locations.delete", func() error {
		res, execErr := tx.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
		tag = res.RowsAffected()
		return execErr
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.Conflictf("there are events in this location")
		}
		return err
	}

	if tag == 0 {
		return apperr.NotFound("Location", id)
	}

	return tx.Commit(ctx)
}
