package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/user"
	"github.com/openmeet/openmeet/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) Create(ctx context.Context, req user.NewUserRequest) (user.User, error) {
	u := user.User{Name: req.Name, Email: req.Email}

	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO users (name, email) VALUES ($1,$2) RETURNING id
		`, u.Name, u.Email).Scan(&u.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, apperr.Conflictf("email %q is already registered", u.Email)
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Exists(ctx context.Context, id int64) (exists bool, err error) {
	err = r.observe("users.exists", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	})

	return exists, err
}

// List returns users filtered by explicit ids, or a page of all users when
// ids is empty.
func (r *UsersRepo) List(ctx context.Context, ids []int64, offset, limit int) (out []user.User, err error) {
	var conds []string
	var args []interface{}

	if len(ids) > 0 {
		args = append(args, ids)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	query := `SELECT id, name, email FROM users`

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows pgx.Rows

	err = r.observe("users.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out = make([]user.User, 0)

	for rows.Next() {
		var u user.User

		if scanErr := rows.Scan(&u.ID, &u.Name, &u.Email); scanErr != nil {
			return nil, scanErr
		}

		out = append(out, u)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	var tag int64

	err := r.observe("users.delete", func() error {
		res, execErr := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		tag = res.RowsAffected()
		return execErr
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return apperr.NotFound("User", id)
	}

	return nil
}
