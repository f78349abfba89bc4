package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openmeet/openmeet/internal/apperr"
	"github.com/openmeet/openmeet/internal/domain/category"
	"github.com/openmeet/openmeet/internal/observability"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) Create(ctx context.Context, name string) (category.Category, error) {
	c := category.Category{Name: name}

	err := r.observe("categories.create", func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO categories (name) VALUES ($1) RETURNING id
		`, name).Scan(&c.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return category.Category{}, apperr.Conflictf("category name %q is already taken", name)
		}
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id int64) (c category.Category, err error) {
	err = r.observe("categories.get_by_id", func() error {
		return r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).
			Scan(&c.ID, &c.Name)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, apperr.NotFound("Category", id)
		}
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context, offset, limit int) (out []category.Category, err error) {
	var rows pgx.Rows

	err = r.observe("categories.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT id, name FROM categories ORDER BY id OFFSET $1 LIMIT $2
		`, offset, limit)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out = make([]category.Category, 0)

	for rows.Next() {
		var c category.Category

		if scanErr := rows.Scan(&c.ID, &c.Name); scanErr != nil {
			return nil, scanErr
		}

		out = append(out, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *CategoriesRepo) Update(ctx context.Context, id int64, name string) (category.Category, error) {
	c := category.Category{ID: id, Name: name}

	var tag int64

	err := r.observe("categories.update", func() error {
		res, execErr := r.pool.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, name)
		tag = res.RowsAffected()
		return execErr
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return category.Category{}, apperr.Conflictf("category name %q is already taken", name)
		}
		return category.Category{}, err
	}

	if tag == 0 {
		return category.Category{}, apperr.NotFound("Category", id)
	}

	return c, nil
}

// Delete refuses to remove a category that still has events.
func (r *CategoriesRepo) Delete(ctx context.Context, id int64) error {
	var inUse int

	err := r.observe("categories.delete.events_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE category_id = $1`, id).Scan(&inUse)
	})

	if err != nil {
		return err
	}

	if inUse > 0 {
		return apperr.Conflictf("the category is not empty")
	}

	var tag int64

	err = r.observe("categories.delete", func() error {
		res, execErr := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		tag = res.RowsAffected()
		return execErr
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.Conflictf("the category is not empty")
		}
		return err
	}

	if tag == 0 {
		return apperr.NotFound("Category", id)
	}

	return nil
}
