package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openmeet/openmeet/internal/observability"
)

type Repo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRepo(pool *pgxpool.Pool, prom *observability.Prom) *Repo {
	return &Repo{
		pool: pool,
		prom: prom,
	}
}

func (r *Repo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *Repo) Insert(ctx context.Context, h Hit) error {
	return r.observe("hits.insert", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO hits (service, uri, ip, ts)
			VALUES ($1,$2,$3,$4)
		`, h.Service, h.URI, h.IP, h.Timestamp)
		return err
	})
}

// buildCountsQuery aggregates hits per service+uri within [start, end].
// unique counts each IP once per uri; a non-empty uris list restricts the
// report to those endpoints.
func buildCountsQuery(start, end time.Time, uris []string, unique bool) (string, []interface{}) {
	count := "COUNT(ip)"

	if unique {
		count = "COUNT(DISTINCT ip)"
	}

	conds := []string{"ts BETWEEN $1 AND $2"}
	args := []interface{}{start, end}

	if len(uris) > 0 {
		args = append(args, uris)
		conds = append(conds, fmt.Sprintf("uri = ANY($%d)", len(args)))
	}

	query := `SELECT service, uri, ` + count + ` AS hits
		FROM hits
		WHERE ` + strings.Join(conds, " AND ") + `
		GROUP BY service, uri
		ORDER BY hits DESC`

	return query, args
}

func (r *Repo) Counts(ctx context.Context, start, end time.Time, uris []string, unique bool) (out []Line, err error) {
	query, args := buildCountsQuery(start, end, uris, unique)

	var rows pgx.Rows

	err = r.observe("hits.counts", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out = make([]Line, 0)

	for rows.Next() {
		var l Line

		if scanErr := rows.Scan(&l.Service, &l.URI, &l.Hits); scanErr != nil {
			return nil, scanErr
		}

		out = append(out, l)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}
