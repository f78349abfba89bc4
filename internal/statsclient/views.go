package statsclient

import (
	"context"
	"log/slog"
	"time"

	"github.com/openmeet/openmeet/internal/cache"
	"github.com/openmeet/openmeet/internal/observability"
)

// statsEpoch is the lower bound of every view-count query; hits are never
// deleted, so counting from a fixed early point covers all of them.
var statsEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Views layers the redis cache over the stats client. All failures degrade:
// a broken cache falls through to the stats service, a broken stats service
// yields zero views.
type Views struct {
	client *Client
	cache  *cache.Views
	log    *slog.Logger
	prom   *observability.Prom
}

func NewViews(client *Client, cache *cache.Views, log *slog.Logger, prom *observability.Prom) *Views {
	return &Views{
		client: client,
		cache:  cache,
		log:    log,
		prom:   prom,
	}
}

// RecordHit registers one view of uri from ip, best-effort.
func (v *Views) RecordHit(ctx context.Context, uri, ip string) {
	err := v.client.Hit(ctx, uri, ip)

	if v.prom != nil {
		v.prom.ObserveStats("hit", err)
	}

	if err != nil {
		v.log.Warn("stats hit failed", "uri", uri, "error", err)
	}
}

// Counts returns view counts per uri. Every uri in the input is present in
// the result, missing or failed lookups count as zero.
func (v *Views) Counts(ctx context.Context, uris []string) map[string]int {
	counts := make(map[string]int, len(uris))

	for _, uri := range uris {
		counts[uri] = 0
	}

	if len(uris) == 0 {
		return counts
	}

	missing := uris

	if v.cache != nil {
		cached, err := v.cache.Get(ctx, uris)

		if err != nil {
			v.log.Warn("views cache read failed", "error", err)
		} else {
			missing = missing[:0:0]

			for _, uri := range uris {
				if n, ok := cached[uri]; ok {
					counts[uri] = n
				} else {
					missing = append(missing, uri)
				}
			}
		}
	}

	if len(missing) == 0 {
		return counts
	}

	fetched, err := v.client.Stats(ctx, statsEpoch, time.Now().UTC(), missing, true)

	if v.prom != nil {
		v.prom.ObserveStats("stats", err)
	}

	if err != nil {
		v.log.Warn("stats fetch failed", "error", err)
		return counts
	}

	fresh := make(map[string]int, len(missing))

	for _, uri := range missing {
		counts[uri] = fetched[uri]
		fresh[uri] = fetched[uri]
	}

	if v.cache != nil {
		if err := v.cache.Set(ctx, fresh); err != nil {
			v.log.Warn("views cache write failed", "error", err)
		}
	}

	return counts
}
