// Package stats implements the hit-counter service: it records one row per
// endpoint view and answers aggregated counts per URI over a time range.
package stats

import (
	"time"

	"github.com/openmeet/openmeet/internal/timefmt"
)

type Hit struct {
	ID        int64
	Service   string
	URI       string
	IP        string
	Timestamp time.Time
}

type HitDto struct {
	Service   string           `json:"service" binding:"required"`
	URI       string           `json:"uri" binding:"required"`
	IP        string           `json:"ip" binding:"required"`
	Timestamp timefmt.DateTime `json:"timestamp" binding:"required"`
}

func (d HitDto) ToHit() Hit {
	return Hit{
		Service:   d.Service,
		URI:       d.URI,
		IP:        d.IP,
		Timestamp: d.Timestamp.Time(),
	}
}

// Line is one aggregated row of the stats report.
type Line struct {
	Service string `json:"service"`
	URI     string `json:"uri"`
	Hits    int    `json:"hits"`
}
