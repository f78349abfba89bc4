package statsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openmeet/openmeet/internal/timefmt"
)

// Client talks to the stats service. Callers treat both directions as
// best-effort: errors are logged and swallowed at the call site, never
// propagated to the surrounding read/list operation.
type Client struct {
	base    string
	service string
	http    *http.Client
}

func New(baseURL, service string) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		service: service,
		http: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

type hitDto struct {
	Service   string           `json:"service"`
	URI       string           `json:"uri"`
	IP        string           `json:"ip"`
	Timestamp timefmt.DateTime `json:"timestamp"`
}

type statsDtoOut struct {
	Service string `json:"service"`
	URI     string `json:"uri"`
	Hits    int    `json:"hits"`
}

// Hit records one view of uri from ip.
func (c *Client) Hit(ctx context.Context, uri, ip string) error {
	body, err := json.Marshal(hitDto{
		Service:   c.service,
		URI:       uri,
		IP:        ip,
		Timestamp: timefmt.DateTime(time.Now().UTC()),
	})

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/hit", bytes.NewReader(body))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("stats service returned %d for hit", resp.StatusCode)
	}

	return nil
}

// Stats fetches view counts per uri within [start, end], optionally counting
// each IP once.
func (c *Client) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int, error) {
	q := url.Values{}
	q.Set("start", timefmt.Format(start))
	q.Set("end", timefmt.Format(end))
	q.Set("unique", fmt.Sprintf("%t", unique))

	for _, uri := range uris {
		q.Add("uris", uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/stats?"+q.Encode(), nil)

	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned %d for stats", resp.StatusCode)
	}

	var out []statsDtoOut

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(out))

	for _, s := range out {
		counts[s.URI] = s.Hits
	}

	return counts, nil
}
