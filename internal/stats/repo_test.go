package stats

import (
	"strings"
	"testing"
	"time"
)

func TestBuildCountsQuery(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	t.Run("plain_count", func(t *testing.T) {
		query, args := buildCountsQuery(start, end, nil, false)

		if !strings.Contains(query, "COUNT(ip)") || strings.Contains(query, "DISTINCT") {
			t.Fatalf("wrong count expression:\n%s", query)
		}

		if strings.Contains(query, "uri = ANY") {
			t.Fatalf("no uris given, must not restrict:\n%s", query)
		}

		if len(args) != 2 {
			t.Fatalf("unexpected args: %v", args)
		}
	})

	t.Run("unique_count", func(t *testing.T) {
		query, _ := buildCountsQuery(start, end, nil, true)

		if !strings.Contains(query, "COUNT(DISTINCT ip)") {
			t.Fatalf("unique must count distinct ips:\n%s", query)
		}
	})

	t.Run("uri_restriction", func(t *testing.T) {
		query, args := buildCountsQuery(start, end, []string{"/events/1", "/events/2"}, false)

		if !strings.Contains(query, "uri = ANY($3)") {
			t.Fatalf("uris must bind as one array:\n%s", query)
		}

		uris, ok := args[2].([]string)

		if !ok || len(uris) != 2 {
			t.Fatalf("unexpected uris arg: %v", args[2])
		}
	})
}
