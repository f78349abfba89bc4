package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the date-time literal format used everywhere at the API boundary.
const Layout = "2006-01-02 15:04:05"

func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q, expected format yyyy-MM-dd HH:mm:ss", s)
	}

	return t, nil
}

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// DateTime marshals as the boundary format instead of RFC 3339.
type DateTime time.Time

func (d DateTime) Time() time.Time {
	return time.Time(d)
}

func (d DateTime) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Format(time.Time(d)) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)

	if s == "null" || s == "" {
		*d = DateTime(time.Time{})
		return nil
	}

	t, err := Parse(s)

	if err != nil {
		return err
	}

	*d = DateTime(t)
	return nil
}
