package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without time-of-day semantics. It serializes as an
// ISO date string, the format the persisted coursework collection uses.
type Date struct {
	t time.Time
}

// ParseDate parses an ISO date (YYYY-MM-DD). A full RFC 3339 timestamp is
// accepted and truncated to its day.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(dateLayout, value); err == nil {
		return Date{t: t}, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", value)
	}

	return DateOf(t), nil
}

// DateOf truncates a point in time to its calendar day.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// DaysUntil returns the number of whole days from d to other; negative when
// other is in the past relative to d.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / (24 * time.Hour))
}

// Time returns the underlying midnight instant.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the date as an ISO date string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
