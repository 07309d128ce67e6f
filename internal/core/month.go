package core

import (
	"fmt"
	"time"
)

// Month is a calendar month in a specific year.
type Month struct {
	Year  int
	Month int
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: int(now.Month())}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: int(t.Month())}, nil
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Label formats the month for display, e.g. "March 2024".
func (m Month) Label() string {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Bounds returns the first and last calendar day of the month.
func (m Month) Bounds() (Date, Date) {
	start := NewDate(m.Year, m.Month, 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return start, end
}

// Next returns the following month.
func (m Month) Next() Month {
	t := time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: int(t.Month())}
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m Month) Validate() error {
	if m.Year < 1 || m.Month < 1 || m.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler so months serialize as YYYY-MM.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
