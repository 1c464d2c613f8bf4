package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a local calendar date without a time component.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, and day in local time.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a YYYY-MM-DD string as a local calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// AddMonths returns the date shifted by n calendar months.
func (d Date) AddMonths(n int) Date {
	return Date{d.Time.AddDate(0, n, 0)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string; empty and null mean the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; dates are stored as TEXT.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		if v == "" {
			*d = Date{}
			return nil
		}
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}
