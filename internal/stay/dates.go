package stay

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dateOnlyLayout = "2006-01-02"
	displayLayout  = "02/01/2006"

	// MissingDateLabel is shown on documents whose date is not filled in yet.
	MissingDateLabel = "À renseigner"
)

var ErrInvalidDate = errors.New("invalid_date")

// Date is a calendar date anchored at UTC midnight.
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime keeps the calendar day of t as seen in UTC.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate accepts YYYY-MM-DD and RFC3339 timestamps; the time of day is dropped.
func ParseDate(raw string) (Date, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Date{}, ErrInvalidDate
	}
	if parsed, err := time.Parse(dateOnlyLayout, value); err == nil {
		return FromTime(parsed), nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return FromTime(parsed), nil
	}
	return Date{}, ErrInvalidDate
}

// ParseOptional returns nil for blank input.
func ParseOptional(raw string) (*Date, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Year() int { return d.t.Year() }

func (d Date) Month() time.Month { return d.t.Month() }

func (d Date) AddDays(days int) Date {
	return Date{t: d.t.AddDate(0, 0, days)}
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// String renders YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateOnlyLayout)
}

// Format renders dd/MM/yyyy.
func (d Date) Format() string {
	return d.t.Format(displayLayout)
}

// FormatOptional renders dd/MM/yyyy or the missing-date label.
func FormatOptional(d *Date) string {
	if d == nil || d.IsZero() {
		return MissingDateLabel
	}
	return d.Format()
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType maps Date onto a DATE column.
func (Date) GormDataType() string { return "date" }

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = FromTime(v)
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("stay: cannot scan %T into Date", src)
	}
	return nil
}

// scanText reads the leading calendar day of driver-formatted timestamps.
func (d *Date) scanText(v string) error {
	v = strings.TrimSpace(v)
	if len(v) > len(dateOnlyLayout) {
		v = v[:len(dateOnlyLayout)]
	}
	return d.UnmarshalText([]byte(v))
}
