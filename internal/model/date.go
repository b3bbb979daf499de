package model

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day without a time of day. The zero value means "no date".
type Date struct {
	day time.Time // midnight UTC
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{day: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf strips the time of day from t, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts "2006-01-02" or an RFC 3339 timestamp. Blank input yields the zero Date.
func ParseDate(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("model: invalid date %q", raw)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d.day.IsZero() }

func (d Date) AddDays(n int) Date {
	return Date{day: d.day.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.day.Before(o.day) }
func (d Date) After(o Date) bool  { return d.day.After(o.day) }
func (d Date) Equal(o Date) bool  { return d.day.Equal(o.day) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.day.Compare(o.day) }

func (d Date) Weekday() time.Weekday { return d.day.Weekday() }

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	y, m, day := d.day.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.day.Format(layout)
}

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
