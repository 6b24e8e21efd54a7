package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Date is a calendar date that marshals as "YYYY-MM-DD", matching the stored
// payload format.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (*Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Clock is a wall-clock time of day that marshals as "HH:MM".
type Clock struct {
	time.Time
}

// NewClock builds a Clock from hour and minute.
func NewClock(hour, minute int) *Clock {
	return &Clock{Time: time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)}
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (*Clock, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return &Clock{Time: t}, nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.Format(clockLayout) + `"`), nil
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", s, err)
	}
	c.Time = t
	return nil
}
