package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrTimeOverflow is returned when minute arithmetic would cross midnight.
var ErrTimeOverflow = errors.New("time of day overflows past midnight")

// TimeOfDay is a wall-clock time without a date, stored as minutes
// since midnight. It round-trips with Postgres TIME columns and
// serializes as "HH:MM".
type TimeOfDay struct {
	minutes int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return TimeOfDay{minutes: hour*60 + minute}, nil
}

// MustTimeOfDay is a test and seed helper; it panics on invalid input.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS"; seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute, second int
	switch n, _ := fmt.Sscanf(s, "%d:%d:%d", &hour, &minute, &second); n {
	case 2, 3:
		return NewTimeOfDay(hour, minute)
	default:
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
}

func (t TimeOfDay) Hour() int    { return t.minutes / 60 }
func (t TimeOfDay) Minute() int  { return t.minutes % 60 }
func (t TimeOfDay) Minutes() int { return t.minutes }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Add returns t shifted forward by the given number of minutes.
// Results at or past 24:00 fail with ErrTimeOverflow; bookings never
// roll over to the next calendar date.
func (t TimeOfDay) Add(minutes int) (TimeOfDay, error) {
	total := t.minutes + minutes
	if total >= 24*60 {
		return TimeOfDay{}, ErrTimeOverflow
	}
	if total < 0 {
		return TimeOfDay{}, fmt.Errorf("time of day underflow")
	}
	return TimeOfDay{minutes: total}, nil
}

func (t TimeOfDay) Before(u TimeOfDay) bool { return t.minutes < u.minutes }
func (t TimeOfDay) After(u TimeOfDay) bool  { return t.minutes > u.minutes }
func (t TimeOfDay) Equal(u TimeOfDay) bool  { return t.minutes == u.minutes }

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner for TIME columns.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		parsed, err := NewTimeOfDay(v.Hour(), v.Minute())
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute()), nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. This is the single overlap predicate used
// for all conflict detection.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
