package types

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a same-day wall-clock value with minute granularity, stored
// and compared as "HH:MM". Lexicographic comparison matches chronological
// order because the format is fixed-width.
type TimeOfDay string

// ParseTimeOfDay validates and normalizes an "HH:MM" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time of day %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", value)
	}
	return TimeOfDay(fmt.Sprintf("%02d:%02d", hour, minute)), nil
}

// String implements fmt.Stringer.
func (t TimeOfDay) String() string {
	return string(t)
}

// IsValid reports whether the value parses as a normalized "HH:MM".
func (t TimeOfDay) IsValid() bool {
	parsed, err := ParseTimeOfDay(string(t))
	return err == nil && parsed == t
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return string(t) < string(other)
}

// Minutes returns the offset from midnight in minutes.
func (t TimeOfDay) Minutes() int {
	parsed, err := ParseTimeOfDay(string(t))
	if err != nil {
		return 0
	}
	hour, _ := strconv.Atoi(string(parsed[:2]))
	minute, _ := strconv.Atoi(string(parsed[3:]))
	return hour*60 + minute
}

// HoursUntil returns the duration from t to end in fractional hours.
// Negative when end precedes t.
func (t TimeOfDay) HoursUntil(end TimeOfDay) float64 {
	return float64(end.Minutes()-t.Minutes()) / 60
}

// Value implements driver.Valuer for database storage.
func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid time of day %q", string(t))
	}
	return string(t), nil
}

// Scan implements sql.Scanner.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(value string) error {
	// Postgres time columns render as "HH:MM:SS"; keep minute granularity.
	if len(value) > 5 {
		value = value[:5]
	}
	parsed, err := ParseTimeOfDay(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
