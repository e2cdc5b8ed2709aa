package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is how dates and datetimes are stored in the snapshot.
const TimestampLayout = "2006-01-02 15:04:05"

// Text is a nullable column that tolerates whatever storage class SQLite hands
// back for loosely typed snapshot columns (dates, ids, free text).
type Text struct {
	String string
	Valid  bool
}

func NewText(s string) Text {
	return Text{String: s, Valid: true}
}

func (t *Text) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.String, t.Valid = "", false
	case string:
		t.String, t.Valid = v, true
	case []byte:
		t.String, t.Valid = string(v), true
	case time.Time:
		t.String, t.Valid = formatTime(v), true
	case int64:
		t.String, t.Valid = strconv.FormatInt(v, 10), true
	case float64:
		t.String, t.Valid = strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		t.String, t.Valid = strconv.FormatBool(v), true
	default:
		return fmt.Errorf("Text.Scan: unsupported type %T", src)
	}
	return nil
}

func (t Text) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.String, nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String)
}

func (t *Text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.String, t.Valid = "", false
		return nil
	}
	t.Valid = true
	return json.Unmarshal(b, &t.String)
}

// OrEmpty returns the value or "" when null.
func (t Text) OrEmpty() string {
	return t.String
}

// Time parses the value as a date or timestamp.
func (t Text) Time() (time.Time, bool) {
	if !t.Valid {
		return time.Time{}, false
	}
	return ParseTime(t.String)
}

var timeLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

// ParseTime accepts the date layouts the loader and the driver produce.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func formatTime(ts time.Time) string {
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 {
		return ts.Format("2006-01-02")
	}
	return ts.Format(TimestampLayout)
}

// NormalizeValue converts a raw driver value into something encoding/json renders
// the way the dashboard expects. Used for schema-agnostic table browsing.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return formatTime(val)
	default:
		return val
	}
}
