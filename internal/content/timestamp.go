package content

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StorageLayout is the fixed-width UTC layout used to persist timestamps as
// text. Values written with it compare lexically in chronological order.
const StorageLayout = "2006-01-02T15:04:05.000000000Z"

var parseLayouts = []string{
	StorageLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is a nullable instant that keeps the raw stored value when it
// cannot be parsed. Null and empty values are zero; a non-empty Raw with
// Valid=false is a corrupted value.
type Timestamp struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// TimestampOf returns a valid timestamp normalised to UTC.
func TimestampOf(t time.Time) Timestamp {
	t = t.UTC()
	return Timestamp{Time: t, Raw: t.Format(StorageLayout), Valid: true}
}

// ParseTimestamp interprets a stored or user supplied value. Unparsable input
// is preserved in Raw.
func ParseTimestamp(raw string) Timestamp {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Timestamp{}
	}
	for _, layout := range parseLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			ts := TimestampOf(parsed)
			ts.Raw = raw
			return ts
		}
	}
	return Timestamp{Raw: raw}
}

// IsZero reports whether the timestamp is null.
func (t Timestamp) IsZero() bool {
	return !t.Valid && strings.TrimSpace(t.Raw) == ""
}

// Corrupted reports whether a value is present but unparsable.
func (t Timestamp) Corrupted() bool {
	return !t.Valid && !t.IsZero()
}

// DueAt reports whether the timestamp is valid and at or before now.
func (t Timestamp) DueAt(now time.Time) bool {
	return t.Valid && !t.Time.After(now)
}

// Ptr returns the parsed time or nil when the timestamp is not valid.
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func (t Timestamp) String() string {
	switch {
	case t.Valid:
		return t.Time.UTC().Format(time.RFC3339Nano)
	case t.IsZero():
		return "<null>"
	default:
		return t.Raw
	}
}

// Key returns the persisted text form.
func (t Timestamp) Key() string {
	if t.Valid {
		return t.Time.UTC().Format(StorageLayout)
	}
	return t.Raw
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*t = Timestamp{}
	case string:
		*t = ParseTimestamp(value)
	case []byte:
		*t = ParseTimestamp(string(value))
	case time.Time:
		*t = TimestampOf(value)
	default:
		return fmt.Errorf("content: cannot scan %T into Timestamp", src)
	}
	return nil
}

// Value implements driver.Valuer. Valid timestamps are written in
// StorageLayout; corrupted values are written back unchanged.
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Key(), nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case t.IsZero():
		return []byte("null"), nil
	case t.Valid:
		return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
	default:
		return json.Marshal(t.Raw)
	}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("content: timestamp must be a string: %w", err)
	}
	*t = ParseTimestamp(raw)
	return nil
}
