package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string into a Date in UTC.
func ParseDate(raw string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return Date{Time: t}, nil
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("models.Date: unsupported Scan type %T", value)
	}
}

func (d *Date) scanString(raw string) error {
	// MySQL may hand back DATE columns as "2006-01-02" or as a full timestamp.
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
