package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray stores an ordered tag list as a JSON column.
type StringArray []string

// NewStringArray copies in so stored records never alias caller slices.
func NewStringArray(in []string) StringArray {
	out := make(StringArray, len(in))
	copy(out, in)
	return out
}

// Clone returns an independent copy.
func (a StringArray) Clone() StringArray {
	return NewStringArray(a)
}

// MarshalJSON always emits an array, never null.
func (a StringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.StringArray: Scan on nil pointer")
	}

	var raw string
	switch v := value.(type) {
	case nil:
		*a = StringArray{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.StringArray: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*a = StringArray{}
		return nil
	}
	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return fmt.Errorf("models.StringArray: %w", err)
	}
	*a = arr
	return nil
}
