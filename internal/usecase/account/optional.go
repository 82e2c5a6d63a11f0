package account

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OptionalString tells an absent JSON field apart from an explicit null.
// Absent leaves Set false; null sets Set and Null.
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		o.Value = ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some returns a set, non-null value.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// Null returns an explicit null.
func Null() OptionalString {
	return OptionalString{Set: true, Null: true}
}

// Cleared reports an explicit null or a blank string.
func (o OptionalString) Cleared() bool {
	return o.Set && (o.Null || strings.TrimSpace(o.Value) == "")
}
