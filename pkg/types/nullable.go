package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NullableString distinguishes an omitted JSON field from an explicit null,
// which PATCH-style updates use to clear optional columns such as photo.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler. Blank strings are treated as null.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	n.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}

	var parsed string
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	parsed = strings.TrimSpace(parsed)
	if parsed == "" {
		n.Value = nil
		return nil
	}
	n.Value = &parsed
	return nil
}

// Apply overwrites dst when the field was present in the payload.
func (n NullableString) Apply(dst **string) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}
