package types

import "encoding/json"

// Optional distinguishes a JSON field that was absent from one that was
// explicitly provided, including an explicit null. Update payloads use it for
// nullable columns so "leave unchanged" and "clear" stay distinguishable.
type Optional[T any] struct {
	Valid bool
	Value T
}

// UnmarshalJSON marks the field as provided and decodes into Value. A JSON
// null leaves Value at its zero value with Valid set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Valid = true
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON round-trips the wrapped value.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
