package field

import "encoding/json"

// Optional distinguishes a JSON field that was absent from one that was
// explicitly set, including set to null. Patch semantics depend on this:
// absent means "leave unchanged", null means "clear".
type Optional[T any] struct {
	present bool
	null    bool
	value   T
}

// Set builds a present, non-null Optional.
func Set[T any](value T) Optional[T] {
	return Optional[T]{present: true, value: value}
}

// Null builds a present Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// Absent builds an Optional representing a missing field.
func Absent[T any]() Optional[T] {
	return Optional[T]{}
}

// UnmarshalJSON is only invoked when the key is present in the payload, so
// presence is recorded unconditionally.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	if string(data) == "null" {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// Present reports whether the field appeared in the payload at all.
func (o Optional[T]) Present() bool {
	return o.present
}

// Null reports whether the field was explicitly set to null.
func (o Optional[T]) Null() bool {
	return o.present && o.null
}

// Value returns the carried value and whether it is usable (present and
// not null).
func (o Optional[T]) Value() (T, bool) {
	if !o.present || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Assign writes a present optional into a column change set, mapping an
// explicit null to a NULL column value. Absent optionals leave the change
// set untouched.
func Assign[T any](changes map[string]interface{}, column string, value Optional[T]) {
	if !value.present {
		return
	}
	if value.null {
		changes[column] = nil
		return
	}
	changes[column] = value.value
}
