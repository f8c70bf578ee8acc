package familywall

import (
	"bytes"
	"encoding/json"
)

// Section is one optional payload of an upstream response. The API wraps
// every payload two levels deep ({"r":{"r":<payload>}}) and omits sections it
// did not compute, so any level may be missing.
type Section[T any] struct {
	value   T
	present bool
}

// Present wraps v as a section that was returned by the API.
func Present[T any](v T) Section[T] {
	return Section[T]{value: v, present: true}
}

// Get returns the payload and whether the section was present.
func (s Section[T]) Get() (T, bool) {
	return s.value, s.present
}

// IsZero reports an absent section so encoding/json can omit it.
func (s Section[T]) IsZero() bool {
	return !s.present
}

// UnmarshalJSON decodes the {"r":{"r":...}} envelope. A null or missing
// level leaves the section absent.
func (s *Section[T]) UnmarshalJSON(data []byte) error {
	*s = Section[T]{}
	if isNull(data) {
		return nil
	}
	var env struct {
		R *struct {
			R json.RawMessage `json:"r"`
		} `json:"r"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.R == nil || isNull(env.R.R) {
		return nil
	}
	var v T
	if err := json.Unmarshal(env.R.R, &v); err != nil {
		return err
	}
	s.value = v
	s.present = true
	return nil
}

// MarshalJSON re-wraps the payload in the upstream envelope.
func (s Section[T]) MarshalJSON() ([]byte, error) {
	if !s.present {
		return []byte("null"), nil
	}
	type inner struct {
		R T `json:"r"`
	}
	type outer struct {
		R inner `json:"r"`
	}
	return json.Marshal(outer{R: inner{R: s.value}})
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Flag is a boolean the API encodes either as a JSON bool or as the string
// "true"/"false". Anything other than true or "true" decodes to false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Flag(s == "true")
		return nil
	}
	*f = false
	return nil
}

// Text is a string field that the API occasionally sends as a number or bool.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	*t = Text(bytes.TrimSpace(data))
	return nil
}
