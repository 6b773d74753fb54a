package dto

import (
	"bytes"
	"encoding/json"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// Nullable distinguishes a field left out of a PATCH body from one sent as
// null. Set is true when the key was present; Valid is true when it also
// carried a value.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns the value when one was sent.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Null reports an explicit null.
func (n Nullable[T]) Null() bool {
	return n.Set && !n.Valid
}

// fieldErrors collects per-field validation messages; the first message for
// a field wins.
type fieldErrors map[string]string

func (e fieldErrors) add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}
