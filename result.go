package shortstore

import (
	"encoding/json"
	"errors"

	"github.com/sundayezeilo/shortstore/errx"
)

// Result is the envelope form of an operation outcome: a success carrying
// a value, a success without one, or a coded failure. Its JSON encoding is
// the store's wire contract.
type Result struct {
	value    any
	hasValue bool
	err      *errx.Error
}

// OK returns a success Result carrying a value.
func OK(v any) Result {
	return Result{value: v, hasValue: true}
}

// Empty returns a success Result without a value.
func Empty() Result {
	return Result{}
}

// Fail converts an operation error into a failure Result. The second
// return is false when the error carries no code; such errors are
// exceptional and must not be rendered as envelopes.
func Fail(err error) (Result, bool) {
	var e *errx.Error
	if !errors.As(err, &e) || e.Code == "" {
		return Result{}, false
	}
	return Result{err: e}, true
}

// Value returns the carried value and whether one is present.
func (r Result) Value() (any, bool) {
	return r.value, r.hasValue
}

// Failed reports whether the Result is a failure.
func (r Result) Failed() bool { return r.err != nil }

// Code returns the failure code, or "" for successes.
func (r Result) Code() errx.Code {
	if r.err == nil {
		return ""
	}
	return r.err.Code
}

type resultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MarshalJSON encodes the three envelope shapes: {"value":...} for a
// success with a value, {} for a success without one, and
// {"error":{"code":...,"message":...}} for a failure. The value field is
// kept even for zero values.
func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.err != nil:
		return json.Marshal(struct {
			Error resultError `json:"error"`
		}{resultError{Code: string(r.err.Code), Message: r.err.Error()}})
	case r.hasValue:
		return json.Marshal(struct {
			Value any `json:"value"`
		}{r.value})
	default:
		return []byte("{}"), nil
	}
}
