// Package errx provides the coded errors the shortener store returns for
// expected failures. Codes are part of the store's public result contract:
// an Error renders its message prefixed with the code, which is exactly the
// message field of the failure envelope.

package errx

import (
	"errors"
	"fmt"
)

// Code identifies the failure class of a store operation. The three values
// below are the only codes the store ever returns; errors without a code
// are exceptional and outside the result contract.
type Code string

const (
	URLSyntax Code = "URL_SYNTAX"
	Domain    Code = "DOMAIN"
	NotFound  Code = "NOT_FOUND"
)

type Error struct {
	Op   string
	Code Code
	Err  error
}

func E(op string, code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:   op,
		Code: code,
		Err:  err,
	}
}

// Error renders "<code>: <cause>". The op never appears in the message;
// hosts read it through OpOf.
func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
