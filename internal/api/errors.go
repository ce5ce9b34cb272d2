package api

import (
	"fmt"

	"github.com/roach88/rchart/internal/store"
)

// Code is the stable, machine-readable error class returned to callers.
type Code string

const (
	CodeNotFound   Code = "NOT_FOUND"
	CodeConstraint Code = "CONSTRAINT"
	CodeBusy       Code = "BUSY"
	CodeSchema     Code = "SCHEMA"
	CodeQuery      Code = "QUERY"
	CodeInternal   Code = "INTERNAL"
)

// messages are fixed so that no driver text, SQL or file path reaches a
// caller. The raw error is logged instead.
var messages = map[Code]string{
	CodeNotFound:   "The requested record does not exist.",
	CodeConstraint: "The change conflicts with existing records.",
	CodeBusy:       "The record store is busy or closed. Try again.",
	CodeSchema:     "The record store could not be opened.",
	CodeQuery:      "The search could not be understood.",
	CodeInternal:   "An unexpected error occurred.",
}

// Error is the only error type Invoke returns.
type Error struct {
	Code      Code   `json:"code" yaml:"code"`
	Message   string `json:"message" yaml:"message"`
	RequestID string `json:"request_id" yaml:"request_id"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (request %s)", e.Code, e.Message, e.RequestID)
}

// CodeFor maps a store error kind to its boundary code.
func CodeFor(err error) Code {
	switch store.KindOf(err) {
	case store.KindNotFound:
		return CodeNotFound
	case store.KindConstraint:
		return CodeConstraint
	case store.KindLock:
		return CodeBusy
	case store.KindSchema:
		return CodeSchema
	case store.KindQuery:
		return CodeQuery
	default:
		return CodeInternal
	}
}

func newError(code Code, requestID string) *Error {
	return &Error{Code: code, Message: messages[code], RequestID: requestID}
}
