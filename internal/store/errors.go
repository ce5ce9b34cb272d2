package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Kind categorizes store failures so callers can branch without parsing
// driver messages.
type Kind string

const (
	// KindSchema means the store could not be opened or migrated.
	KindSchema Kind = "schema"

	// KindNotFound means an update or delete matched no row.
	KindNotFound Kind = "not_found"

	// KindConstraint means a foreign key or uniqueness rule rejected a write.
	KindConstraint Kind = "constraint"

	// KindLock means the store lock could not be acquired (closed store,
	// cancelled context) or the database file was busy.
	KindLock Kind = "lock"

	// KindQuery means a statement was rejected as malformed, typically a
	// full-text MATCH expression.
	KindQuery Kind = "query"

	// KindInternal covers everything else.
	KindInternal Kind = "internal"
)

// Error is the tagged error returned by every exported Store method.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// ErrClosed is the cause of lock errors on a closed store.
var ErrClosed = errors.New("store is closed")

// KindOf returns the Kind of a tagged error anywhere in err's chain, or
// KindInternal for untagged errors. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a not_found store error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsConstraint reports whether err is a constraint store error.
func IsConstraint(err error) bool { return err != nil && KindOf(err) == KindConstraint }

// IsLock reports whether err is a lock store error.
func IsLock(err error) bool { return err != nil && KindOf(err) == KindLock }

// IsSchema reports whether err is a schema store error.
func IsSchema(err error) bool { return err != nil && KindOf(err) == KindSchema }

// IsQuery reports whether err is a query store error.
func IsQuery(err error) bool { return err != nil && KindOf(err) == KindQuery }

func notFound(op, what string, id int64) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("%s %d does not exist", what, id)}
}

// classify tags err with the kind its driver error implies. Errors that are
// already tagged keep their kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: kindFor(err), Op: op, Err: err}
}

func kindFor(err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindLock
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return KindConstraint
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return KindLock
		}
	}

	// The cgo driver reports the same conditions through its message text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "constraint failed"):
		return KindConstraint
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "database table is locked"):
		return KindLock
	case isQueryMessage(msg):
		return KindQuery
	}
	return KindInternal
}

// isQueryError reports whether err is FTS5 rejecting a MATCH expression.
// Other statement errors, such as an unknown column, are bugs and stay
// internal.
func isQueryError(err error) bool {
	return err != nil && isQueryMessage(strings.ToLower(err.Error()))
}

func isQueryMessage(msg string) bool {
	return strings.Contains(msg, "fts5:") ||
		strings.Contains(msg, "malformed match") ||
		strings.Contains(msg, "unterminated string")
}
