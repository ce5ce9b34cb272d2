// Package api is the boundary between the record store and whatever drives
// it (today the CLI). Every call gets a request id and one completion log
// line, and every failure leaves as an *Error carrying only a code and a
// fixed message.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Options configure a Boundary. The zero value is usable.
type Options struct {
	// Logger receives one event per call. Nil discards them.
	Logger *zerolog.Logger

	// IDs generates request ids. Defaults to UUIDv7Generator.
	IDs IDGenerator

	// Now is used to time calls. Defaults to time.Now.
	Now func() time.Time
}

// Boundary runs operations on behalf of callers.
type Boundary struct {
	log zerolog.Logger
	ids IDGenerator
	now func() time.Time
}

// New creates a Boundary.
func New(opts Options) *Boundary {
	b := &Boundary{log: zerolog.Nop(), ids: opts.IDs, now: opts.Now}
	if opts.Logger != nil {
		b.log = opts.Logger.With().Str("component", "api").Logger()
	}
	if b.ids == nil {
		b.ids = UUIDv7Generator{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Invoke runs fn as the named command. On failure the returned error is an
// *Error whose message is safe to show; the raw cause is logged with the
// request id. A panic in fn is recovered and reported as INTERNAL.
func Invoke[T any](ctx context.Context, b *Boundary, command string, fn func(context.Context) (T, error)) (result T, err error) {
	requestID := b.ids.Generate()
	start := b.now()

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = b.fail(command, requestID, start, fmt.Errorf("panic: %v", r), CodeInternal)
		}
	}()

	result, err = fn(ctx)
	if err != nil {
		var zero T
		return zero, b.fail(command, requestID, start, err, CodeFor(err))
	}

	b.log.Info().
		Str("request_id", requestID).
		Str("command", command).
		Dur("duration", b.now().Sub(start)).
		Str("outcome", "ok").
		Msg("request completed")
	return result, nil
}

func (b *Boundary) fail(command, requestID string, start time.Time, cause error, code Code) *Error {
	b.log.Error().
		Err(cause).
		Str("request_id", requestID).
		Str("command", command).
		Dur("duration", b.now().Sub(start)).
		Str("outcome", string(code)).
		Msg("request failed")
	return newError(code, requestID)
}
