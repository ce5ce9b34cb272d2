package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// querier is satisfied by *sql.DB and *sql.Tx, so the same read and write
// helpers serve single calls and aggregate transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// call runs fn under the store lock against the shared connection, tags any
// error with op and records the outcome. On a view returned by Atomic, fn
// runs against the view's transaction instead and the lock is already held.
func call[T any](ctx context.Context, s *Store, op string, fn func(q querier) (T, error)) (T, error) {
	var zero T
	q, release, err := s.conn(ctx, op)
	if err != nil {
		s.metrics.ObserveOp(op, err, 0)
		return zero, err
	}
	defer release()

	start := time.Now()
	v, err := fn(q)
	err = classify(op, err)
	s.metrics.ObserveOp(op, err, time.Since(start))
	if err != nil {
		return zero, err
	}
	return v, nil
}

// conn returns the querier op runs against and the func that releases it.
func (s *Store) conn(ctx context.Context, op string) (querier, func(), error) {
	if s.tx != nil {
		if err := ctx.Err(); err != nil {
			return nil, nil, &Error{Kind: KindLock, Op: op, Err: err}
		}
		return s.tx, func() {}, nil
	}
	release, err := s.acquire(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	return s.db, release, nil
}

// callTx is call with fn wrapped in one transaction. Inside an Atomic view
// it uses a savepoint, so fn stays all or nothing without ending the outer
// transaction.
func callTx[T any](ctx context.Context, s *Store, op string, fn func(q querier) (T, error)) (T, error) {
	return call(ctx, s, op, func(_ querier) (T, error) {
		if s.tx != nil {
			return inSavepoint(ctx, s.tx, fn)
		}

		// Cancellation is checked per statement. A cancelled BeginTx context
		// makes database/sql discard the connection, and with it the pragmas.
		var zero T
		tx, err := s.db.BeginTx(context.WithoutCancel(ctx), nil)
		if err != nil {
			return zero, fmt.Errorf("begin: %w", err)
		}
		committed := false
		defer func() {
			if !committed {
				tx.Rollback()
			}
		}()

		v, err := fn(tx)
		if err != nil {
			return zero, err
		}
		if err := tx.Commit(); err != nil {
			return zero, fmt.Errorf("commit: %w", err)
		}
		committed = true
		return v, nil
	})
}

func inSavepoint[T any](ctx context.Context, tx *sql.Tx, fn func(q querier) (T, error)) (T, error) {
	var zero T
	if _, err := tx.ExecContext(ctx, `SAVEPOINT nested`); err != nil {
		return zero, fmt.Errorf("savepoint: %w", err)
	}
	released := false
	defer func() {
		if !released {
			bg := context.WithoutCancel(ctx)
			tx.ExecContext(bg, `ROLLBACK TO nested`)
			tx.ExecContext(bg, `RELEASE nested`)
		}
	}()

	v, err := fn(tx)
	if err != nil {
		return zero, err
	}
	if _, err := tx.ExecContext(ctx, `RELEASE nested`); err != nil {
		return zero, fmt.Errorf("release savepoint: %w", err)
	}
	released = true
	return v, nil
}

func exec(ctx context.Context, s *Store, op string, fn func(q querier) error) error {
	_, err := call(ctx, s, op, func(q querier) (struct{}, error) {
		return struct{}{}, fn(q)
	})
	return err
}

func execTx(ctx context.Context, s *Store, op string, fn func(q querier) error) error {
	_, err := callTx(ctx, s, op, func(q querier) (struct{}, error) {
		return struct{}{}, fn(q)
	})
	return err
}

// queryOne returns nil, nil when the query yields no row.
func queryOne[T any](ctx context.Context, q querier, scan func(scanner) (T, error), query string, args ...any) (*T, error) {
	v, err := scan(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// queryAll returns an empty slice, not nil, when nothing matches.
func queryAll[T any](ctx context.Context, q querier, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// insert executes an INSERT and returns the new row id.
func insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// execAffecting executes an UPDATE or DELETE keyed by id and fails with
// not_found when no row matched.
func execAffecting(ctx context.Context, q querier, op, what string, id int64, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(op, what, id)
	}
	return nil
}

// arg converts an optional field to a driver value, nil when absent.
func arg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// ptr converts a nullable column to an optional field.
func ptr[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

// boolPtr decodes a nullable 0/1 column.
func boolPtr(n sql.Null[int64]) *bool {
	if !n.Valid {
		return nil
	}
	b := n.V != 0
	return &b
}

// orDefault returns *p, or def when p is nil.
func orDefault[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// boolInt encodes a boolean as 0/1.
func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
