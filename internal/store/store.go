package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/roach88/rchart/internal/metrics"
)

// Supported database/sql driver names.
const (
	// DriverModernc is the pure-Go driver. FTS5 is always available.
	DriverModernc = "sqlite"

	// DriverCGO is mattn/go-sqlite3. It is registered only in binaries built
	// with cgo and the sqlite_fts5 tag.
	DriverCGO = "sqlite3"
)

// Options configure Open. The zero value is usable.
type Options struct {
	// Driver selects the database/sql driver. Defaults to DriverModernc.
	Driver string

	// EncryptionKey is reserved for at-rest encryption. It is accepted but
	// not applied: the file is written in plaintext and Open logs a warning
	// whenever a key is supplied. See EncryptionApplied.
	EncryptionKey string

	// Logger receives store events. Nil discards them.
	Logger *zerolog.Logger

	// Metrics receives operation and search counters. Nil disables them.
	Metrics *metrics.Recorder

	// Now supplies timestamps for migration records and list membership.
	// Defaults to time.Now.
	Now func() time.Time
}

// Store is the handle to one clinical record database.
//
// A Store owns a single connection. Every method that touches the database
// takes the store lock for its whole duration, so calls are serialized and an
// aggregate read never observes a half-applied write from this process.
type Store struct {
	db      *sql.DB
	tx      *sql.Tx
	path    string
	driver  string
	version int
	keySet  bool

	log     zerolog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	sem       chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Open creates or opens the database at path and migrates it.
//
// The parent directory is created if needed. The database is configured with:
//   - WAL journal mode
//   - NORMAL synchronous mode
//   - 5-second busy timeout
//   - foreign key enforcement
//
// Any failure while opening or migrating is returned as a schema error and
// the store is closed; a store is never handed out half-migrated.
func Open(path string, opts Options) (*Store, error) {
	const op = "open"

	s := &Store{
		path:    path,
		driver:  opts.Driver,
		keySet:  opts.EncryptionKey != "",
		log:     zerolog.Nop(),
		metrics: opts.Metrics,
		now:     opts.Now,
		sem:     make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if s.driver == "" {
		s.driver = DriverModernc
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "store").Logger()
	}
	if s.now == nil {
		s.now = time.Now
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &Error{Kind: KindSchema, Op: op, Err: fmt.Errorf("create data directory: %w", err)}
	}

	db, err := sql.Open(s.driver, path)
	if err != nil {
		return nil, &Error{Kind: KindSchema, Op: op, Err: fmt.Errorf("open database: %w", err)}
	}

	// One connection: pragmas are per connection and the lock assumes a
	// single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &Error{Kind: KindSchema, Op: op, Err: fmt.Errorf("connect to database: %w", err)}
	}
	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, &Error{Kind: KindSchema, Op: op, Err: err}
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, &Error{Kind: KindSchema, Op: op, Err: err}
	}
	if s.version, err = schemaVersion(ctx, db); err != nil {
		db.Close()
		return nil, &Error{Kind: KindSchema, Op: op, Err: err}
	}

	if s.keySet {
		s.log.Warn().
			Str("path", path).
			Msg("database encryption key supplied but at-rest encryption is not implemented; data is stored in PLAINTEXT")
	}
	s.log.Info().
		Str("path", path).
		Str("driver", s.driver).
		Int("schema_version", s.version).
		Msg("store opened")

	return s, nil
}

// Close waits for the in-flight operation, then closes the connection.
// Later calls on the store fail with a lock error. Close is idempotent.
func (s *Store) Close() error {
	if s.tx != nil {
		return &Error{Kind: KindInternal, Op: "close", Err: errors.New("close called inside Atomic")}
	}
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.sem <- struct{}{}
		err = s.db.Close()
	})
	return err
}

// Atomic runs fn with a view of the store whose operations share one
// transaction. The transaction commits when fn returns nil and rolls back on
// an error or panic, so nothing fn wrote through the view survives a failure.
// The store lock is held until Atomic returns; other callers wait.
//
// Atomic on a view nests through a savepoint. The view must not be used after
// fn returns and cannot be closed.
func (s *Store) Atomic(ctx context.Context, op string, fn func(tx *Store) error) error {
	return execTx(ctx, s, op, func(q querier) error {
		return fn(s.view(q.(*sql.Tx)))
	})
}

// view returns a Store bound to tx that shares s's lock and lifecycle.
func (s *Store) view(tx *sql.Tx) *Store {
	if s.tx == tx {
		return s
	}
	return &Store{
		db:      s.db,
		tx:      tx,
		path:    s.path,
		driver:  s.driver,
		version: s.version,
		keySet:  s.keySet,
		log:     s.log,
		metrics: s.metrics,
		now:     s.now,
		sem:     s.sem,
		done:    s.done,
	}
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string { return s.driver }

// SchemaVersion returns the highest migration version recorded at open.
func (s *Store) SchemaVersion() int { return s.version }

// EncryptionApplied reports whether the database file is encrypted at rest.
// It is always false; a supplied key is recorded but unused.
func (s *Store) EncryptionApplied() bool { return false }

// EncryptionKeySupplied reports whether Open was given an encryption key.
func (s *Store) EncryptionKeySupplied() bool { return s.keySet }

// Snapshot writes a consistent copy of the database to dest using
// VACUUM INTO. dest must not already exist.
func (s *Store) Snapshot(ctx context.Context, dest string) error {
	return exec(ctx, s, "snapshot", func(q querier) error {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
		if _, err := q.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
			return fmt.Errorf("vacuum into: %w", err)
		}
		return nil
	})
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// acquire takes the store lock. It fails with a lock error when the store is
// closed or ctx is done first.
func (s *Store) acquire(ctx context.Context, op string) (func(), error) {
	select {
	case <-s.done:
		return nil, &Error{Kind: KindLock, Op: op, Err: ErrClosed}
	default:
	}

	select {
	case s.sem <- struct{}{}:
	case <-s.done:
		return nil, &Error{Kind: KindLock, Op: op, Err: ErrClosed}
	case <-ctx.Done():
		return nil, &Error{Kind: KindLock, Op: op, Err: ctx.Err()}
	}

	// Close may have won the race for the slot's last release.
	select {
	case <-s.done:
		<-s.sem
		return nil, &Error{Kind: KindLock, Op: op, Err: ErrClosed}
	default:
	}
	return func() { <-s.sem }, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
