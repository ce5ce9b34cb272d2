// Package backup exports point-in-time copies of the record database to a
// blob sink.
//
// A snapshot is produced with the store's VACUUM INTO support into a
// temporary directory, then streamed to the configured Sink under a
// timestamped key. Sinks are create-only: an existing key is never
// overwritten.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/rchart/internal/config"
)

// Sink drivers.
const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// KeyPrefix starts every snapshot key.
const KeyPrefix = "rchart-"

// ErrExists is returned by Sink.Put when the key is already taken.
var ErrExists = errors.New("backup already exists")

// Object describes one stored snapshot.
type Object struct {
	Key       string    `json:"key" yaml:"key"`
	Size      int64     `json:"size" yaml:"size"`
	Location  string    `json:"location" yaml:"location"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Sink stores snapshot files.
type Sink interface {
	Driver() string
	// Put stores r under key. It fails with ErrExists if key is present.
	Put(ctx context.Context, key string, r io.Reader) (Object, error)
	// List returns stored snapshots ordered by key.
	List(ctx context.Context) ([]Object, error)
}

// Source produces a consistent copy of a database at dest.
type Source interface {
	Snapshot(ctx context.Context, dest string) error
}

// Options configure an Exporter.
type Options struct {
	Logger *zerolog.Logger
	Now    func() time.Time
	// TempDir holds the snapshot until it is uploaded. Defaults to
	// os.TempDir.
	TempDir string
}

// Exporter snapshots a Source into a Sink.
type Exporter struct {
	src     Source
	sink    Sink
	log     zerolog.Logger
	now     func() time.Time
	tempDir string
}

// New returns an Exporter.
func New(src Source, sink Sink, opts Options) *Exporter {
	e := &Exporter{src: src, sink: sink, log: zerolog.Nop(), now: opts.Now, tempDir: opts.TempDir}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "backup").Str("driver", sink.Driver()).Logger()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// KeyFor names the snapshot taken at t.
func KeyFor(t time.Time) string {
	return KeyPrefix + t.UTC().Format("20060102T150405Z") + ".db"
}

// Export takes a snapshot and stores it. The temporary copy is removed
// whether or not the upload succeeds.
func (e *Exporter) Export(ctx context.Context) (Object, error) {
	start := e.now()
	key := KeyFor(start)

	dir, err := os.MkdirTemp(e.tempDir, "rchart-snapshot-")
	if err != nil {
		return Object{}, fmt.Errorf("create snapshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	tmp := filepath.Join(dir, key)
	if err := e.src.Snapshot(ctx, tmp); err != nil {
		return Object{}, fmt.Errorf("snapshot database: %w", err)
	}

	f, err := os.Open(tmp)
	if err != nil {
		return Object{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	obj, err := e.sink.Put(ctx, key, f)
	if err != nil {
		return Object{}, fmt.Errorf("store snapshot %s: %w", key, err)
	}

	e.log.Info().
		Str("key", obj.Key).
		Int64("bytes", obj.Size).
		Str("location", obj.Location).
		Msg("backup stored")
	return obj, nil
}

// List returns the snapshots in the sink.
func (e *Exporter) List(ctx context.Context) ([]Object, error) {
	objs, err := e.sink.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return objs, nil
}

// OpenSink builds the sink selected by cfg.BackupDriver.
func OpenSink(ctx context.Context, cfg *config.Config) (Sink, error) {
	switch cfg.BackupDriver {
	case DriverFS, "":
		return NewFS(cfg.BackupDir)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.BackupS3Bucket,
			Region:    cfg.BackupS3Region,
			Endpoint:  cfg.BackupS3Endpoint,
			PathStyle: cfg.BackupS3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown backup driver %q", cfg.BackupDriver)
	}
}

func isSnapshotKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefix) && strings.HasSuffix(key, ".db")
}
