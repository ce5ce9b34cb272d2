//go:build cgo && sqlite_fts5

package store

// The cgo driver only ships FTS5 when built with the sqlite_fts5 tag, so it
// is registered only then. Select it with Options.Driver = DriverCGO.
import _ "github.com/mattn/go-sqlite3"
