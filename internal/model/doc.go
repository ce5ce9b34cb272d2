// Package model provides the record types exchanged with the clinical
// record store.
//
// This package contains type definitions only. Every other internal package
// imports model; model imports nothing internal.
//
// Conventions:
//   - Identifiers are int64 row ids; ID is zero until the row is created
//   - Optional fields are pointers tagged omitempty (absent, not sentinel)
//   - Dates and timestamps are ISO 8601 strings as entered
//   - All JSON tags use snake_case
package model
