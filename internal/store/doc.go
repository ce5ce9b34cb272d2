// Package store provides SQLite-backed storage for the clinical record.
//
// The store holds:
//   - Patients and their clinical facts (diagnoses, medications, vitals,
//     labs, scores, encounters, allergies, vaccinations, history, todos,
//     goals, timeline events, prescriptions, appointments, messages)
//   - Provider profiles with education, badges and settings
//   - Patient worklists with column configuration and members
//   - Full-text shadow tables over patients, encounters, diagnoses,
//     medications and labs
//
// # Access Model
//
// One *Store owns one connection behind one lock. Every exported method
// acquires the lock, runs its statements and releases it. Aggregate reads
// (FullPatientRecord, FullProviderRecord) run in a single transaction.
//
// # Results and Errors
//
//   - Lookups by id return (nil, nil) when no row exists
//   - Lists return empty slices, never nil
//   - Update and delete of a missing row return a KindNotFound *Error
//   - Foreign key and uniqueness violations return KindConstraint
//   - A closed store or cancelled context returns KindLock
//
// # Search Index
//
// Each searchable table has an FTS5 shadow table whose rowid is the source
// id. AFTER INSERT/DELETE/UPDATE triggers keep it in step within the same
// statement, updates deleting the old shadow row before inserting the new
// one. Open rebuilds every shadow table from scratch to repair files
// written before the index existed.
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: referential integrity is enforced
//
// Schema changes are forward-only steps recorded in schema_migrations.
package store
