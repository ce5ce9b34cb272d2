// Package seed loads the demo data set and writes it into a store.
//
// Fixtures are authored in CUE (fixtures.cue, embedded at build time). The
// file carries its own schema definitions, so a malformed fixture fails at
// load with a CUE error instead of producing a half-written chart. Series
// such as vitals and lab results are described as trends and expanded
// against the seeding day, which keeps reseeding with the same clock
// byte-for-byte repeatable.
//
// Every Seed method is idempotent: it inspects the store first and reports
// a skipped Result when its data is already present.
package seed
