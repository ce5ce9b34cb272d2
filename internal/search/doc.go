// Package search turns free text into full-text MATCH expressions and merges
// ranked hits from several entity types into one result list.
//
// Query compilation:
//   - Input is NFKC-normalized, then split on whitespace
//   - Each token is quoted (embedded quotes doubled) and given a prefix
//     marker, so "hyp" matches "hypertension"
//   - Tokens are joined with spaces, which FTS5 treats as AND
//   - An empty or whitespace-only input compiles to nothing and callers
//     return no results rather than matching everything
//
// Ranking follows FTS5 bm25: lower rank is a better match.
package search
