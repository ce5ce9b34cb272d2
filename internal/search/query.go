package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entity types indexed for search, in the order they are queried.
const (
	TypePatient    = "patient"
	TypeEncounter  = "encounter"
	TypeDiagnosis  = "diagnosis"
	TypeMedication = "medication"
	TypeLab        = "lab"
)

// Default result limits.
const (
	DefaultLimit      = 20
	DefaultQuickLimit = 50
)

// EntityTypes lists every indexed entity type.
var EntityTypes = []string{TypePatient, TypeEncounter, TypeDiagnosis, TypeMedication, TypeLab}

// Tokens returns the normalized whitespace-separated tokens of q.
func Tokens(q string) []string {
	return strings.Fields(norm.NFKC.String(q))
}

// Compile converts free text into an FTS5 MATCH expression.
// It returns false when q holds no tokens.
func Compile(q string) (string, bool) {
	tokens := Tokens(q)
	if len(tokens) == 0 {
		return "", false
	}
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"*`
	}
	return strings.Join(parts, " "), true
}

// Limit returns n, or def when n is not positive.
func Limit(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
