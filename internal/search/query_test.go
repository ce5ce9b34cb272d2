package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"empty", "", "", false},
		{"whitespace only", "  \t\n ", "", false},
		{"single token", "chest", `"chest"*`, true},
		{"two tokens are ANDed", "chest pain", `"chest"* "pain"*`, true},
		{"collapses runs of whitespace", "  chest \t pain  ", `"chest"* "pain"*`, true},
		{"doubles embedded quotes", `a"b`, `"a""b"*`, true},
		{"lone quote", `"`, `""""*`, true},
		{"operators are literal", "NOT OR", `"NOT"* "OR"*`, true},
		{"fullwidth folds to ascii", "ｃｈｅｓｔ", `"chest"*`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compile(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, Limit(0, DefaultLimit))
	assert.Equal(t, DefaultQuickLimit, Limit(-3, DefaultQuickLimit))
	assert.Equal(t, 7, Limit(7, DefaultLimit))
}
