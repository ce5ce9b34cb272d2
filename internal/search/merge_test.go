package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rchart/internal/model"
)

func hit(typ string, id int64, rank float64) model.SearchResult {
	return model.SearchResult{ResultType: typ, ID: id, Title: typ, Rank: rank}
}

func TestMerge_SortsByRankAcrossTypes(t *testing.T) {
	patients := []model.SearchResult{hit(TypePatient, 1, -3.0), hit(TypePatient, 2, -1.0)}
	encounters := []model.SearchResult{hit(TypeEncounter, 10, -5.0)}
	labs := []model.SearchResult{hit(TypeLab, 20, -2.0)}

	got := Merge(10, patients, encounters, labs)

	require.Len(t, got, 4)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(20), got[2].ID)
	assert.Equal(t, int64(2), got[3].ID)
}

func TestMerge_TruncatesAfterSorting(t *testing.T) {
	a := []model.SearchResult{hit(TypePatient, 1, -1.0), hit(TypePatient, 2, -0.5)}
	b := []model.SearchResult{hit(TypeLab, 3, -9.0)}

	got := Merge(2, a, b)

	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestMerge_TiesKeepGroupOrder(t *testing.T) {
	a := []model.SearchResult{hit(TypePatient, 1, -1.0)}
	b := []model.SearchResult{hit(TypeDiagnosis, 2, -1.0)}

	got := Merge(0, a, b)

	require.Len(t, got, 2)
	assert.Equal(t, TypePatient, got[0].ResultType)
	assert.Equal(t, TypeDiagnosis, got[1].ResultType)
}

func TestMerge_EmptyIsNotNil(t *testing.T) {
	got := Merge(5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
