package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/rchart/internal/model"
	"github.com/roach88/rchart/internal/testutil"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, Options{Now: testutil.NewDeterministicClock().Now})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPatient inserts a patient with only the required fields.
func createTestPatient(t *testing.T, s *Store, first, last string) int64 {
	t.Helper()
	id, err := s.CreatePatient(context.Background(), model.Patient{
		FirstName: first,
		LastName:  last,
		DOB:       "1980-05-05",
		Sex:       "F",
	})
	if err != nil {
		t.Fatalf("CreatePatient(%s %s) failed: %v", first, last, err)
	}
	return id
}

// createTestUser inserts a provider with only the required fields.
func createTestUser(t *testing.T, s *Store, username string) int64 {
	t.Helper()
	id, err := s.CreateUser(context.Background(), model.User{
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "Dana",
		LastName:     "Cole",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return id
}

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func i64p(i int64) *int64     { return &i }
func boolp(b bool) *bool      { return &b }
