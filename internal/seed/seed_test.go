package seed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rchart/internal/model"
	"github.com/roach88/rchart/internal/store"
	"github.com/roach88/rchart/internal/testutil"
)

func newSeeder(t *testing.T) (*Seeder, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "seed.db"), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	sd, err := New(s, Options{Now: func() time.Time { return testutil.Epoch }})
	require.NoError(t, err)
	return sd, s
}

func tableCounts(t *testing.T, s *store.Store) map[string]int64 {
	t.Helper()
	counts, err := s.TableCounts(context.Background())
	require.NoError(t, err)
	out := make(map[string]int64, len(counts))
	for _, c := range counts {
		out[c.Table] = c.Rows
	}
	return out
}

func TestSeedTestData(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()

	res, err := sd.SeedTestData(ctx)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 5, res.Created)

	patients, err := s.ListPatients(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 5)
	assert.Equal(t, "Michael Chen", patients[0].FullName())

	appts, err := s.ListAppointmentsForDate(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, appts, 3)
	assert.Equal(t, "Logan Nguyen", appts[0].PatientName)
	assert.Equal(t, "2024-01-15 09:00", appts[0].AppointmentTime)

	msgs, err := s.ListMessages(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)

	again, err := sd.SeedTestData(ctx)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Equal(t, "database already has 5 patients", again.Message)
}

func TestSeedUserData(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()

	res, err := sd.SeedUserData(ctx)
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	rec, err := s.CurrentProviderRecord(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "dcole", rec.User.Username)
	assert.Len(t, rec.Education, 3)
	assert.Len(t, rec.Badges, 2)
	assert.Equal(t, model.DefaultUserSettings(rec.User.ID).Language, rec.Settings.Language)

	again, err := sd.SeedUserData(ctx)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Equal(t, int64(1), tableCounts(t, s)["users"])
}

func TestSeedPatientDetail_Idempotent(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()
	_, err := sd.SeedTestData(ctx)
	require.NoError(t, err)

	res, err := sd.SeedPatientDetail(ctx, 1, false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Positive(t, res.Created)
	first := tableCounts(t, s)

	again, err := sd.SeedPatientDetail(ctx, 1, false)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Equal(t, first, tableCounts(t, s))
}

// chartSummary projects a record onto content that survives a reseed.
func chartSummary(rec *model.PatientRecord) map[string][]string {
	out := map[string][]string{}
	for _, d := range rec.Diagnoses {
		out["diagnoses"] = append(out["diagnoses"], d.Diagnosis.Name)
		out["links"] = append(out["links"], fmt.Sprintf("%s:%d", d.Diagnosis.Name, len(d.MedicationIDs)))
	}
	for _, v := range rec.Vitals {
		out["vitals"] = append(out["vitals"], v.VitalType+"@"+v.RecordedAt)
	}
	for _, l := range rec.Labs {
		out["labs"] = append(out["labs"], l.Name+"@"+l.RecordedAt)
	}
	for _, td := range rec.Todos {
		due := ""
		if td.DueDate != nil {
			due = *td.DueDate
		}
		out["todos"] = append(out["todos"], td.Description+"@"+due)
	}
	return out
}

func TestSeedPatientDetail_ForceProducesSameChart(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()
	_, err := sd.SeedTestData(ctx)
	require.NoError(t, err)

	_, err = sd.SeedPatientDetail(ctx, 2, false)
	require.NoError(t, err)
	before, err := s.FullPatientRecord(ctx, 2)
	require.NoError(t, err)
	counts := tableCounts(t, s)

	res, err := sd.SeedPatientDetail(ctx, 2, true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	after, err := s.FullPatientRecord(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, counts, tableCounts(t, s))
	assert.Equal(t, chartSummary(before), chartSummary(after))
	assert.Equal(t, before.Patient, after.Patient, "demographics untouched")
}

func TestSeedPatientDetail_Content(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()
	_, err := sd.SeedTestData(ctx)
	require.NoError(t, err)
	_, err = sd.SeedPatientDetail(ctx, 1, false)
	require.NoError(t, err)

	rec, err := s.FullPatientRecord(ctx, 1)
	require.NoError(t, err)

	assert.Len(t, rec.Diagnoses, 4, "resolved diagnosis is not listed")
	assert.Len(t, rec.Medications, 3, "discontinued medication is not listed")

	last := rec.Vitals[len(rec.Vitals)-1]
	assert.Equal(t, "2024-01-15", last.RecordedAt, "trends end on the seeding day")

	var abnormal int
	for _, l := range rec.Labs {
		if l.IsAbnormal != nil && *l.IsAbnormal {
			abnormal++
		}
	}
	assert.Positive(t, abnormal)

	rx, err := s.ListPrescriptions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rx, 3)
	require.NotNil(t, rx[0].Pharmacy)
	assert.Equal(t, "Walgreens - 100 Main St, Detroit", *rx[0].Pharmacy)

	var linked int
	for _, td := range rec.Todos {
		if td.DiagnosisID != nil {
			linked++
		}
	}
	assert.Equal(t, 3, linked)

	hits, err := s.SearchPatientData(ctx, 1, "metformin", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestSeedPatientDetail_MissingPatient(t *testing.T) {
	sd, _ := newSeeder(t)

	_, err := sd.SeedPatientDetail(context.Background(), 99, false)
	assert.True(t, store.IsNotFound(err), "got %v", err)
}

func TestSeedPatientLists(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()
	_, err := sd.SeedTestData(ctx)
	require.NoError(t, err)
	_, err = sd.SeedUserData(ctx)
	require.NoError(t, err)
	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)

	res, err := sd.SeedPatientLists(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)

	lists, err := s.ListPatientLists(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lists, 3)
	assert.Equal(t, "My Patients", lists[0].Name)
	assert.True(t, lists[0].IsDefault)

	full, err := s.GetPatientListWithPatients(ctx, lists[1].ID)
	require.NoError(t, err)
	require.Len(t, full.Patients, 2)
	assert.Equal(t, "Sarah", full.Patients[0].FirstName)

	var visible []string
	for _, c := range full.Columns {
		if c.IsVisible {
			visible = append(visible, c.ColumnKey)
		}
	}
	assert.Equal(t, []string{"name", "dob", "primary_diagnosis", "last_visit", "next_appointment", "notes"}, visible)

	again, err := sd.SeedPatientLists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, again.Skipped)

	_, err = sd.SeedPatientLists(ctx, 404)
	assert.True(t, store.IsNotFound(err))
}

// failingContext starts reporting context.Canceled from Err after n checks.
// Done stays nil, so the failure surfaces only where the store checks the
// context between operations of a transaction.
type failingContext struct {
	context.Context
	mu sync.Mutex
	n  int
}

func failAfter(n int) *failingContext {
	return &failingContext{Context: context.Background(), n: n}
}

func (c *failingContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n <= 0 {
		return context.Canceled
	}
	c.n--
	return nil
}

func TestSeedTestData_FailureWritesNothingAndRetries(t *testing.T) {
	sd, s := newSeeder(t)

	_, err := sd.SeedTestData(failAfter(3))
	require.ErrorIs(t, err, context.Canceled)

	counts := tableCounts(t, s)
	assert.Zero(t, counts["patients"])
	assert.Zero(t, counts["appointments"])
	assert.Zero(t, counts["messages"])

	res, err := sd.SeedTestData(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped, res.Message)
	assert.Equal(t, 5, res.Created)
	assert.Equal(t, int64(5), tableCounts(t, s)["patients"])
}

func TestSeedUserData_FailureWritesNothingAndRetries(t *testing.T) {
	sd, s := newSeeder(t)

	_, err := sd.SeedUserData(failAfter(2))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, tableCounts(t, s)["users"])

	res, err := sd.SeedUserData(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped, res.Message)

	rec, err := s.CurrentProviderRecord(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Len(t, rec.Education, 3)
	assert.Len(t, rec.Badges, 2)
}

func TestSeedPatientDetail_FailedForceKeepsExistingChart(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()

	_, err := sd.SeedTestData(ctx)
	require.NoError(t, err)
	_, err = sd.SeedPatientDetail(ctx, 1, false)
	require.NoError(t, err)
	before := tableCounts(t, s)

	// The clear step and the first writes succeed before the failure.
	_, err = sd.SeedPatientDetail(failAfter(4), 1, true)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, tableCounts(t, s))

	res, err := sd.SeedPatientDetail(ctx, 1, true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, before, tableCounts(t, s))
}

func TestSeedPatientDetail_FailureWritesNothingAndRetries(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()

	_, err := sd.SeedTestData(ctx)
	require.NoError(t, err)
	empty := tableCounts(t, s)

	_, err = sd.SeedPatientDetail(failAfter(5), 2, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, empty, tableCounts(t, s))

	res, err := sd.SeedPatientDetail(ctx, 2, false)
	require.NoError(t, err)
	assert.False(t, res.Skipped, res.Message)
	assert.Positive(t, res.Created)
}

func TestSeedPatientLists_FailureWritesNothingAndRetries(t *testing.T) {
	sd, s := newSeeder(t)
	ctx := context.Background()

	_, err := sd.SeedTestData(ctx)
	require.NoError(t, err)
	_, err = sd.SeedUserData(ctx)
	require.NoError(t, err)
	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)

	// The first list is created before the failure.
	_, err = sd.SeedPatientLists(failAfter(4), u.ID)
	require.ErrorIs(t, err, context.Canceled)
	counts := tableCounts(t, s)
	assert.Zero(t, counts["patient_lists"])
	assert.Zero(t, counts["patient_list_members"])

	res, err := sd.SeedPatientLists(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, res.Skipped, res.Message)
	assert.Equal(t, 3, res.Created)
}
