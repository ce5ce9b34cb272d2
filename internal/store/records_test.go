package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rchart/internal/model"
)

func TestPatient_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := model.Patient{
		FirstName:             "Ann",
		LastName:              "Lee",
		DOB:                   "1990-01-01",
		Sex:                   "F",
		Gender:                strp("woman"),
		Address:               strp("12 Elm St"),
		Phone:                 strp("555-0100"),
		Email:                 strp("ann@example.com"),
		PhotoURL:              strp("https://example.com/ann.png"),
		AISummary:             strp("Well-controlled hypertension."),
		PreferredPharmacy:     strp("Main St Pharmacy"),
		InsuranceProvider:     strp("Acme Health"),
		InsurancePolicyNumber: strp("P-1"),
		InsuranceGroupNumber:  strp("G-1"),
	}
	id, err := s.CreatePatient(ctx, want)
	require.NoError(t, err)

	got, err := s.GetPatient(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	want.ID = id
	assert.Equal(t, want, *got)
}

func TestGetPatient_MissingIsNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.GetPatient(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdatePatient(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := createTestPatient(t, s, "Ann", "Lee")

	p, err := s.GetPatient(ctx, id)
	require.NoError(t, err)
	p.Phone = strp("555-0199")
	require.NoError(t, s.UpdatePatient(ctx, *p))
	require.NoError(t, s.UpdatePatientSummary(ctx, id, strp("Stable.")))

	got, err := s.GetPatient(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", *got.Phone)
	assert.Equal(t, "Stable.", *got.AISummary)
}

func TestUpdatePatient_MissingIsNotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.UpdatePatient(context.Background(), model.Patient{ID: 99, FirstName: "X", LastName: "Y", DOB: "2000-01-01", Sex: "M"})
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestListPatients_OrderedByName(t *testing.T) {
	s := createTestStore(t)
	createTestPatient(t, s, "Zoe", "Adams")
	createTestPatient(t, s, "Ann", "Lee")
	createTestPatient(t, s, "Amy", "Adams")

	got, err := s.ListPatients(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Amy Adams", got[0].FullName())
	assert.Equal(t, "Zoe Adams", got[1].FullName())
	assert.Equal(t, "Ann Lee", got[2].FullName())
}

func TestListPatients_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ListPatients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCreateChild_MissingPatientIsConstraint(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: 404, Name: "Orphan"})
	assert.True(t, IsConstraint(err), "CreateDiagnosis: got %v", err)

	_, err = s.CreateVital(ctx, model.Vital{PatientID: 404, VitalType: "hr", Value: 70, Unit: "bpm", RecordedAt: "2024-01-01"})
	assert.True(t, IsConstraint(err), "CreateVital: got %v", err)

	_, err = s.AddEducation(ctx, model.UserEducation{UserID: 404, EducationType: "md", Institution: "Nowhere"})
	assert.True(t, IsConstraint(err), "AddEducation: got %v", err)
}

func TestDiagnoses_ActiveOnlyNewestOnsetFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	older, err := s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: pid, Name: "Asthma", OnsetDate: strp("2010-06-01")})
	require.NoError(t, err)
	newer, err := s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: pid, Name: "Diabetes", OnsetDate: strp("2021-03-01")})
	require.NoError(t, err)
	_, err = s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: pid, Name: "Fracture", OnsetDate: strp("2023-01-01"), Status: strp("resolved")})
	require.NoError(t, err)

	got, err := s.ListDiagnoses(ctx, pid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0].ID)
	assert.Equal(t, older, got[1].ID)
	assert.Equal(t, model.StatusActive, *got[0].Status)

	all, err := s.ListAllDiagnoses(ctx, pid)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMedications_ActiveOnlyNewestStartFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	a, err := s.CreateMedication(ctx, model.Medication{PatientID: pid, Name: "Metformin", StartDate: strp("2019-01-01")})
	require.NoError(t, err)
	b, err := s.CreateMedication(ctx, model.Medication{PatientID: pid, Name: "Lisinopril", StartDate: strp("2022-01-01")})
	require.NoError(t, err)
	_, err = s.CreateMedication(ctx, model.Medication{PatientID: pid, Name: "Amoxicillin", StartDate: strp("2023-01-01"), Status: strp("discontinued")})
	require.NoError(t, err)

	got, err := s.ListMedications(ctx, pid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int64{b, a}, []int64{got[0].ID, got[1].ID})
}

func TestLabs_ChronologicalWithDerivedFlag(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	t3, err := s.CreateLab(ctx, model.Lab{PatientID: pid, Name: "A1c", Value: 8.1, ReferenceRangeLow: f64p(4), ReferenceRangeHigh: f64p(5.6), RecordedAt: "2024-03-01"})
	require.NoError(t, err)
	t1, err := s.CreateLab(ctx, model.Lab{PatientID: pid, Name: "A1c", Value: 5.2, ReferenceRangeLow: f64p(4), ReferenceRangeHigh: f64p(5.6), RecordedAt: "2024-01-01"})
	require.NoError(t, err)
	t2, err := s.CreateLab(ctx, model.Lab{PatientID: pid, Name: "A1c", Value: 9.0, IsAbnormal: boolp(false), RecordedAt: "2024-02-01"})
	require.NoError(t, err)

	got, err := s.ListLabs(ctx, pid)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{t1, t2, t3}, []int64{got[0].ID, got[1].ID, got[2].ID})

	require.NotNil(t, got[0].IsAbnormal)
	assert.False(t, *got[0].IsAbnormal, "in range")
	assert.False(t, *got[1].IsAbnormal, "explicit flag wins")
	assert.True(t, *got[2].IsAbnormal, "above high bound")
}

func TestVitals_ChronologicalRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	bp := model.Vital{PatientID: pid, VitalType: "bp", Value: 128, ValueSecondary: f64p(82), Unit: "mmHg", RecordedAt: "2024-02-01"}
	id, err := s.CreateVital(ctx, bp)
	require.NoError(t, err)
	_, err = s.CreateVital(ctx, model.Vital{PatientID: pid, VitalType: "hr", Value: 70, Unit: "bpm", RecordedAt: "2024-01-01"})
	require.NoError(t, err)

	got, err := s.GetVital(ctx, id)
	require.NoError(t, err)
	bp.ID = id
	assert.Equal(t, bp, *got)

	list, err := s.ListVitals(ctx, pid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "hr", list[0].VitalType)
}

func TestClinicalScores_Chronological(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	_, err := s.CreateClinicalScore(ctx, model.ClinicalScore{PatientID: pid, ScoreType: "PHQ-9", Score: 6, RecordedAt: "2024-05-01"})
	require.NoError(t, err)
	_, err = s.CreateClinicalScore(ctx, model.ClinicalScore{PatientID: pid, ScoreType: "PHQ-9", Score: 14, MaxScore: f64p(27), Interpretation: strp("moderate"), RecordedAt: "2024-01-01"})
	require.NoError(t, err)

	got, err := s.ListClinicalScores(ctx, pid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 14.0, got[0].Score)
	assert.Equal(t, "moderate", *got[0].Interpretation)
}

func TestEncounters_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	_, err := s.CreateEncounter(ctx, model.Encounter{PatientID: pid, EncounterDate: "2023-01-01", EncounterType: "office"})
	require.NoError(t, err)
	recent, err := s.CreateEncounter(ctx, model.Encounter{PatientID: pid, EncounterDate: "2024-06-01", EncounterType: "telehealth"})
	require.NoError(t, err)

	got, err := s.ListEncounters(ctx, pid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, recent, got[0].ID)
}

func TestLinkMedication_UniquePerPair(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")
	dx, err := s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: pid, Name: "Hypertension"})
	require.NoError(t, err)
	med, err := s.CreateMedication(ctx, model.Medication{PatientID: pid, Name: "Lisinopril"})
	require.NoError(t, err)

	require.NoError(t, s.LinkMedication(ctx, dx, med))
	require.NoError(t, s.LinkMedication(ctx, dx, med))

	ids, err := s.MedicationIDsForDiagnosis(ctx, dx)
	require.NoError(t, err)
	assert.Equal(t, []int64{med}, ids)

	require.NoError(t, s.UnlinkMedication(ctx, dx, med))
	ids, err = s.MedicationIDsForDiagnosis(ctx, dx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.True(t, IsNotFound(s.UnlinkMedication(ctx, dx, med)))
}

func TestEntityDefaults(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	apptID, err := s.CreateAppointment(ctx, model.Appointment{PatientID: pid, AppointmentTime: "2024-01-15 09:00"})
	require.NoError(t, err)
	appt, err := s.GetAppointment(ctx, apptID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), *appt.DurationMinutes)
	assert.Equal(t, "scheduled", *appt.Status)

	todoID, err := s.CreateTodo(ctx, model.Todo{PatientID: pid, Description: "Order labs"})
	require.NoError(t, err)
	todo, err := s.GetTodo(ctx, todoID)
	require.NoError(t, err)
	assert.Equal(t, "medium", *todo.Priority)
	assert.Equal(t, "pending", *todo.Status)

	goalID, err := s.CreateGoal(ctx, model.Goal{PatientID: pid, Description: "Walk daily"})
	require.NoError(t, err)
	goal, err := s.GetGoal(ctx, goalID)
	require.NoError(t, err)
	assert.Equal(t, "active", *goal.Status)

	rxID, err := s.CreatePrescription(ctx, model.Prescription{PatientID: pid, MedicationName: "Lisinopril", Quantity: 30, DaysSupply: 30, PrescribedAt: "2024-01-15"})
	require.NoError(t, err)
	rx, err := s.GetPrescription(ctx, rxID)
	require.NoError(t, err)
	assert.Equal(t, "sent", *rx.Status)
}

func TestTodos_DueDateOrderAndDiagnosisSetNull(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")
	dx, err := s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: pid, Name: "Hypertension"})
	require.NoError(t, err)

	undated, err := s.CreateTodo(ctx, model.Todo{PatientID: pid, Description: "Someday"})
	require.NoError(t, err)
	later, err := s.CreateTodo(ctx, model.Todo{PatientID: pid, Description: "Recheck BP", DueDate: strp("2024-09-01"), DiagnosisID: &dx})
	require.NoError(t, err)
	sooner, err := s.CreateTodo(ctx, model.Todo{PatientID: pid, Description: "Labs", DueDate: strp("2024-08-01")})
	require.NoError(t, err)

	got, err := s.ListTodos(ctx, pid)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{sooner, later, undated}, []int64{got[0].ID, got[1].ID, got[2].ID})

	require.NoError(t, s.DeleteDiagnosis(ctx, dx))
	todo, err := s.GetTodo(ctx, later)
	require.NoError(t, err)
	require.NotNil(t, todo)
	assert.Nil(t, todo.DiagnosisID)

	require.NoError(t, s.SetTodoStatus(ctx, later, "done"))
	todo, err = s.GetTodo(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, "done", *todo.Status)
}

func TestAllergies_FullCRUD(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	id, err := s.CreateAllergy(ctx, model.Allergy{PatientID: pid, Allergen: "Penicillin", Reaction: strp("rash")})
	require.NoError(t, err)

	a, err := s.GetAllergy(ctx, id)
	require.NoError(t, err)
	a.Severity = strp("moderate")
	require.NoError(t, s.UpdateAllergy(ctx, *a))

	list, err := s.ListAllergies(ctx, pid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "moderate", *list[0].Severity)

	require.NoError(t, s.DeleteAllergy(ctx, id))
	gone, err := s.GetAllergy(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.True(t, IsNotFound(s.DeleteAllergy(ctx, id)))
}

func TestHistoryLists_FullCRUD(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	vid, err := s.CreateVaccination(ctx, model.Vaccination{PatientID: pid, VaccineName: "Tdap", DateGiven: "2019-04-01"})
	require.NoError(t, err)
	_, err = s.CreateVaccination(ctx, model.Vaccination{PatientID: pid, VaccineName: "Influenza", DateGiven: "2023-10-01"})
	require.NoError(t, err)
	vax, err := s.ListVaccinations(ctx, pid)
	require.NoError(t, err)
	require.Len(t, vax, 2)
	assert.Equal(t, "Influenza", vax[0].VaccineName)
	require.NoError(t, s.UpdateVaccination(ctx, model.Vaccination{ID: vid, PatientID: pid, VaccineName: "Tdap booster", DateGiven: "2019-04-02"}))
	require.NoError(t, s.DeleteVaccination(ctx, vid))

	sid, err := s.CreateSocialHistory(ctx, model.SocialHistory{PatientID: pid, Category: "tobacco", Detail: "never"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateSocialHistory(ctx, model.SocialHistory{ID: sid, Category: "tobacco", Detail: "former", Status: strp("quit 2015")}))
	sh, err := s.GetSocialHistory(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "former", sh.Detail)
	require.NoError(t, s.DeleteSocialHistory(ctx, sid))

	fid, err := s.CreateFamilyHistory(ctx, model.FamilyHistory{PatientID: pid, Relation: "mother", Condition: "diabetes", AgeAtOnset: i64p(52)})
	require.NoError(t, err)
	fh, err := s.ListFamilyHistory(ctx, pid)
	require.NoError(t, err)
	require.Len(t, fh, 1)
	assert.Equal(t, int64(52), *fh[0].AgeAtOnset)
	require.NoError(t, s.UpdateFamilyHistory(ctx, model.FamilyHistory{ID: fid, Relation: "mother", Condition: "type 2 diabetes"}))
	require.NoError(t, s.DeleteFamilyHistory(ctx, fid))
	assert.True(t, IsNotFound(s.DeleteFamilyHistory(ctx, fid)))
}

func TestTimelineEvents_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	_, err := s.CreateTimelineEvent(ctx, model.TimelineEvent{PatientID: pid, EventType: "diagnosis", Description: "Diagnosed", EventDate: "2020-01-01"})
	require.NoError(t, err)
	id, err := s.CreateTimelineEvent(ctx, model.TimelineEvent{PatientID: pid, EventType: "procedure", Description: "Colonoscopy", EventDate: "2023-05-01", Icon: strp("fa-procedures")})
	require.NoError(t, err)

	got, err := s.ListTimelineEvents(ctx, pid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, id, got[0].ID)

	require.NoError(t, s.DeleteTimelineEvent(ctx, id))
}

func TestCreatePrescriptions_AllOrNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	batch := []model.Prescription{
		{PatientID: pid, MedicationName: "Lisinopril", Quantity: 30, DaysSupply: 30, Refills: 2, PrescribedAt: "2024-01-15"},
		{PatientID: pid, MedicationName: "Metformin", Quantity: 60, DaysSupply: 30, PrescribedAt: "2024-01-16"},
	}
	ids, err := s.CreatePrescriptions(ctx, batch)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Less(t, ids[0], ids[1])

	list, err := s.ListPrescriptions(ctx, pid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Metformin", list[0].MedicationName)

	bad := []model.Prescription{
		{PatientID: pid, MedicationName: "Atorvastatin", Quantity: 30, DaysSupply: 30, PrescribedAt: "2024-02-01"},
		{PatientID: 999, MedicationName: "Orphan", Quantity: 1, DaysSupply: 1, PrescribedAt: "2024-02-01"},
	}
	_, err = s.CreatePrescriptions(ctx, bad)
	assert.True(t, IsConstraint(err), "got %v", err)

	list, err = s.ListPrescriptions(ctx, pid)
	require.NoError(t, err)
	assert.Len(t, list, 2, "failed batch must not leave partial rows")
}

func TestAppointments_ForDate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	_, err := s.CreateAppointment(ctx, model.Appointment{PatientID: pid, AppointmentTime: "2024-01-15 14:00", Reason: strp("follow-up")})
	require.NoError(t, err)
	_, err = s.CreateAppointment(ctx, model.Appointment{PatientID: pid, AppointmentTime: "2024-01-15 09:00", DurationMinutes: i64p(60)})
	require.NoError(t, err)
	_, err = s.CreateAppointment(ctx, model.Appointment{PatientID: pid, AppointmentTime: "2024-01-16 09:00"})
	require.NoError(t, err)

	got, err := s.ListAppointmentsForDate(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-15 09:00", got[0].AppointmentTime)
	assert.Equal(t, int64(60), got[0].DurationMinutes)
	assert.Equal(t, "Ann Lee", got[1].PatientName)
	assert.Equal(t, "follow-up", *got[1].Reason)

	all, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMessages(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")

	about, err := s.CreateMessage(ctx, model.Message{PatientID: &pid, Subject: "Refill", Body: "Please refill."})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, model.Message{Subject: "Staff meeting", Body: "Friday."})
	require.NoError(t, err)

	all, err := s.ListMessages(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := s.ListMessages(ctx, &pid)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.False(t, mine[0].IsRead)
	assert.NotEmpty(t, mine[0].CreatedAt)

	require.NoError(t, s.MarkMessageRead(ctx, about, true))
	mine, err = s.ListMessages(ctx, &pid)
	require.NoError(t, err)
	assert.True(t, mine[0].IsRead)

	require.NoError(t, s.DeleteMessage(ctx, about))
	assert.True(t, IsNotFound(s.DeleteMessage(ctx, about)))
}

func TestDeletePatientClinicalData(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	pid := createTestPatient(t, s, "Ann", "Lee")
	other := createTestPatient(t, s, "Bo", "Kim")

	_, err := s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: pid, Name: "Hypertension"})
	require.NoError(t, err)
	_, err = s.CreateEncounter(ctx, model.Encounter{PatientID: pid, EncounterDate: "2024-01-01", EncounterType: "office"})
	require.NoError(t, err)
	_, err = s.CreateDiagnosis(ctx, model.Diagnosis{PatientID: other, Name: "Asthma"})
	require.NoError(t, err)

	require.NoError(t, s.DeletePatientClinicalData(ctx, pid))

	rec, err := s.FullPatientRecord(ctx, pid)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Diagnoses)
	assert.Empty(t, rec.Encounters)

	kept, err := s.ListDiagnoses(ctx, other)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
