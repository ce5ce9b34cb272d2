package store

import (
	"context"

	"github.com/roach88/rchart/internal/model"
)

// FullPatientRecord assembles everything known about a patient, or returns
// nil when the patient does not exist.
//
// All sub-queries run in one transaction while the store lock is held, so
// the record is a consistent snapshot. Each collection uses the same query,
// and therefore the same ordering, as its List method. If any sub-query
// fails the whole call fails.
func (s *Store) FullPatientRecord(ctx context.Context, patientID int64) (*model.PatientRecord, error) {
	return callTx(ctx, s, "full_patient_record", func(q querier) (*model.PatientRecord, error) {
		return fullPatientRecord(ctx, q, patientID)
	})
}

func fullPatientRecord(ctx context.Context, q querier, patientID int64) (*model.PatientRecord, error) {
	p, err := getPatient(ctx, q, patientID)
	if err != nil || p == nil {
		return nil, err
	}
	rec := &model.PatientRecord{Patient: *p}

	diagnoses, err := listDiagnoses(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	rec.Diagnoses = make([]model.DiagnosisWithMedications, 0, len(diagnoses))
	for _, d := range diagnoses {
		ids, err := medicationIDsForDiagnosis(ctx, q, d.ID)
		if err != nil {
			return nil, err
		}
		rec.Diagnoses = append(rec.Diagnoses, model.DiagnosisWithMedications{Diagnosis: d, MedicationIDs: ids})
	}

	if rec.Medications, err = listMedications(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.Vitals, err = listVitals(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.Labs, err = listLabs(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.ClinicalScores, err = listClinicalScores(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.Encounters, err = listEncounters(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.Allergies, err = listAllergies(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.Vaccinations, err = listVaccinations(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.SocialHistory, err = listSocialHistory(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.FamilyHistory, err = listFamilyHistory(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.Todos, err = listTodos(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.Goals, err = listGoals(ctx, q, patientID); err != nil {
		return nil, err
	}
	if rec.TimelineEvents, err = listTimelineEvents(ctx, q, patientID); err != nil {
		return nil, err
	}
	return rec, nil
}

// FullProviderRecord assembles a provider profile with education, badges
// and settings, or returns nil when the user does not exist. Missing
// settings are created with the defaults.
func (s *Store) FullProviderRecord(ctx context.Context, userID int64) (*model.ProviderRecord, error) {
	return callTx(ctx, s, "full_provider_record", func(q querier) (*model.ProviderRecord, error) {
		u, err := getUser(ctx, q, userID)
		if err != nil || u == nil {
			return nil, err
		}
		return providerRecord(ctx, q, *u)
	})
}

// CurrentProviderRecord is FullProviderRecord for the local provider (the
// lowest user id). It returns nil when no user exists.
func (s *Store) CurrentProviderRecord(ctx context.Context) (*model.ProviderRecord, error) {
	return callTx(ctx, s, "current_provider_record", func(q querier) (*model.ProviderRecord, error) {
		u, err := currentUser(ctx, q)
		if err != nil || u == nil {
			return nil, err
		}
		return providerRecord(ctx, q, *u)
	})
}

func providerRecord(ctx context.Context, q querier, u model.User) (*model.ProviderRecord, error) {
	rec := &model.ProviderRecord{User: u}
	var err error
	if rec.Education, err = listEducation(ctx, q, u.ID); err != nil {
		return nil, err
	}
	if rec.Badges, err = listBadges(ctx, q, u.ID); err != nil {
		return nil, err
	}
	settings, err := userSettings(ctx, q, u.ID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		def := model.DefaultUserSettings(u.ID)
		settings = &def
	}
	rec.Settings = *settings
	return rec, nil
}
