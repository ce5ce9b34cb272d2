package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

// Allergies, vaccinations and social/family history are user-editable lists
// with full create, read, update and delete.

func scanAllergy(sc scanner) (model.Allergy, error) {
	var a model.Allergy
	var reaction, severity sql.Null[string]
	if err := sc.Scan(&a.ID, &a.PatientID, &a.Allergen, &reaction, &severity); err != nil {
		return a, fmt.Errorf("scan allergy: %w", err)
	}
	a.Reaction = ptr(reaction)
	a.Severity = ptr(severity)
	return a, nil
}

// CreateAllergy inserts an allergy.
func (s *Store) CreateAllergy(ctx context.Context, a model.Allergy) (int64, error) {
	return call(ctx, s, "create_allergy", func(q querier) (int64, error) {
		return createAllergy(ctx, q, a)
	})
}

func createAllergy(ctx context.Context, q querier, a model.Allergy) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO allergies (patient_id, allergen, reaction, severity) VALUES (?, ?, ?, ?)
	`, a.PatientID, a.Allergen, arg(a.Reaction), arg(a.Severity))
	if err != nil {
		return 0, fmt.Errorf("insert allergy: %w", err)
	}
	return id, nil
}

// GetAllergy returns the allergy with id, or nil.
func (s *Store) GetAllergy(ctx context.Context, id int64) (*model.Allergy, error) {
	return call(ctx, s, "get_allergy", func(q querier) (*model.Allergy, error) {
		return queryOne(ctx, q, scanAllergy,
			`SELECT id, patient_id, allergen, reaction, severity FROM allergies WHERE id = ?`, id)
	})
}

// ListAllergies returns a patient's allergies in entry order.
func (s *Store) ListAllergies(ctx context.Context, patientID int64) ([]model.Allergy, error) {
	return call(ctx, s, "list_allergies", func(q querier) ([]model.Allergy, error) {
		return listAllergies(ctx, q, patientID)
	})
}

func listAllergies(ctx context.Context, q querier, patientID int64) ([]model.Allergy, error) {
	return queryAll(ctx, q, scanAllergy, `
		SELECT id, patient_id, allergen, reaction, severity FROM allergies
		WHERE patient_id = ? ORDER BY id
	`, patientID)
}

// UpdateAllergy replaces the editable fields of allergy a.ID.
func (s *Store) UpdateAllergy(ctx context.Context, a model.Allergy) error {
	const op = "update_allergy"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "allergy", a.ID, `
			UPDATE allergies SET allergen = ?, reaction = ?, severity = ? WHERE id = ?
		`, a.Allergen, arg(a.Reaction), arg(a.Severity), a.ID)
	})
}

// DeleteAllergy removes an allergy.
func (s *Store) DeleteAllergy(ctx context.Context, id int64) error {
	const op = "delete_allergy"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "allergy", id, `DELETE FROM allergies WHERE id = ?`, id)
	})
}

func scanVaccination(sc scanner) (model.Vaccination, error) {
	var v model.Vaccination
	if err := sc.Scan(&v.ID, &v.PatientID, &v.VaccineName, &v.DateGiven); err != nil {
		return v, fmt.Errorf("scan vaccination: %w", err)
	}
	return v, nil
}

// CreateVaccination inserts a vaccination.
func (s *Store) CreateVaccination(ctx context.Context, v model.Vaccination) (int64, error) {
	return call(ctx, s, "create_vaccination", func(q querier) (int64, error) {
		return createVaccination(ctx, q, v)
	})
}

func createVaccination(ctx context.Context, q querier, v model.Vaccination) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO vaccinations (patient_id, vaccine_name, date_given) VALUES (?, ?, ?)
	`, v.PatientID, v.VaccineName, v.DateGiven)
	if err != nil {
		return 0, fmt.Errorf("insert vaccination: %w", err)
	}
	return id, nil
}

// GetVaccination returns the vaccination with id, or nil.
func (s *Store) GetVaccination(ctx context.Context, id int64) (*model.Vaccination, error) {
	return call(ctx, s, "get_vaccination", func(q querier) (*model.Vaccination, error) {
		return queryOne(ctx, q, scanVaccination,
			`SELECT id, patient_id, vaccine_name, date_given FROM vaccinations WHERE id = ?`, id)
	})
}

// ListVaccinations returns a patient's vaccinations, most recent first.
func (s *Store) ListVaccinations(ctx context.Context, patientID int64) ([]model.Vaccination, error) {
	return call(ctx, s, "list_vaccinations", func(q querier) ([]model.Vaccination, error) {
		return listVaccinations(ctx, q, patientID)
	})
}

func listVaccinations(ctx context.Context, q querier, patientID int64) ([]model.Vaccination, error) {
	return queryAll(ctx, q, scanVaccination, `
		SELECT id, patient_id, vaccine_name, date_given FROM vaccinations
		WHERE patient_id = ? ORDER BY date_given DESC, id DESC
	`, patientID)
}

// UpdateVaccination replaces the editable fields of vaccination v.ID.
func (s *Store) UpdateVaccination(ctx context.Context, v model.Vaccination) error {
	const op = "update_vaccination"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "vaccination", v.ID, `
			UPDATE vaccinations SET vaccine_name = ?, date_given = ? WHERE id = ?
		`, v.VaccineName, v.DateGiven, v.ID)
	})
}

// DeleteVaccination removes a vaccination.
func (s *Store) DeleteVaccination(ctx context.Context, id int64) error {
	const op = "delete_vaccination"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "vaccination", id, `DELETE FROM vaccinations WHERE id = ?`, id)
	})
}

func scanSocialHistory(sc scanner) (model.SocialHistory, error) {
	var h model.SocialHistory
	var status sql.Null[string]
	if err := sc.Scan(&h.ID, &h.PatientID, &h.Category, &h.Detail, &status); err != nil {
		return h, fmt.Errorf("scan social history: %w", err)
	}
	h.Status = ptr(status)
	return h, nil
}

// CreateSocialHistory inserts a social-history entry.
func (s *Store) CreateSocialHistory(ctx context.Context, h model.SocialHistory) (int64, error) {
	return call(ctx, s, "create_social_history", func(q querier) (int64, error) {
		return createSocialHistory(ctx, q, h)
	})
}

func createSocialHistory(ctx context.Context, q querier, h model.SocialHistory) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO social_history (patient_id, category, detail, status) VALUES (?, ?, ?, ?)
	`, h.PatientID, h.Category, h.Detail, arg(h.Status))
	if err != nil {
		return 0, fmt.Errorf("insert social history: %w", err)
	}
	return id, nil
}

// GetSocialHistory returns the entry with id, or nil.
func (s *Store) GetSocialHistory(ctx context.Context, id int64) (*model.SocialHistory, error) {
	return call(ctx, s, "get_social_history", func(q querier) (*model.SocialHistory, error) {
		return queryOne(ctx, q, scanSocialHistory,
			`SELECT id, patient_id, category, detail, status FROM social_history WHERE id = ?`, id)
	})
}

// ListSocialHistory returns a patient's social history by category.
func (s *Store) ListSocialHistory(ctx context.Context, patientID int64) ([]model.SocialHistory, error) {
	return call(ctx, s, "list_social_history", func(q querier) ([]model.SocialHistory, error) {
		return listSocialHistory(ctx, q, patientID)
	})
}

func listSocialHistory(ctx context.Context, q querier, patientID int64) ([]model.SocialHistory, error) {
	return queryAll(ctx, q, scanSocialHistory, `
		SELECT id, patient_id, category, detail, status FROM social_history
		WHERE patient_id = ? ORDER BY category, id
	`, patientID)
}

// UpdateSocialHistory replaces the editable fields of entry h.ID.
func (s *Store) UpdateSocialHistory(ctx context.Context, h model.SocialHistory) error {
	const op = "update_social_history"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "social history entry", h.ID, `
			UPDATE social_history SET category = ?, detail = ?, status = ? WHERE id = ?
		`, h.Category, h.Detail, arg(h.Status), h.ID)
	})
}

// DeleteSocialHistory removes a social-history entry.
func (s *Store) DeleteSocialHistory(ctx context.Context, id int64) error {
	const op = "delete_social_history"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "social history entry", id, `DELETE FROM social_history WHERE id = ?`, id)
	})
}

func scanFamilyHistory(sc scanner) (model.FamilyHistory, error) {
	var h model.FamilyHistory
	var age sql.Null[int64]
	if err := sc.Scan(&h.ID, &h.PatientID, &h.Relation, &h.Condition, &age); err != nil {
		return h, fmt.Errorf("scan family history: %w", err)
	}
	h.AgeAtOnset = ptr(age)
	return h, nil
}

// CreateFamilyHistory inserts a family-history entry.
func (s *Store) CreateFamilyHistory(ctx context.Context, h model.FamilyHistory) (int64, error) {
	return call(ctx, s, "create_family_history", func(q querier) (int64, error) {
		return createFamilyHistory(ctx, q, h)
	})
}

func createFamilyHistory(ctx context.Context, q querier, h model.FamilyHistory) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO family_history (patient_id, relation, condition, age_at_onset) VALUES (?, ?, ?, ?)
	`, h.PatientID, h.Relation, h.Condition, arg(h.AgeAtOnset))
	if err != nil {
		return 0, fmt.Errorf("insert family history: %w", err)
	}
	return id, nil
}

// GetFamilyHistory returns the entry with id, or nil.
func (s *Store) GetFamilyHistory(ctx context.Context, id int64) (*model.FamilyHistory, error) {
	return call(ctx, s, "get_family_history", func(q querier) (*model.FamilyHistory, error) {
		return queryOne(ctx, q, scanFamilyHistory,
			`SELECT id, patient_id, relation, condition, age_at_onset FROM family_history WHERE id = ?`, id)
	})
}

// ListFamilyHistory returns a patient's family history by relation.
func (s *Store) ListFamilyHistory(ctx context.Context, patientID int64) ([]model.FamilyHistory, error) {
	return call(ctx, s, "list_family_history", func(q querier) ([]model.FamilyHistory, error) {
		return listFamilyHistory(ctx, q, patientID)
	})
}

func listFamilyHistory(ctx context.Context, q querier, patientID int64) ([]model.FamilyHistory, error) {
	return queryAll(ctx, q, scanFamilyHistory, `
		SELECT id, patient_id, relation, condition, age_at_onset FROM family_history
		WHERE patient_id = ? ORDER BY relation, id
	`, patientID)
}

// UpdateFamilyHistory replaces the editable fields of entry h.ID.
func (s *Store) UpdateFamilyHistory(ctx context.Context, h model.FamilyHistory) error {
	const op = "update_family_history"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "family history entry", h.ID, `
			UPDATE family_history SET relation = ?, condition = ?, age_at_onset = ? WHERE id = ?
		`, h.Relation, h.Condition, arg(h.AgeAtOnset), h.ID)
	})
}

// DeleteFamilyHistory removes a family-history entry.
func (s *Store) DeleteFamilyHistory(ctx context.Context, id int64) error {
	const op = "delete_family_history"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "family history entry", id, `DELETE FROM family_history WHERE id = ?`, id)
	})
}
