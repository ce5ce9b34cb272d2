package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

const patientColumns = `id, first_name, last_name, dob, sex, gender, address, phone, email,
	photo_url, ai_summary, preferred_pharmacy, insurance_provider,
	insurance_policy_number, insurance_group_number`

func scanPatient(sc scanner) (model.Patient, error) {
	var p model.Patient
	var gender, address, phone, email, photo, summary, pharmacy sql.Null[string]
	var insProvider, insPolicy, insGroup sql.Null[string]
	err := sc.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DOB, &p.Sex,
		&gender, &address, &phone, &email, &photo, &summary, &pharmacy,
		&insProvider, &insPolicy, &insGroup)
	if err != nil {
		return p, fmt.Errorf("scan patient: %w", err)
	}
	p.Gender = ptr(gender)
	p.Address = ptr(address)
	p.Phone = ptr(phone)
	p.Email = ptr(email)
	p.PhotoURL = ptr(photo)
	p.AISummary = ptr(summary)
	p.PreferredPharmacy = ptr(pharmacy)
	p.InsuranceProvider = ptr(insProvider)
	p.InsurancePolicyNumber = ptr(insPolicy)
	p.InsuranceGroupNumber = ptr(insGroup)
	return p, nil
}

// CreatePatient inserts a patient and returns its id.
func (s *Store) CreatePatient(ctx context.Context, p model.Patient) (int64, error) {
	return call(ctx, s, "create_patient", func(q querier) (int64, error) {
		return createPatient(ctx, q, p)
	})
}

func createPatient(ctx context.Context, q querier, p model.Patient) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO patients (first_name, last_name, dob, sex, gender, address, phone, email,
			photo_url, ai_summary, preferred_pharmacy, insurance_provider,
			insurance_policy_number, insurance_group_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.FirstName, p.LastName, p.DOB, p.Sex,
		arg(p.Gender), arg(p.Address), arg(p.Phone), arg(p.Email),
		arg(p.PhotoURL), arg(p.AISummary), arg(p.PreferredPharmacy), arg(p.InsuranceProvider),
		arg(p.InsurancePolicyNumber), arg(p.InsuranceGroupNumber),
	)
	if err != nil {
		return 0, fmt.Errorf("insert patient: %w", err)
	}
	return id, nil
}

// GetPatient returns the patient with id, or nil if there is none.
func (s *Store) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	return call(ctx, s, "get_patient", func(q querier) (*model.Patient, error) {
		return getPatient(ctx, q, id)
	})
}

func getPatient(ctx context.Context, q querier, id int64) (*model.Patient, error) {
	return queryOne(ctx, q, scanPatient,
		`SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
}

// ListPatients returns every patient ordered by last name, first name, id.
func (s *Store) ListPatients(ctx context.Context) ([]model.Patient, error) {
	return call(ctx, s, "list_patients", func(q querier) ([]model.Patient, error) {
		return listPatients(ctx, q)
	})
}

func listPatients(ctx context.Context, q querier) ([]model.Patient, error) {
	return queryAll(ctx, q, scanPatient,
		`SELECT `+patientColumns+` FROM patients ORDER BY last_name, first_name, id`)
}

// UpdatePatient replaces every editable field of the patient p.ID.
func (s *Store) UpdatePatient(ctx context.Context, p model.Patient) error {
	const op = "update_patient"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "patient", p.ID, `
			UPDATE patients SET
				first_name = ?, last_name = ?, dob = ?, sex = ?, gender = ?,
				address = ?, phone = ?, email = ?, photo_url = ?, ai_summary = ?,
				preferred_pharmacy = ?, insurance_provider = ?,
				insurance_policy_number = ?, insurance_group_number = ?,
				updated_at = datetime('now', 'localtime')
			WHERE id = ?
		`,
			p.FirstName, p.LastName, p.DOB, p.Sex, arg(p.Gender),
			arg(p.Address), arg(p.Phone), arg(p.Email), arg(p.PhotoURL), arg(p.AISummary),
			arg(p.PreferredPharmacy), arg(p.InsuranceProvider),
			arg(p.InsurancePolicyNumber), arg(p.InsuranceGroupNumber),
			p.ID,
		)
	})
}

// UpdatePatientSummary sets or clears the AI-generated summary.
func (s *Store) UpdatePatientSummary(ctx context.Context, id int64, summary *string) error {
	const op = "update_patient_summary"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "patient", id, `
			UPDATE patients SET ai_summary = ?, updated_at = datetime('now', 'localtime')
			WHERE id = ?
		`, arg(summary), id)
	})
}

// CountPatients returns the number of patients.
func (s *Store) CountPatients(ctx context.Context) (int64, error) {
	return call(ctx, s, "count_patients", func(q querier) (int64, error) {
		return countRows(ctx, q, "patients")
	})
}

// countRows counts rows of a fixed, internal table name.
func countRows(ctx context.Context, q querier, table string) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
