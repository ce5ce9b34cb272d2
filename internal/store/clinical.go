package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

// Diagnoses

const diagnosisColumns = `id, patient_id, name, icd_code, onset_date, status, category`

func scanDiagnosis(sc scanner) (model.Diagnosis, error) {
	var d model.Diagnosis
	var icd, onset, status, category sql.Null[string]
	if err := sc.Scan(&d.ID, &d.PatientID, &d.Name, &icd, &onset, &status, &category); err != nil {
		return d, fmt.Errorf("scan diagnosis: %w", err)
	}
	d.ICDCode = ptr(icd)
	d.OnsetDate = ptr(onset)
	d.Status = ptr(status)
	d.Category = ptr(category)
	return d, nil
}

// CreateDiagnosis inserts a diagnosis. Status defaults to "active".
func (s *Store) CreateDiagnosis(ctx context.Context, d model.Diagnosis) (int64, error) {
	return call(ctx, s, "create_diagnosis", func(q querier) (int64, error) {
		return createDiagnosis(ctx, q, d)
	})
}

func createDiagnosis(ctx context.Context, q querier, d model.Diagnosis) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO diagnoses (patient_id, name, icd_code, onset_date, status, category)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.PatientID, d.Name, arg(d.ICDCode), arg(d.OnsetDate),
		orDefault(d.Status, model.StatusActive), arg(d.Category))
	if err != nil {
		return 0, fmt.Errorf("insert diagnosis: %w", err)
	}
	return id, nil
}

// GetDiagnosis returns the diagnosis with id, or nil.
func (s *Store) GetDiagnosis(ctx context.Context, id int64) (*model.Diagnosis, error) {
	return call(ctx, s, "get_diagnosis", func(q querier) (*model.Diagnosis, error) {
		return queryOne(ctx, q, scanDiagnosis, `SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = ?`, id)
	})
}

// ListDiagnoses returns a patient's active diagnoses, most recent onset first.
func (s *Store) ListDiagnoses(ctx context.Context, patientID int64) ([]model.Diagnosis, error) {
	return call(ctx, s, "list_diagnoses", func(q querier) ([]model.Diagnosis, error) {
		return listDiagnoses(ctx, q, patientID)
	})
}

func listDiagnoses(ctx context.Context, q querier, patientID int64) ([]model.Diagnosis, error) {
	return queryAll(ctx, q, scanDiagnosis, `
		SELECT `+diagnosisColumns+` FROM diagnoses
		WHERE patient_id = ? AND status = 'active'
		ORDER BY onset_date DESC, id DESC
	`, patientID)
}

// ListAllDiagnoses returns every diagnosis of a patient regardless of status.
func (s *Store) ListAllDiagnoses(ctx context.Context, patientID int64) ([]model.Diagnosis, error) {
	return call(ctx, s, "list_all_diagnoses", func(q querier) ([]model.Diagnosis, error) {
		return queryAll(ctx, q, scanDiagnosis, `
			SELECT `+diagnosisColumns+` FROM diagnoses
			WHERE patient_id = ?
			ORDER BY onset_date DESC, id DESC
		`, patientID)
	})
}

// UpdateDiagnosis replaces the editable fields of diagnosis d.ID.
func (s *Store) UpdateDiagnosis(ctx context.Context, d model.Diagnosis) error {
	const op = "update_diagnosis"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "diagnosis", d.ID, `
			UPDATE diagnoses SET name = ?, icd_code = ?, onset_date = ?, status = ?, category = ?
			WHERE id = ?
		`, d.Name, arg(d.ICDCode), arg(d.OnsetDate), orDefault(d.Status, model.StatusActive), arg(d.Category), d.ID)
	})
}

// DeleteDiagnosis removes a diagnosis and its medication links. Todos that
// referenced it keep existing with no diagnosis.
func (s *Store) DeleteDiagnosis(ctx context.Context, id int64) error {
	const op = "delete_diagnosis"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "diagnosis", id, `DELETE FROM diagnoses WHERE id = ?`, id)
	})
}

// LinkMedication associates a medication with a diagnosis. Linking the same
// pair again is a no-op.
func (s *Store) LinkMedication(ctx context.Context, diagnosisID, medicationID int64) error {
	return exec(ctx, s, "link_medication", func(q querier) error {
		return linkMedication(ctx, q, diagnosisID, medicationID)
	})
}

func linkMedication(ctx context.Context, q querier, diagnosisID, medicationID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO diagnosis_medications (diagnosis_id, medication_id) VALUES (?, ?)
	`, diagnosisID, medicationID)
	if err != nil {
		return fmt.Errorf("link medication: %w", err)
	}
	return nil
}

// UnlinkMedication removes a diagnosis-medication link.
func (s *Store) UnlinkMedication(ctx context.Context, diagnosisID, medicationID int64) error {
	const op = "unlink_medication"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "diagnosis link", diagnosisID, `
			DELETE FROM diagnosis_medications WHERE diagnosis_id = ? AND medication_id = ?
		`, diagnosisID, medicationID)
	})
}

// MedicationIDsForDiagnosis returns the ids linked to a diagnosis, ascending.
func (s *Store) MedicationIDsForDiagnosis(ctx context.Context, diagnosisID int64) ([]int64, error) {
	return call(ctx, s, "medication_ids_for_diagnosis", func(q querier) ([]int64, error) {
		return medicationIDsForDiagnosis(ctx, q, diagnosisID)
	})
}

func medicationIDsForDiagnosis(ctx context.Context, q querier, diagnosisID int64) ([]int64, error) {
	return queryAll(ctx, q, func(sc scanner) (int64, error) {
		var id int64
		err := sc.Scan(&id)
		return id, err
	}, `SELECT medication_id FROM diagnosis_medications WHERE diagnosis_id = ? ORDER BY medication_id`, diagnosisID)
}

// Medications

const medicationColumns = `id, patient_id, name, dose, frequency, route, start_date, end_date, status`

func scanMedication(sc scanner) (model.Medication, error) {
	var m model.Medication
	var dose, freq, route, start, end, status sql.Null[string]
	if err := sc.Scan(&m.ID, &m.PatientID, &m.Name, &dose, &freq, &route, &start, &end, &status); err != nil {
		return m, fmt.Errorf("scan medication: %w", err)
	}
	m.Dose = ptr(dose)
	m.Frequency = ptr(freq)
	m.Route = ptr(route)
	m.StartDate = ptr(start)
	m.EndDate = ptr(end)
	m.Status = ptr(status)
	return m, nil
}

// CreateMedication inserts a medication. Status defaults to "active".
func (s *Store) CreateMedication(ctx context.Context, m model.Medication) (int64, error) {
	return call(ctx, s, "create_medication", func(q querier) (int64, error) {
		return createMedication(ctx, q, m)
	})
}

func createMedication(ctx context.Context, q querier, m model.Medication) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO medications (patient_id, name, dose, frequency, route, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.PatientID, m.Name, arg(m.Dose), arg(m.Frequency), arg(m.Route),
		arg(m.StartDate), arg(m.EndDate), orDefault(m.Status, model.StatusActive))
	if err != nil {
		return 0, fmt.Errorf("insert medication: %w", err)
	}
	return id, nil
}

// GetMedication returns the medication with id, or nil.
func (s *Store) GetMedication(ctx context.Context, id int64) (*model.Medication, error) {
	return call(ctx, s, "get_medication", func(q querier) (*model.Medication, error) {
		return queryOne(ctx, q, scanMedication, `SELECT `+medicationColumns+` FROM medications WHERE id = ?`, id)
	})
}

// ListMedications returns a patient's active medications, most recently
// started first.
func (s *Store) ListMedications(ctx context.Context, patientID int64) ([]model.Medication, error) {
	return call(ctx, s, "list_medications", func(q querier) ([]model.Medication, error) {
		return listMedications(ctx, q, patientID)
	})
}

func listMedications(ctx context.Context, q querier, patientID int64) ([]model.Medication, error) {
	return queryAll(ctx, q, scanMedication, `
		SELECT `+medicationColumns+` FROM medications
		WHERE patient_id = ? AND status = 'active'
		ORDER BY start_date DESC, id DESC
	`, patientID)
}

// UpdateMedication replaces the editable fields of medication m.ID.
func (s *Store) UpdateMedication(ctx context.Context, m model.Medication) error {
	const op = "update_medication"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "medication", m.ID, `
			UPDATE medications SET name = ?, dose = ?, frequency = ?, route = ?,
				start_date = ?, end_date = ?, status = ?
			WHERE id = ?
		`, m.Name, arg(m.Dose), arg(m.Frequency), arg(m.Route),
			arg(m.StartDate), arg(m.EndDate), orDefault(m.Status, model.StatusActive), m.ID)
	})
}

// DeleteMedication removes a medication and its diagnosis links.
func (s *Store) DeleteMedication(ctx context.Context, id int64) error {
	const op = "delete_medication"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "medication", id, `DELETE FROM medications WHERE id = ?`, id)
	})
}
