package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

const prescriptionColumns = `id, patient_id, medication_id, medication_name, dose, quantity,
	days_supply, refills, directions, pharmacy, status, prescriber, prescribed_at`

func scanPrescription(sc scanner) (model.Prescription, error) {
	var p model.Prescription
	var medID sql.Null[int64]
	var dose, directions, pharmacy, status, prescriber sql.Null[string]
	err := sc.Scan(&p.ID, &p.PatientID, &medID, &p.MedicationName, &dose, &p.Quantity,
		&p.DaysSupply, &p.Refills, &directions, &pharmacy, &status, &prescriber, &p.PrescribedAt)
	if err != nil {
		return p, fmt.Errorf("scan prescription: %w", err)
	}
	p.MedicationID = ptr(medID)
	p.Dose = ptr(dose)
	p.Directions = ptr(directions)
	p.Pharmacy = ptr(pharmacy)
	p.Status = ptr(status)
	p.Prescriber = ptr(prescriber)
	return p, nil
}

func createPrescription(ctx context.Context, q querier, p model.Prescription) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO prescriptions (patient_id, medication_id, medication_name, dose, quantity,
			days_supply, refills, directions, pharmacy, status, prescriber, prescribed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.PatientID, arg(p.MedicationID), p.MedicationName, arg(p.Dose), p.Quantity,
		p.DaysSupply, p.Refills, arg(p.Directions), arg(p.Pharmacy),
		orDefault(p.Status, model.StatusSent), arg(p.Prescriber), p.PrescribedAt)
	if err != nil {
		return 0, fmt.Errorf("insert prescription: %w", err)
	}
	return id, nil
}

// CreatePrescription inserts one dispense order. Status defaults to "sent".
func (s *Store) CreatePrescription(ctx context.Context, p model.Prescription) (int64, error) {
	return call(ctx, s, "create_prescription", func(q querier) (int64, error) {
		return createPrescription(ctx, q, p)
	})
}

// CreatePrescriptions inserts a batch in one transaction and returns the ids
// in input order. Either every prescription is written or none is.
func (s *Store) CreatePrescriptions(ctx context.Context, ps []model.Prescription) ([]int64, error) {
	return callTx(ctx, s, "create_prescriptions", func(q querier) ([]int64, error) {
		ids := make([]int64, 0, len(ps))
		for i, p := range ps {
			id, err := createPrescription(ctx, q, p)
			if err != nil {
				return nil, fmt.Errorf("prescription %d: %w", i, err)
			}
			ids = append(ids, id)
		}
		return ids, nil
	})
}

// GetPrescription returns the prescription with id, or nil.
func (s *Store) GetPrescription(ctx context.Context, id int64) (*model.Prescription, error) {
	return call(ctx, s, "get_prescription", func(q querier) (*model.Prescription, error) {
		return queryOne(ctx, q, scanPrescription, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = ?`, id)
	})
}

// ListPrescriptions returns a patient's prescriptions, newest first.
func (s *Store) ListPrescriptions(ctx context.Context, patientID int64) ([]model.Prescription, error) {
	return call(ctx, s, "list_prescriptions", func(q querier) ([]model.Prescription, error) {
		return queryAll(ctx, q, scanPrescription, `
			SELECT `+prescriptionColumns+` FROM prescriptions WHERE patient_id = ?
			ORDER BY prescribed_at DESC, id DESC
		`, patientID)
	})
}

// SetPrescriptionStatus changes only the status of a prescription.
func (s *Store) SetPrescriptionStatus(ctx context.Context, id int64, status string) error {
	const op = "set_prescription_status"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "prescription", id,
			`UPDATE prescriptions SET status = ? WHERE id = ?`, status, id)
	})
}
