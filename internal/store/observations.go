package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

// Vitals, labs and clinical scores are trend data: every list is
// chronological, oldest first.

func scanVital(sc scanner) (model.Vital, error) {
	var v model.Vital
	var secondary sql.Null[float64]
	if err := sc.Scan(&v.ID, &v.PatientID, &v.VitalType, &v.Value, &secondary, &v.Unit, &v.RecordedAt); err != nil {
		return v, fmt.Errorf("scan vital: %w", err)
	}
	v.ValueSecondary = ptr(secondary)
	return v, nil
}

// CreateVital inserts a vital-sign reading.
func (s *Store) CreateVital(ctx context.Context, v model.Vital) (int64, error) {
	return call(ctx, s, "create_vital", func(q querier) (int64, error) {
		return createVital(ctx, q, v)
	})
}

func createVital(ctx context.Context, q querier, v model.Vital) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO vitals (patient_id, vital_type, value, value_secondary, unit, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.PatientID, v.VitalType, v.Value, arg(v.ValueSecondary), v.Unit, v.RecordedAt)
	if err != nil {
		return 0, fmt.Errorf("insert vital: %w", err)
	}
	return id, nil
}

// GetVital returns the vital with id, or nil.
func (s *Store) GetVital(ctx context.Context, id int64) (*model.Vital, error) {
	return call(ctx, s, "get_vital", func(q querier) (*model.Vital, error) {
		return queryOne(ctx, q, scanVital, `
			SELECT id, patient_id, vital_type, value, value_secondary, unit, recorded_at
			FROM vitals WHERE id = ?
		`, id)
	})
}

// ListVitals returns a patient's vitals in recorded order.
func (s *Store) ListVitals(ctx context.Context, patientID int64) ([]model.Vital, error) {
	return call(ctx, s, "list_vitals", func(q querier) ([]model.Vital, error) {
		return listVitals(ctx, q, patientID)
	})
}

func listVitals(ctx context.Context, q querier, patientID int64) ([]model.Vital, error) {
	return queryAll(ctx, q, scanVital, `
		SELECT id, patient_id, vital_type, value, value_secondary, unit, recorded_at
		FROM vitals WHERE patient_id = ?
		ORDER BY recorded_at ASC, id ASC
	`, patientID)
}

const labColumns = `id, patient_id, name, value, unit, reference_range_low, reference_range_high, is_abnormal, recorded_at`

func scanLab(sc scanner) (model.Lab, error) {
	var l model.Lab
	var unit sql.Null[string]
	var low, high sql.Null[float64]
	var abnormal sql.Null[int64]
	if err := sc.Scan(&l.ID, &l.PatientID, &l.Name, &l.Value, &unit, &low, &high, &abnormal, &l.RecordedAt); err != nil {
		return l, fmt.Errorf("scan lab: %w", err)
	}
	l.Unit = ptr(unit)
	l.ReferenceRangeLow = ptr(low)
	l.ReferenceRangeHigh = ptr(high)
	l.IsAbnormal = boolPtr(abnormal)
	return l, nil
}

// CreateLab inserts a lab result. When IsAbnormal is nil it is derived from
// the reference range.
func (s *Store) CreateLab(ctx context.Context, l model.Lab) (int64, error) {
	return call(ctx, s, "create_lab", func(q querier) (int64, error) {
		return createLab(ctx, q, l)
	})
}

func createLab(ctx context.Context, q querier, l model.Lab) (int64, error) {
	abnormal := l.OutOfRange()
	if l.IsAbnormal != nil {
		abnormal = *l.IsAbnormal
	}
	id, err := insert(ctx, q, `
		INSERT INTO labs (patient_id, name, value, unit, reference_range_low, reference_range_high, is_abnormal, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, l.PatientID, l.Name, l.Value, arg(l.Unit), arg(l.ReferenceRangeLow), arg(l.ReferenceRangeHigh),
		boolInt(abnormal), l.RecordedAt)
	if err != nil {
		return 0, fmt.Errorf("insert lab: %w", err)
	}
	return id, nil
}

// GetLab returns the lab with id, or nil.
func (s *Store) GetLab(ctx context.Context, id int64) (*model.Lab, error) {
	return call(ctx, s, "get_lab", func(q querier) (*model.Lab, error) {
		return queryOne(ctx, q, scanLab, `SELECT `+labColumns+` FROM labs WHERE id = ?`, id)
	})
}

// ListLabs returns a patient's labs in recorded order.
func (s *Store) ListLabs(ctx context.Context, patientID int64) ([]model.Lab, error) {
	return call(ctx, s, "list_labs", func(q querier) ([]model.Lab, error) {
		return listLabs(ctx, q, patientID)
	})
}

func listLabs(ctx context.Context, q querier, patientID int64) ([]model.Lab, error) {
	return queryAll(ctx, q, scanLab, `
		SELECT `+labColumns+` FROM labs WHERE patient_id = ?
		ORDER BY recorded_at ASC, id ASC
	`, patientID)
}

// UpdateLab replaces the editable fields of lab l.ID, re-deriving the
// abnormal flag when IsAbnormal is nil.
func (s *Store) UpdateLab(ctx context.Context, l model.Lab) error {
	const op = "update_lab"
	abnormal := l.OutOfRange()
	if l.IsAbnormal != nil {
		abnormal = *l.IsAbnormal
	}
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "lab", l.ID, `
			UPDATE labs SET name = ?, value = ?, unit = ?, reference_range_low = ?,
				reference_range_high = ?, is_abnormal = ?, recorded_at = ?
			WHERE id = ?
		`, l.Name, l.Value, arg(l.Unit), arg(l.ReferenceRangeLow),
			arg(l.ReferenceRangeHigh), boolInt(abnormal), l.RecordedAt, l.ID)
	})
}

// DeleteLab removes a lab result.
func (s *Store) DeleteLab(ctx context.Context, id int64) error {
	const op = "delete_lab"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "lab", id, `DELETE FROM labs WHERE id = ?`, id)
	})
}

func scanClinicalScore(sc scanner) (model.ClinicalScore, error) {
	var c model.ClinicalScore
	var maxScore sql.Null[float64]
	var interp sql.Null[string]
	if err := sc.Scan(&c.ID, &c.PatientID, &c.ScoreType, &c.Score, &maxScore, &interp, &c.RecordedAt); err != nil {
		return c, fmt.Errorf("scan clinical score: %w", err)
	}
	c.MaxScore = ptr(maxScore)
	c.Interpretation = ptr(interp)
	return c, nil
}

// CreateClinicalScore inserts a scored instrument result.
func (s *Store) CreateClinicalScore(ctx context.Context, c model.ClinicalScore) (int64, error) {
	return call(ctx, s, "create_clinical_score", func(q querier) (int64, error) {
		return createClinicalScore(ctx, q, c)
	})
}

func createClinicalScore(ctx context.Context, q querier, c model.ClinicalScore) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO clinical_scores (patient_id, score_type, score, max_score, interpretation, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.PatientID, c.ScoreType, c.Score, arg(c.MaxScore), arg(c.Interpretation), c.RecordedAt)
	if err != nil {
		return 0, fmt.Errorf("insert clinical score: %w", err)
	}
	return id, nil
}

// GetClinicalScore returns the score with id, or nil.
func (s *Store) GetClinicalScore(ctx context.Context, id int64) (*model.ClinicalScore, error) {
	return call(ctx, s, "get_clinical_score", func(q querier) (*model.ClinicalScore, error) {
		return queryOne(ctx, q, scanClinicalScore, `
			SELECT id, patient_id, score_type, score, max_score, interpretation, recorded_at
			FROM clinical_scores WHERE id = ?
		`, id)
	})
}

// ListClinicalScores returns a patient's scores in recorded order.
func (s *Store) ListClinicalScores(ctx context.Context, patientID int64) ([]model.ClinicalScore, error) {
	return call(ctx, s, "list_clinical_scores", func(q querier) ([]model.ClinicalScore, error) {
		return listClinicalScores(ctx, q, patientID)
	})
}

func listClinicalScores(ctx context.Context, q querier, patientID int64) ([]model.ClinicalScore, error) {
	return queryAll(ctx, q, scanClinicalScore, `
		SELECT id, patient_id, score_type, score, max_score, interpretation, recorded_at
		FROM clinical_scores WHERE patient_id = ?
		ORDER BY recorded_at ASC, id ASC
	`, patientID)
}
