package store

import (
	"context"
	"fmt"
)

// clinicalTables are the per-patient tables cleared before a forced reseed,
// children before parents.
var clinicalTables = []string{
	"prescriptions",
	"todos",
	"diagnosis_medications",
	"diagnoses",
	"medications",
	"vitals",
	"labs",
	"clinical_scores",
	"encounters",
	"allergies",
	"vaccinations",
	"social_history",
	"family_history",
	"goals",
	"timeline_events",
}

// DeletePatientClinicalData removes every clinical fact recorded for a
// patient in one transaction. Demographics, appointments, messages and list
// memberships are kept.
func (s *Store) DeletePatientClinicalData(ctx context.Context, patientID int64) error {
	return execTx(ctx, s, "delete_patient_clinical_data", func(q querier) error {
		for _, table := range clinicalTables {
			stmt := fmt.Sprintf(`DELETE FROM %s WHERE patient_id = ?`, table)
			if table == "diagnosis_medications" {
				stmt = `DELETE FROM diagnosis_medications
					WHERE diagnosis_id IN (SELECT id FROM diagnoses WHERE patient_id = ?)`
			}
			if _, err := q.ExecContext(ctx, stmt, patientID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// countedTables are reported by TableCounts.
var countedTables = []string{
	"patients", "diagnoses", "medications", "vitals", "labs", "clinical_scores",
	"encounters", "allergies", "vaccinations", "social_history", "family_history",
	"todos", "goals", "timeline_events", "prescriptions", "appointments", "messages",
	"users", "patient_lists", "patient_list_members",
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string `json:"table" yaml:"table"`
	Rows  int64  `json:"rows" yaml:"rows"`
}

// TableCounts returns row counts for the main tables, in a fixed order.
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	return call(ctx, s, "table_counts", func(q querier) ([]TableCount, error) {
		out := make([]TableCount, 0, len(countedTables))
		for _, table := range countedTables {
			n, err := countRows(ctx, q, table)
			if err != nil {
				return nil, err
			}
			out = append(out, TableCount{Table: table, Rows: n})
		}
		return out, nil
	})
}

// IntegrityCheck runs PRAGMA integrity_check and returns its first line,
// "ok" for a healthy file.
func (s *Store) IntegrityCheck(ctx context.Context) (string, error) {
	return call(ctx, s, "integrity_check", func(q querier) (string, error) {
		var result string
		if err := q.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
			return "", fmt.Errorf("integrity check: %w", err)
		}
		return result, nil
	})
}
