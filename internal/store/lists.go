package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/rchart/internal/model"
)

const listColumns = `id, user_id, name, description, color, icon, is_default, sort_order`

func scanPatientList(sc scanner) (model.PatientList, error) {
	var l model.PatientList
	var desc, color, icon sql.Null[string]
	var isDefault int64
	if err := sc.Scan(&l.ID, &l.UserID, &l.Name, &desc, &color, &icon, &isDefault, &l.SortOrder); err != nil {
		return l, fmt.Errorf("scan patient list: %w", err)
	}
	l.Description = ptr(desc)
	l.Color = ptr(color)
	l.Icon = ptr(icon)
	l.IsDefault = isDefault != 0
	return l, nil
}

func scanListColumn(sc scanner) (model.PatientListColumn, error) {
	var c model.PatientListColumn
	var typ sql.Null[string]
	var visible int64
	var width sql.Null[int64]
	err := sc.Scan(&c.ID, &c.ListID, &c.ColumnKey, &c.ColumnLabel, &typ, &visible, &c.SortOrder, &width)
	if err != nil {
		return c, fmt.Errorf("scan list column: %w", err)
	}
	c.ColumnType = ptr(typ)
	c.IsVisible = visible != 0
	c.Width = ptr(width)
	return c, nil
}

// CreatePatientList inserts a worklist and gives it the default column set.
func (s *Store) CreatePatientList(ctx context.Context, l model.PatientList) (int64, error) {
	return callTx(ctx, s, "create_patient_list", func(q querier) (int64, error) {
		return createPatientList(ctx, q, l)
	})
}

func createPatientList(ctx context.Context, q querier, l model.PatientList) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO patient_lists (user_id, name, description, color, icon, is_default, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.UserID, l.Name, arg(l.Description), arg(l.Color), arg(l.Icon), boolInt(l.IsDefault), l.SortOrder)
	if err != nil {
		return 0, fmt.Errorf("insert patient list: %w", err)
	}

	var n int64
	err = q.QueryRowContext(ctx, `SELECT COUNT(*) FROM patient_list_columns WHERE list_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count list columns: %w", err)
	}
	if n == 0 {
		if err := insertListColumns(ctx, q, model.DefaultColumns(id)); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func insertListColumns(ctx context.Context, q querier, cols []model.PatientListColumn) error {
	for _, c := range cols {
		_, err := q.ExecContext(ctx, `
			INSERT INTO patient_list_columns (list_id, column_key, column_label, column_type, is_visible, sort_order, width)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, c.ListID, c.ColumnKey, c.ColumnLabel, arg(c.ColumnType), boolInt(c.IsVisible), c.SortOrder, arg(c.Width))
		if err != nil {
			return fmt.Errorf("insert column %s: %w", c.ColumnKey, err)
		}
	}
	return nil
}

// GetPatientList returns the list with id, or nil.
func (s *Store) GetPatientList(ctx context.Context, id int64) (*model.PatientList, error) {
	return call(ctx, s, "get_patient_list", func(q querier) (*model.PatientList, error) {
		return getPatientList(ctx, q, id)
	})
}

func getPatientList(ctx context.Context, q querier, id int64) (*model.PatientList, error) {
	return queryOne(ctx, q, scanPatientList, `SELECT `+listColumns+` FROM patient_lists WHERE id = ?`, id)
}

// ListPatientLists returns a user's lists in display order.
func (s *Store) ListPatientLists(ctx context.Context, userID int64) ([]model.PatientList, error) {
	return call(ctx, s, "list_patient_lists", func(q querier) ([]model.PatientList, error) {
		return queryAll(ctx, q, scanPatientList, `
			SELECT `+listColumns+` FROM patient_lists WHERE user_id = ?
			ORDER BY sort_order, id
		`, userID)
	})
}

// UpdatePatientList replaces the editable fields of list l.ID.
func (s *Store) UpdatePatientList(ctx context.Context, l model.PatientList) error {
	const op = "update_patient_list"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "patient list", l.ID, `
			UPDATE patient_lists SET name = ?, description = ?, color = ?, icon = ?,
				is_default = ?, sort_order = ?
			WHERE id = ?
		`, l.Name, arg(l.Description), arg(l.Color), arg(l.Icon), boolInt(l.IsDefault), l.SortOrder, l.ID)
	})
}

// DeletePatientList removes a list with its columns and memberships.
func (s *Store) DeletePatientList(ctx context.Context, id int64) error {
	const op = "delete_patient_list"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "patient list", id, `DELETE FROM patient_lists WHERE id = ?`, id)
	})
}

// GetPatientListWithPatients returns a list with its columns and members,
// or nil when the list does not exist.
func (s *Store) GetPatientListWithPatients(ctx context.Context, id int64) (*model.PatientListWithPatients, error) {
	return callTx(ctx, s, "get_patient_list_with_patients", func(q querier) (*model.PatientListWithPatients, error) {
		l, err := getPatientList(ctx, q, id)
		if err != nil || l == nil {
			return nil, err
		}
		cols, err := listColumnsFor(ctx, q, id)
		if err != nil {
			return nil, err
		}
		patients, err := patientsInList(ctx, q, id)
		if err != nil {
			return nil, err
		}
		return &model.PatientListWithPatients{List: *l, Columns: cols, Patients: patients}, nil
	})
}

// PatientsInList returns a list's patients in the order they were added.
func (s *Store) PatientsInList(ctx context.Context, listID int64) ([]model.Patient, error) {
	return call(ctx, s, "patients_in_list", func(q querier) ([]model.Patient, error) {
		return patientsInList(ctx, q, listID)
	})
}

func patientsInList(ctx context.Context, q querier, listID int64) ([]model.Patient, error) {
	return queryAll(ctx, q, scanPatient, `
		SELECT p.id, p.first_name, p.last_name, p.dob, p.sex, p.gender, p.address, p.phone, p.email,
			p.photo_url, p.ai_summary, p.preferred_pharmacy, p.insurance_provider,
			p.insurance_policy_number, p.insurance_group_number
		FROM patient_list_members m
		JOIN patients p ON p.id = m.patient_id
		WHERE m.list_id = ?
		ORDER BY m.id
	`, listID)
}

// AddPatientToList adds a patient to a list and returns the membership id.
// Adding a patient already on the list fails with a constraint error.
func (s *Store) AddPatientToList(ctx context.Context, listID, patientID int64, notes *string) (int64, error) {
	return call(ctx, s, "add_patient_to_list", func(q querier) (int64, error) {
		return addPatientToList(ctx, q, listID, patientID, notes, s.now())
	})
}

func addPatientToList(ctx context.Context, q querier, listID, patientID int64, notes *string, at time.Time) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO patient_list_members (list_id, patient_id, added_at, notes) VALUES (?, ?, ?, ?)
	`, listID, patientID, at.UTC().Format(time.RFC3339), arg(notes))
	if err != nil {
		return 0, fmt.Errorf("insert list member: %w", err)
	}
	return id, nil
}

// RemovePatientFromList removes a membership.
func (s *Store) RemovePatientFromList(ctx context.Context, listID, patientID int64) error {
	const op = "remove_patient_from_list"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "list member", patientID, `
			DELETE FROM patient_list_members WHERE list_id = ? AND patient_id = ?
		`, listID, patientID)
	})
}

// ListMembers returns the membership rows of a list in insertion order.
func (s *Store) ListMembers(ctx context.Context, listID int64) ([]model.PatientListMember, error) {
	return call(ctx, s, "list_members", func(q querier) ([]model.PatientListMember, error) {
		return queryAll(ctx, q, func(sc scanner) (model.PatientListMember, error) {
			var m model.PatientListMember
			var notes sql.Null[string]
			if err := sc.Scan(&m.ID, &m.ListID, &m.PatientID, &m.AddedAt, &notes); err != nil {
				return m, fmt.Errorf("scan list member: %w", err)
			}
			m.Notes = ptr(notes)
			return m, nil
		}, `
			SELECT id, list_id, patient_id, added_at, notes FROM patient_list_members
			WHERE list_id = ? ORDER BY id
		`, listID)
	})
}

// ListColumns returns a list's column configuration in display order.
func (s *Store) ListColumns(ctx context.Context, listID int64) ([]model.PatientListColumn, error) {
	return call(ctx, s, "list_columns", func(q querier) ([]model.PatientListColumn, error) {
		return listColumnsFor(ctx, q, listID)
	})
}

func listColumnsFor(ctx context.Context, q querier, listID int64) ([]model.PatientListColumn, error) {
	return queryAll(ctx, q, scanListColumn, `
		SELECT id, list_id, column_key, column_label, column_type, is_visible, sort_order, width
		FROM patient_list_columns WHERE list_id = ?
		ORDER BY sort_order, id
	`, listID)
}

// UpdateListColumns replaces a list's column configuration in one
// transaction. Each column's ListID is forced to listID.
func (s *Store) UpdateListColumns(ctx context.Context, listID int64, cols []model.PatientListColumn) error {
	const op = "update_list_columns"
	return execTx(ctx, s, op, func(q querier) error {
		l, err := getPatientList(ctx, q, listID)
		if err != nil {
			return err
		}
		if l == nil {
			return notFound(op, "patient list", listID)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM patient_list_columns WHERE list_id = ?`, listID); err != nil {
			return fmt.Errorf("clear columns: %w", err)
		}
		fixed := make([]model.PatientListColumn, len(cols))
		for i, c := range cols {
			c.ListID = listID
			fixed[i] = c
		}
		return insertListColumns(ctx, q, fixed)
	})
}
