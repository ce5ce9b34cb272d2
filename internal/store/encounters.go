package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

const encounterColumns = `id, patient_id, encounter_date, encounter_type, chief_complaint,
	summary, note_content, provider, location`

func scanEncounter(sc scanner) (model.Encounter, error) {
	var e model.Encounter
	var complaint, summary, note, provider, location sql.Null[string]
	err := sc.Scan(&e.ID, &e.PatientID, &e.EncounterDate, &e.EncounterType,
		&complaint, &summary, &note, &provider, &location)
	if err != nil {
		return e, fmt.Errorf("scan encounter: %w", err)
	}
	e.ChiefComplaint = ptr(complaint)
	e.Summary = ptr(summary)
	e.NoteContent = ptr(note)
	e.Provider = ptr(provider)
	e.Location = ptr(location)
	return e, nil
}

// CreateEncounter inserts a documented visit.
func (s *Store) CreateEncounter(ctx context.Context, e model.Encounter) (int64, error) {
	return call(ctx, s, "create_encounter", func(q querier) (int64, error) {
		return createEncounter(ctx, q, e)
	})
}

func createEncounter(ctx context.Context, q querier, e model.Encounter) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO encounters (patient_id, encounter_date, encounter_type, chief_complaint,
			summary, note_content, provider, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.PatientID, e.EncounterDate, e.EncounterType, arg(e.ChiefComplaint),
		arg(e.Summary), arg(e.NoteContent), arg(e.Provider), arg(e.Location))
	if err != nil {
		return 0, fmt.Errorf("insert encounter: %w", err)
	}
	return id, nil
}

// GetEncounter returns the encounter with id, or nil.
func (s *Store) GetEncounter(ctx context.Context, id int64) (*model.Encounter, error) {
	return call(ctx, s, "get_encounter", func(q querier) (*model.Encounter, error) {
		return queryOne(ctx, q, scanEncounter, `SELECT `+encounterColumns+` FROM encounters WHERE id = ?`, id)
	})
}

// ListEncounters returns a patient's encounters, most recent first.
func (s *Store) ListEncounters(ctx context.Context, patientID int64) ([]model.Encounter, error) {
	return call(ctx, s, "list_encounters", func(q querier) ([]model.Encounter, error) {
		return listEncounters(ctx, q, patientID)
	})
}

func listEncounters(ctx context.Context, q querier, patientID int64) ([]model.Encounter, error) {
	return queryAll(ctx, q, scanEncounter, `
		SELECT `+encounterColumns+` FROM encounters WHERE patient_id = ?
		ORDER BY encounter_date DESC, id DESC
	`, patientID)
}

// UpdateEncounter replaces the editable fields of encounter e.ID.
func (s *Store) UpdateEncounter(ctx context.Context, e model.Encounter) error {
	const op = "update_encounter"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "encounter", e.ID, `
			UPDATE encounters SET encounter_date = ?, encounter_type = ?, chief_complaint = ?,
				summary = ?, note_content = ?, provider = ?, location = ?
			WHERE id = ?
		`, e.EncounterDate, e.EncounterType, arg(e.ChiefComplaint),
			arg(e.Summary), arg(e.NoteContent), arg(e.Provider), arg(e.Location), e.ID)
	})
}

// DeleteEncounter removes an encounter.
func (s *Store) DeleteEncounter(ctx context.Context, id int64) error {
	const op = "delete_encounter"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "encounter", id, `DELETE FROM encounters WHERE id = ?`, id)
	})
}
