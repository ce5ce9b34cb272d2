package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/rchart/internal/model"
)

func scanMessage(sc scanner) (model.Message, error) {
	var m model.Message
	var patientID sql.Null[int64]
	var read sql.Null[int64]
	var created sql.Null[string]
	if err := sc.Scan(&m.ID, &patientID, &m.Subject, &m.Body, &read, &created); err != nil {
		return m, fmt.Errorf("scan message: %w", err)
	}
	m.PatientID = ptr(patientID)
	m.IsRead = read.Valid && read.V != 0
	m.CreatedAt = created.V
	return m, nil
}

// CreateMessage adds an inbox message. CreatedAt is stamped by the store
// when empty.
func (s *Store) CreateMessage(ctx context.Context, m model.Message) (int64, error) {
	return call(ctx, s, "create_message", func(q querier) (int64, error) {
		created := m.CreatedAt
		if created == "" {
			created = s.now().UTC().Format(time.RFC3339)
		}
		id, err := insert(ctx, q, `
			INSERT INTO messages (patient_id, subject, body, is_read, created_at) VALUES (?, ?, ?, ?, ?)
		`, arg(m.PatientID), m.Subject, m.Body, boolInt(m.IsRead), created)
		if err != nil {
			return 0, fmt.Errorf("insert message: %w", err)
		}
		return id, nil
	})
}

// ListMessages returns messages newest first. A non-nil patientID restricts
// the list to that patient.
func (s *Store) ListMessages(ctx context.Context, patientID *int64) ([]model.Message, error) {
	return call(ctx, s, "list_messages", func(q querier) ([]model.Message, error) {
		return queryAll(ctx, q, scanMessage, `
			SELECT id, patient_id, subject, body, is_read, created_at FROM messages
			WHERE ? IS NULL OR patient_id = ?
			ORDER BY created_at DESC, id DESC
		`, arg(patientID), arg(patientID))
	})
}

// MarkMessageRead sets the read flag.
func (s *Store) MarkMessageRead(ctx context.Context, id int64, read bool) error {
	const op = "mark_message_read"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "message", id,
			`UPDATE messages SET is_read = ? WHERE id = ?`, boolInt(read), id)
	})
}

// DeleteMessage removes a message.
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	const op = "delete_message"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "message", id, `DELETE FROM messages WHERE id = ?`, id)
	})
}
