package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

// Todos

const todoColumns = `id, patient_id, diagnosis_id, description, due_date, priority, status`

func scanTodo(sc scanner) (model.Todo, error) {
	var t model.Todo
	var diagnosisID sql.Null[int64]
	var due, priority, status sql.Null[string]
	if err := sc.Scan(&t.ID, &t.PatientID, &diagnosisID, &t.Description, &due, &priority, &status); err != nil {
		return t, fmt.Errorf("scan todo: %w", err)
	}
	t.DiagnosisID = ptr(diagnosisID)
	t.DueDate = ptr(due)
	t.Priority = ptr(priority)
	t.Status = ptr(status)
	return t, nil
}

// CreateTodo inserts a care task. Priority defaults to "medium" and status
// to "pending".
func (s *Store) CreateTodo(ctx context.Context, t model.Todo) (int64, error) {
	return call(ctx, s, "create_todo", func(q querier) (int64, error) {
		return createTodo(ctx, q, t)
	})
}

func createTodo(ctx context.Context, q querier, t model.Todo) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO todos (patient_id, diagnosis_id, description, due_date, priority, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.PatientID, arg(t.DiagnosisID), t.Description, arg(t.DueDate),
		orDefault(t.Priority, model.DefaultTodoPriority), orDefault(t.Status, model.StatusPending))
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	return id, nil
}

// GetTodo returns the todo with id, or nil.
func (s *Store) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	return call(ctx, s, "get_todo", func(q querier) (*model.Todo, error) {
		return queryOne(ctx, q, scanTodo, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	})
}

// ListTodos returns a patient's todos by due date, undated last.
func (s *Store) ListTodos(ctx context.Context, patientID int64) ([]model.Todo, error) {
	return call(ctx, s, "list_todos", func(q querier) ([]model.Todo, error) {
		return listTodos(ctx, q, patientID)
	})
}

func listTodos(ctx context.Context, q querier, patientID int64) ([]model.Todo, error) {
	return queryAll(ctx, q, scanTodo, `
		SELECT `+todoColumns+` FROM todos WHERE patient_id = ?
		ORDER BY due_date IS NULL, due_date ASC, id ASC
	`, patientID)
}

// UpdateTodo replaces the editable fields of todo t.ID.
func (s *Store) UpdateTodo(ctx context.Context, t model.Todo) error {
	const op = "update_todo"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "todo", t.ID, `
			UPDATE todos SET diagnosis_id = ?, description = ?, due_date = ?, priority = ?, status = ?
			WHERE id = ?
		`, arg(t.DiagnosisID), t.Description, arg(t.DueDate),
			orDefault(t.Priority, model.DefaultTodoPriority), orDefault(t.Status, model.StatusPending), t.ID)
	})
}

// SetTodoStatus changes only the status of a todo.
func (s *Store) SetTodoStatus(ctx context.Context, id int64, status string) error {
	const op = "set_todo_status"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "todo", id, `UPDATE todos SET status = ? WHERE id = ?`, status, id)
	})
}

// DeleteTodo removes a todo.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	const op = "delete_todo"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "todo", id, `DELETE FROM todos WHERE id = ?`, id)
	})
}

// Goals

func scanGoal(sc scanner) (model.Goal, error) {
	var g model.Goal
	var target, status sql.Null[string]
	var progress sql.Null[int64]
	if err := sc.Scan(&g.ID, &g.PatientID, &g.Description, &target, &status, &progress); err != nil {
		return g, fmt.Errorf("scan goal: %w", err)
	}
	g.TargetDate = ptr(target)
	g.Status = ptr(status)
	g.Progress = ptr(progress)
	return g, nil
}

// CreateGoal inserts a care-plan goal. Status defaults to "active".
func (s *Store) CreateGoal(ctx context.Context, g model.Goal) (int64, error) {
	return call(ctx, s, "create_goal", func(q querier) (int64, error) {
		return createGoal(ctx, q, g)
	})
}

func createGoal(ctx context.Context, q querier, g model.Goal) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO goals (patient_id, description, target_date, status, progress) VALUES (?, ?, ?, ?, ?)
	`, g.PatientID, g.Description, arg(g.TargetDate), orDefault(g.Status, model.StatusActive), arg(g.Progress))
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	return id, nil
}

// GetGoal returns the goal with id, or nil.
func (s *Store) GetGoal(ctx context.Context, id int64) (*model.Goal, error) {
	return call(ctx, s, "get_goal", func(q querier) (*model.Goal, error) {
		return queryOne(ctx, q, scanGoal,
			`SELECT id, patient_id, description, target_date, status, progress FROM goals WHERE id = ?`, id)
	})
}

// ListGoals returns a patient's goals by target date, undated last.
func (s *Store) ListGoals(ctx context.Context, patientID int64) ([]model.Goal, error) {
	return call(ctx, s, "list_goals", func(q querier) ([]model.Goal, error) {
		return listGoals(ctx, q, patientID)
	})
}

func listGoals(ctx context.Context, q querier, patientID int64) ([]model.Goal, error) {
	return queryAll(ctx, q, scanGoal, `
		SELECT id, patient_id, description, target_date, status, progress FROM goals
		WHERE patient_id = ?
		ORDER BY target_date IS NULL, target_date ASC, id ASC
	`, patientID)
}

// UpdateGoal replaces the editable fields of goal g.ID.
func (s *Store) UpdateGoal(ctx context.Context, g model.Goal) error {
	const op = "update_goal"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "goal", g.ID, `
			UPDATE goals SET description = ?, target_date = ?, status = ?, progress = ? WHERE id = ?
		`, g.Description, arg(g.TargetDate), orDefault(g.Status, model.StatusActive), arg(g.Progress), g.ID)
	})
}

// DeleteGoal removes a goal.
func (s *Store) DeleteGoal(ctx context.Context, id int64) error {
	const op = "delete_goal"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "goal", id, `DELETE FROM goals WHERE id = ?`, id)
	})
}

// Timeline events

func scanTimelineEvent(sc scanner) (model.TimelineEvent, error) {
	var e model.TimelineEvent
	var icon, color sql.Null[string]
	if err := sc.Scan(&e.ID, &e.PatientID, &e.EventType, &e.Description, &e.EventDate, &icon, &color); err != nil {
		return e, fmt.Errorf("scan timeline event: %w", err)
	}
	e.Icon = ptr(icon)
	e.Color = ptr(color)
	return e, nil
}

// CreateTimelineEvent inserts a timeline milestone.
func (s *Store) CreateTimelineEvent(ctx context.Context, e model.TimelineEvent) (int64, error) {
	return call(ctx, s, "create_timeline_event", func(q querier) (int64, error) {
		return createTimelineEvent(ctx, q, e)
	})
}

func createTimelineEvent(ctx context.Context, q querier, e model.TimelineEvent) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO timeline_events (patient_id, event_type, description, event_date, icon, color)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.PatientID, e.EventType, e.Description, e.EventDate, arg(e.Icon), arg(e.Color))
	if err != nil {
		return 0, fmt.Errorf("insert timeline event: %w", err)
	}
	return id, nil
}

// GetTimelineEvent returns the event with id, or nil.
func (s *Store) GetTimelineEvent(ctx context.Context, id int64) (*model.TimelineEvent, error) {
	return call(ctx, s, "get_timeline_event", func(q querier) (*model.TimelineEvent, error) {
		return queryOne(ctx, q, scanTimelineEvent, `
			SELECT id, patient_id, event_type, description, event_date, icon, color
			FROM timeline_events WHERE id = ?
		`, id)
	})
}

// ListTimelineEvents returns a patient's timeline, most recent first.
func (s *Store) ListTimelineEvents(ctx context.Context, patientID int64) ([]model.TimelineEvent, error) {
	return call(ctx, s, "list_timeline_events", func(q querier) ([]model.TimelineEvent, error) {
		return listTimelineEvents(ctx, q, patientID)
	})
}

func listTimelineEvents(ctx context.Context, q querier, patientID int64) ([]model.TimelineEvent, error) {
	return queryAll(ctx, q, scanTimelineEvent, `
		SELECT id, patient_id, event_type, description, event_date, icon, color
		FROM timeline_events WHERE patient_id = ?
		ORDER BY event_date DESC, id DESC
	`, patientID)
}

// DeleteTimelineEvent removes a timeline event.
func (s *Store) DeleteTimelineEvent(ctx context.Context, id int64) error {
	const op = "delete_timeline_event"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "timeline event", id, `DELETE FROM timeline_events WHERE id = ?`, id)
	})
}
