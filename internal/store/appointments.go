package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rchart/internal/model"
)

func scanAppointment(sc scanner) (model.Appointment, error) {
	var a model.Appointment
	var duration sql.Null[int64]
	var reason, status, notes sql.Null[string]
	if err := sc.Scan(&a.ID, &a.PatientID, &a.AppointmentTime, &duration, &reason, &status, &notes); err != nil {
		return a, fmt.Errorf("scan appointment: %w", err)
	}
	a.DurationMinutes = ptr(duration)
	a.Reason = ptr(reason)
	a.Status = ptr(status)
	a.Notes = ptr(notes)
	return a, nil
}

func scanAppointmentWithPatient(sc scanner) (model.AppointmentWithPatient, error) {
	var a model.AppointmentWithPatient
	var duration sql.Null[int64]
	var reason, status sql.Null[string]
	if err := sc.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.AppointmentTime, &duration, &reason, &status); err != nil {
		return a, fmt.Errorf("scan appointment: %w", err)
	}
	a.DurationMinutes = orDefault(ptr(duration), int64(model.DefaultAppointmentMinutes))
	a.Reason = ptr(reason)
	a.Status = orDefault(ptr(status), model.StatusScheduled)
	return a, nil
}

// CreateAppointment books a visit. Duration defaults to 30 minutes and
// status to "scheduled".
func (s *Store) CreateAppointment(ctx context.Context, a model.Appointment) (int64, error) {
	return call(ctx, s, "create_appointment", func(q querier) (int64, error) {
		return createAppointment(ctx, q, a)
	})
}

func createAppointment(ctx context.Context, q querier, a model.Appointment) (int64, error) {
	id, err := insert(ctx, q, `
		INSERT INTO appointments (patient_id, appointment_time, duration_minutes, reason, status, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.PatientID, a.AppointmentTime,
		orDefault(a.DurationMinutes, int64(model.DefaultAppointmentMinutes)),
		arg(a.Reason), orDefault(a.Status, model.StatusScheduled), arg(a.Notes))
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return id, nil
}

// GetAppointment returns the appointment with id, or nil.
func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	return call(ctx, s, "get_appointment", func(q querier) (*model.Appointment, error) {
		return queryOne(ctx, q, scanAppointment, `
			SELECT id, patient_id, appointment_time, duration_minutes, reason, status, notes
			FROM appointments WHERE id = ?
		`, id)
	})
}

const appointmentWithPatientQuery = `
	SELECT a.id, a.patient_id, p.first_name || ' ' || p.last_name,
		a.appointment_time, a.duration_minutes, a.reason, a.status
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
`

// ListAppointmentsForDate returns the schedule for one day (YYYY-MM-DD),
// earliest first.
func (s *Store) ListAppointmentsForDate(ctx context.Context, date string) ([]model.AppointmentWithPatient, error) {
	return call(ctx, s, "list_appointments_for_date", func(q querier) ([]model.AppointmentWithPatient, error) {
		return queryAll(ctx, q, scanAppointmentWithPatient, appointmentWithPatientQuery+`
			WHERE date(a.appointment_time) = date(?)
			ORDER BY a.appointment_time ASC, a.id ASC
		`, date)
	})
}

// ListAppointments returns every appointment, earliest first.
func (s *Store) ListAppointments(ctx context.Context) ([]model.AppointmentWithPatient, error) {
	return call(ctx, s, "list_appointments", func(q querier) ([]model.AppointmentWithPatient, error) {
		return queryAll(ctx, q, scanAppointmentWithPatient, appointmentWithPatientQuery+`
			ORDER BY a.appointment_time ASC, a.id ASC
		`)
	})
}

// SetAppointmentStatus changes only the status of an appointment.
func (s *Store) SetAppointmentStatus(ctx context.Context, id int64, status string) error {
	const op = "set_appointment_status"
	return exec(ctx, s, op, func(q querier) error {
		return execAffecting(ctx, q, op, "appointment", id, `
			UPDATE appointments SET status = ?, updated_at = datetime('now', 'localtime') WHERE id = ?
		`, status, id)
	})
}
