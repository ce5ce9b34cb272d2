package model

// Patient is the demographic identity of a person under care.
type Patient struct {
	ID                    int64   `json:"id"`
	FirstName             string  `json:"first_name"`
	LastName              string  `json:"last_name"`
	DOB                   string  `json:"dob"`
	Sex                   string  `json:"sex"`
	Gender                *string `json:"gender,omitempty"`
	Address               *string `json:"address,omitempty"`
	Phone                 *string `json:"phone,omitempty"`
	Email                 *string `json:"email,omitempty"`
	PhotoURL              *string `json:"photo_url,omitempty"`
	AISummary             *string `json:"ai_summary,omitempty"`
	PreferredPharmacy     *string `json:"preferred_pharmacy,omitempty"`
	InsuranceProvider     *string `json:"insurance_provider,omitempty"`
	InsurancePolicyNumber *string `json:"insurance_policy_number,omitempty"`
	InsuranceGroupNumber  *string `json:"insurance_group_number,omitempty"`
}

// FullName returns "First Last".
func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Appointment is a scheduled visit slot for a patient.
type Appointment struct {
	ID              int64   `json:"id"`
	PatientID       int64   `json:"patient_id"`
	AppointmentTime string  `json:"appointment_time"`
	DurationMinutes *int64  `json:"duration_minutes,omitempty"` // defaults to 30
	Reason          *string `json:"reason,omitempty"`
	Status          *string `json:"status,omitempty"` // defaults to "scheduled"
	Notes           *string `json:"notes,omitempty"`
}

// AppointmentWithPatient is an appointment joined with its patient's name,
// as shown on the schedule.
type AppointmentWithPatient struct {
	ID              int64   `json:"id"`
	PatientID       int64   `json:"patient_id"`
	PatientName     string  `json:"patient_name"`
	AppointmentTime string  `json:"appointment_time"`
	DurationMinutes int64   `json:"duration_minutes"`
	Reason          *string `json:"reason,omitempty"`
	Status          string  `json:"status"`
}

// Message is an inbox item, optionally about a patient.
type Message struct {
	ID        int64  `json:"id"`
	PatientID *int64 `json:"patient_id,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at,omitempty"`
}
