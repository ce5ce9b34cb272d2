package model

// Default status values applied on insert when the field is absent.
const (
	StatusActive    = "active"
	StatusScheduled = "scheduled"
	StatusPending   = "pending"
	StatusSent      = "sent"

	DefaultAppointmentMinutes = 30
	DefaultTodoPriority       = "medium"
)

// DiagnosisCategories lists the category tags used to colour-code
// diagnoses.
var DiagnosisCategories = []string{
	"cardiac", "pulm", "gi", "neuro", "psych", "renal", "endocrine",
	"obgyn", "oncology", "heme", "msk", "immune", "social",
}

// Diagnosis is a coded problem-list entry.
type Diagnosis struct {
	ID        int64   `json:"id"`
	PatientID int64   `json:"patient_id"`
	Name      string  `json:"name"`
	ICDCode   *string `json:"icd_code,omitempty"`
	OnsetDate *string `json:"onset_date,omitempty"`
	Status    *string `json:"status,omitempty"`
	Category  *string `json:"category,omitempty"`
}

// DiagnosisWithMedications pairs a diagnosis with the ids of medications
// linked to it.
type DiagnosisWithMedications struct {
	Diagnosis     Diagnosis `json:"diagnosis"`
	MedicationIDs []int64   `json:"medication_ids"`
}

// Medication is an entry on the patient's medication list.
type Medication struct {
	ID        int64   `json:"id"`
	PatientID int64   `json:"patient_id"`
	Name      string  `json:"name"`
	Dose      *string `json:"dose,omitempty"`
	Frequency *string `json:"frequency,omitempty"`
	Route     *string `json:"route,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// Vital is a single vital-sign reading. Blood pressure uses Value for
// systolic and ValueSecondary for diastolic.
type Vital struct {
	ID             int64    `json:"id"`
	PatientID      int64    `json:"patient_id"`
	VitalType      string   `json:"vital_type"`
	Value          float64  `json:"value"`
	ValueSecondary *float64 `json:"value_secondary,omitempty"`
	Unit           string   `json:"unit"`
	RecordedAt     string   `json:"recorded_at"`
}

// Lab is one resulted laboratory value.
type Lab struct {
	ID                 int64    `json:"id"`
	PatientID          int64    `json:"patient_id"`
	Name               string   `json:"name"`
	Value              float64  `json:"value"`
	Unit               *string  `json:"unit,omitempty"`
	ReferenceRangeLow  *float64 `json:"reference_range_low,omitempty"`
	ReferenceRangeHigh *float64 `json:"reference_range_high,omitempty"`
	IsAbnormal         *bool    `json:"is_abnormal,omitempty"`
	RecordedAt         string   `json:"recorded_at"`
}

// OutOfRange reports whether the value falls outside whichever reference
// bounds are present.
func (l Lab) OutOfRange() bool {
	if l.ReferenceRangeLow != nil && l.Value < *l.ReferenceRangeLow {
		return true
	}
	if l.ReferenceRangeHigh != nil && l.Value > *l.ReferenceRangeHigh {
		return true
	}
	return false
}

// ClinicalScore is a scored instrument result (PHQ-9, GAD-7, ...).
type ClinicalScore struct {
	ID             int64    `json:"id"`
	PatientID      int64    `json:"patient_id"`
	ScoreType      string   `json:"score_type"`
	Score          float64  `json:"score"`
	MaxScore       *float64 `json:"max_score,omitempty"`
	Interpretation *string  `json:"interpretation,omitempty"`
	RecordedAt     string   `json:"recorded_at"`
}

// Encounter is a documented visit.
type Encounter struct {
	ID             int64   `json:"id"`
	PatientID      int64   `json:"patient_id"`
	EncounterDate  string  `json:"encounter_date"`
	EncounterType  string  `json:"encounter_type"`
	ChiefComplaint *string `json:"chief_complaint,omitempty"`
	Summary        *string `json:"summary,omitempty"`
	NoteContent    *string `json:"note_content,omitempty"`
	Provider       *string `json:"provider,omitempty"`
	Location       *string `json:"location,omitempty"`
}

// Prescription is a dispense order sent to a pharmacy.
type Prescription struct {
	ID             int64   `json:"id"`
	PatientID      int64   `json:"patient_id"`
	MedicationID   *int64  `json:"medication_id,omitempty"`
	MedicationName string  `json:"medication_name"`
	Dose           *string `json:"dose,omitempty"`
	Quantity       int64   `json:"quantity"`
	DaysSupply     int64   `json:"days_supply"`
	Refills        int64   `json:"refills"`
	Directions     *string `json:"directions,omitempty"`
	Pharmacy       *string `json:"pharmacy,omitempty"`
	Status         *string `json:"status,omitempty"`
	Prescriber     *string `json:"prescriber,omitempty"`
	PrescribedAt   string  `json:"prescribed_at"`
}
