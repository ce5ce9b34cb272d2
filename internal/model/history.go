package model

// Allergy is a recorded allergen and reaction.
type Allergy struct {
	ID        int64   `json:"id"`
	PatientID int64   `json:"patient_id"`
	Allergen  string  `json:"allergen"`
	Reaction  *string `json:"reaction,omitempty"`
	Severity  *string `json:"severity,omitempty"`
}

// Vaccination is an administered vaccine.
type Vaccination struct {
	ID          int64  `json:"id"`
	PatientID   int64  `json:"patient_id"`
	VaccineName string `json:"vaccine_name"`
	DateGiven   string `json:"date_given"`
}

// SocialHistory is one social-history fact (tobacco, alcohol, ...).
type SocialHistory struct {
	ID        int64   `json:"id"`
	PatientID int64   `json:"patient_id"`
	Category  string  `json:"category"`
	Detail    string  `json:"detail"`
	Status    *string `json:"status,omitempty"`
}

// FamilyHistory is a condition present in a relative.
type FamilyHistory struct {
	ID         int64  `json:"id"`
	PatientID  int64  `json:"patient_id"`
	Relation   string `json:"relation"`
	Condition  string `json:"condition"`
	AgeAtOnset *int64 `json:"age_at_onset,omitempty"`
}

// Todo is a care task, optionally tied to a diagnosis.
type Todo struct {
	ID          int64   `json:"id"`
	PatientID   int64   `json:"patient_id"`
	DiagnosisID *int64  `json:"diagnosis_id,omitempty"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Goal is a care-plan goal with optional percentage progress.
type Goal struct {
	ID          int64   `json:"id"`
	PatientID   int64   `json:"patient_id"`
	Description string  `json:"description"`
	TargetDate  *string `json:"target_date,omitempty"`
	Status      *string `json:"status,omitempty"`
	Progress    *int64  `json:"progress,omitempty"`
}

// TimelineEvent is a dated milestone on the patient timeline.
type TimelineEvent struct {
	ID          int64   `json:"id"`
	PatientID   int64   `json:"patient_id"`
	EventType   string  `json:"event_type"`
	Description string  `json:"description"`
	EventDate   string  `json:"event_date"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
}
