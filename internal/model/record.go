package model

// PatientRecord is everything known about one patient, assembled from every
// per-patient table. Each collection is non-nil; an empty table yields an
// empty slice.
type PatientRecord struct {
	Patient        Patient                    `json:"patient"`
	Diagnoses      []DiagnosisWithMedications `json:"diagnoses"`
	Medications    []Medication               `json:"medications"`
	Vitals         []Vital                    `json:"vitals"`
	Labs           []Lab                      `json:"labs"`
	ClinicalScores []ClinicalScore            `json:"clinical_scores"`
	Encounters     []Encounter                `json:"encounters"`
	Allergies      []Allergy                  `json:"allergies"`
	Vaccinations   []Vaccination              `json:"vaccinations"`
	SocialHistory  []SocialHistory            `json:"social_history"`
	FamilyHistory  []FamilyHistory            `json:"family_history"`
	Todos          []Todo                     `json:"todos"`
	Goals          []Goal                     `json:"goals"`
	TimelineEvents []TimelineEvent            `json:"timeline_events"`
}

// ProviderRecord is a provider profile with its sub-profiles.
type ProviderRecord struct {
	User      User            `json:"user"`
	Education []UserEducation `json:"education"`
	Badges    []UserBadge     `json:"badges"`
	Settings  UserSettings    `json:"settings"`
}

// SearchResult is one ranked hit from the full-text index. Lower Rank is a
// better match.
type SearchResult struct {
	ResultType string  `json:"result_type"`
	ID         int64   `json:"id"`
	PatientID  *int64  `json:"patient_id,omitempty"`
	Title      string  `json:"title"`
	Subtitle   *string `json:"subtitle,omitempty"`
	Snippet    *string `json:"snippet,omitempty"`
	Rank       float64 `json:"rank"`
}
