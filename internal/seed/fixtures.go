package seed

import (
	_ "embed"
	"fmt"
	"math"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/rchart/internal/model"
)

//go:embed fixtures.cue
var fixturesCUE string

// Fixtures is the decoded demo data set.
type Fixtures struct {
	Patients     []model.Patient      `json:"patients"`
	Appointments []AppointmentFixture `json:"appointments"`
	Messages     []MessageFixture     `json:"messages"`
	Detail       Detail               `json:"detail"`
	Provider     ProviderFixture      `json:"provider"`
	Lists        []ListFixture        `json:"lists"`
}

// AppointmentFixture is booked on the seeding day.
type AppointmentFixture struct {
	Patient  int     `json:"patient"`
	Time     string  `json:"time"`
	Duration int64   `json:"duration"`
	Reason   *string `json:"reason,omitempty"`
}

type MessageFixture struct {
	Patient *int   `json:"patient,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Detail is the clinical chart applied by SeedPatientDetail.
type Detail struct {
	Diagnoses      []DiagnosisFixture    `json:"diagnoses"`
	Vitals         []Trend               `json:"vitals"`
	Labs           []Trend               `json:"labs"`
	ClinicalScores []model.ClinicalScore `json:"clinical_scores"`
	Encounters     []model.Encounter     `json:"encounters"`
	Allergies      []model.Allergy       `json:"allergies"`
	Vaccinations   []model.Vaccination   `json:"vaccinations"`
	SocialHistory  []model.SocialHistory `json:"social_history"`
	FamilyHistory  []model.FamilyHistory `json:"family_history"`
	Todos          []TodoFixture         `json:"todos"`
	Goals          []model.Goal          `json:"goals"`
	TimelineEvents []model.TimelineEvent `json:"timeline_events"`
}

type DiagnosisFixture struct {
	Name        string              `json:"name"`
	ICDCode     *string             `json:"icd_code,omitempty"`
	OnsetDate   *string             `json:"onset_date,omitempty"`
	Status      string              `json:"status"`
	Category    string              `json:"category"`
	Medications []MedicationFixture `json:"medications"`
}

type MedicationFixture struct {
	Name      string  `json:"name"`
	Dose      *string `json:"dose,omitempty"`
	Frequency *string `json:"frequency,omitempty"`
	Route     *string `json:"route,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	Status    string  `json:"status"`
	Dispense  int64   `json:"dispense"`
}

type TodoFixture struct {
	Description string  `json:"description"`
	Diagnosis   *string `json:"diagnosis,omitempty"`
	DueInDays   *int    `json:"due_in_days,omitempty"`
	Priority    string  `json:"priority"`
}

// Trend describes a series of evenly spaced readings ending on the anchor
// day. Low and High are the reference range for labs.
type Trend struct {
	Type          string   `json:"type"`
	Unit          string   `json:"unit"`
	Base          float64  `json:"base"`
	Step          float64  `json:"step"`
	SecondaryBase *float64 `json:"secondary_base,omitempty"`
	SecondaryStep float64  `json:"secondary_step"`
	Low           *float64 `json:"low,omitempty"`
	High          *float64 `json:"high,omitempty"`
	Count         int      `json:"count"`
	IntervalDays  int      `json:"interval_days"`
}

// Point is one generated reading.
type Point struct {
	Date      string
	Value     float64
	Secondary *float64
}

// jitter is added to sloped series so charts are not perfectly straight.
var jitter = []float64{0, 0.4, -0.3, 0.2, -0.1}

// Points generates the series. The last reading falls on anchor and earlier
// readings step back IntervalDays at a time. The output depends only on the
// trend and the anchor day.
func (t Trend) Points(anchor time.Time) []Point {
	out := make([]Point, 0, t.Count)
	for i := 0; i < t.Count; i++ {
		day := anchor.AddDate(0, 0, -(t.Count-1-i)*t.IntervalDays)
		p := Point{
			Date:  day.Format(time.DateOnly),
			Value: round2(t.Base + t.Step*float64(i) + jitter[i%len(jitter)]*math.Abs(t.Step)),
		}
		if t.SecondaryBase != nil {
			v := round2(*t.SecondaryBase + t.SecondaryStep*float64(i))
			p.Secondary = &v
		}
		out = append(out, p)
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

type ProviderFixture struct {
	Username     string                `json:"username"`
	PasswordHash string                `json:"password_hash"`
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	DegreeType   *string               `json:"degree_type,omitempty"`
	Specialty    *string               `json:"specialty,omitempty"`
	Subspecialty *string               `json:"subspecialty,omitempty"`
	NPINumber    *string               `json:"npi_number,omitempty"`
	Bio          *string               `json:"bio,omitempty"`
	Education    []model.UserEducation `json:"education"`
	Badges       []model.UserBadge     `json:"badges"`
}

func (p ProviderFixture) user() model.User {
	return model.User{
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		DegreeType:   p.DegreeType,
		Specialty:    p.Specialty,
		Subspecialty: p.Subspecialty,
		NPINumber:    p.NPINumber,
		Bio:          p.Bio,
	}
}

type ListFixture struct {
	Name           string   `json:"name"`
	Description    *string  `json:"description,omitempty"`
	Color          *string  `json:"color,omitempty"`
	Icon           *string  `json:"icon,omitempty"`
	IsDefault      bool     `json:"is_default"`
	Members        []int    `json:"members"`
	VisibleColumns []string `json:"visible_columns"`
}

// Load returns the built-in fixtures.
func Load() (*Fixtures, error) {
	return Parse(fixturesCUE)
}

// Parse compiles CUE source, validates that every value is concrete and
// satisfies the schema definitions, and decodes it.
func Parse(src string) (*Fixtures, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("fixtures.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile fixtures: %s", cueerrors.Details(err, nil))
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate fixtures: %s", cueerrors.Details(err, nil))
	}

	var fx Fixtures
	if err := v.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := fx.check(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// check enforces the cross references CUE cannot express on its own.
func (fx *Fixtures) check() error {
	n := len(fx.Patients)
	for i, a := range fx.Appointments {
		if a.Patient >= n {
			return fmt.Errorf("appointment %d: patient %d out of range", i, a.Patient)
		}
	}
	for i, m := range fx.Messages {
		if m.Patient != nil && *m.Patient >= n {
			return fmt.Errorf("message %d: patient %d out of range", i, *m.Patient)
		}
	}
	for _, l := range fx.Lists {
		for _, m := range l.Members {
			if m >= n {
				return fmt.Errorf("list %q: member %d out of range", l.Name, m)
			}
		}
		for _, key := range l.VisibleColumns {
			if !knownColumn(key) {
				return fmt.Errorf("list %q: unknown column %q", l.Name, key)
			}
		}
	}
	names := make(map[string]bool, len(fx.Detail.Diagnoses))
	for _, d := range fx.Detail.Diagnoses {
		names[d.Name] = true
	}
	for _, t := range fx.Detail.Todos {
		if t.Diagnosis != nil && !names[*t.Diagnosis] {
			return fmt.Errorf("todo %q: unknown diagnosis %q", t.Description, *t.Diagnosis)
		}
	}
	return nil
}

func knownColumn(key string) bool {
	for _, c := range model.AvailableColumns {
		if c.Key == key {
			return true
		}
	}
	return false
}
