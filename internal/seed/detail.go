package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/rchart/internal/model"
	"github.com/roach88/rchart/internal/store"
)

// prescriptionDays is the supply length of seeded prescriptions.
const prescriptionDays = 90

// detailWriter writes the Detail fixture for one patient.
type detailWriter struct {
	st      *store.Store
	fx      *Fixtures
	patient model.Patient
	anchor  time.Time
	created int

	diagnoses map[string]int64
}

func (w *detailWriter) write(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"diagnoses", w.writeDiagnoses},
		{"vitals", w.writeVitals},
		{"labs", w.writeLabs},
		{"history", w.writeHistory},
		{"care plan", w.writeCarePlan},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (w *detailWriter) writeDiagnoses(ctx context.Context) error {
	st := w.st
	pid := w.patient.ID
	w.diagnoses = make(map[string]int64)

	var rx []model.Prescription
	for _, d := range w.fx.Detail.Diagnoses {
		status, category := d.Status, d.Category
		dxID, err := st.CreateDiagnosis(ctx, model.Diagnosis{
			PatientID: pid,
			Name:      d.Name,
			ICDCode:   d.ICDCode,
			OnsetDate: d.OnsetDate,
			Status:    &status,
			Category:  &category,
		})
		if err != nil {
			return err
		}
		w.diagnoses[d.Name] = dxID
		w.created++

		for _, m := range d.Medications {
			medStatus := m.Status
			medID, err := st.CreateMedication(ctx, model.Medication{
				PatientID: pid,
				Name:      m.Name,
				Dose:      m.Dose,
				Frequency: m.Frequency,
				Route:     m.Route,
				StartDate: m.StartDate,
				Status:    &medStatus,
			})
			if err != nil {
				return err
			}
			if err := st.LinkMedication(ctx, dxID, medID); err != nil {
				return err
			}
			w.created++

			if m.Dispense > 0 && m.Status == model.StatusActive {
				rx = append(rx, model.Prescription{
					PatientID:      pid,
					MedicationID:   &medID,
					MedicationName: m.Name,
					Dose:           m.Dose,
					Quantity:       m.Dispense,
					DaysSupply:     prescriptionDays,
					Refills:        3,
					Directions:     m.Frequency,
					Pharmacy:       w.patient.PreferredPharmacy,
					Prescriber:     w.prescriber(),
					PrescribedAt:   w.anchor.Format(time.DateOnly),
				})
			}
		}
	}

	if len(rx) > 0 {
		if _, err := st.CreatePrescriptions(ctx, rx); err != nil {
			return err
		}
		w.created += len(rx)
	}
	return nil
}

func (w *detailWriter) prescriber() *string {
	p := w.fx.Provider
	name := p.FirstName + " " + p.LastName
	if p.DegreeType != nil {
		name += ", " + *p.DegreeType
	}
	return &name
}

func (w *detailWriter) writeVitals(ctx context.Context) error {
	for _, t := range w.fx.Detail.Vitals {
		for _, pt := range t.Points(w.anchor) {
			_, err := w.st.CreateVital(ctx, model.Vital{
				PatientID:      w.patient.ID,
				VitalType:      t.Type,
				Value:          pt.Value,
				ValueSecondary: pt.Secondary,
				Unit:           t.Unit,
				RecordedAt:     pt.Date,
			})
			if err != nil {
				return err
			}
			w.created++
		}
	}
	return nil
}

func (w *detailWriter) writeLabs(ctx context.Context) error {
	for _, t := range w.fx.Detail.Labs {
		unit := t.Unit
		for _, pt := range t.Points(w.anchor) {
			_, err := w.st.CreateLab(ctx, model.Lab{
				PatientID:          w.patient.ID,
				Name:               t.Type,
				Value:              pt.Value,
				Unit:               &unit,
				ReferenceRangeLow:  t.Low,
				ReferenceRangeHigh: t.High,
				RecordedAt:         pt.Date,
			})
			if err != nil {
				return err
			}
			w.created++
		}
	}
	return nil
}

func (w *detailWriter) writeHistory(ctx context.Context) error {
	st := w.st
	d := w.fx.Detail
	pid := w.patient.ID

	for _, c := range d.ClinicalScores {
		c.PatientID = pid
		if _, err := st.CreateClinicalScore(ctx, c); err != nil {
			return err
		}
		w.created++
	}
	for _, e := range d.Encounters {
		e.PatientID = pid
		if _, err := st.CreateEncounter(ctx, e); err != nil {
			return err
		}
		w.created++
	}
	for _, a := range d.Allergies {
		a.PatientID = pid
		if _, err := st.CreateAllergy(ctx, a); err != nil {
			return err
		}
		w.created++
	}
	for _, v := range d.Vaccinations {
		v.PatientID = pid
		if _, err := st.CreateVaccination(ctx, v); err != nil {
			return err
		}
		w.created++
	}
	for _, h := range d.SocialHistory {
		h.PatientID = pid
		if _, err := st.CreateSocialHistory(ctx, h); err != nil {
			return err
		}
		w.created++
	}
	for _, h := range d.FamilyHistory {
		h.PatientID = pid
		if _, err := st.CreateFamilyHistory(ctx, h); err != nil {
			return err
		}
		w.created++
	}
	for _, e := range d.TimelineEvents {
		e.PatientID = pid
		if _, err := st.CreateTimelineEvent(ctx, e); err != nil {
			return err
		}
		w.created++
	}
	return nil
}

func (w *detailWriter) writeCarePlan(ctx context.Context) error {
	st := w.st
	pid := w.patient.ID

	for _, t := range w.fx.Detail.Todos {
		todo := model.Todo{PatientID: pid, Description: t.Description}
		priority := t.Priority
		todo.Priority = &priority
		if t.Diagnosis != nil {
			if id, ok := w.diagnoses[*t.Diagnosis]; ok {
				todo.DiagnosisID = &id
			}
		}
		if t.DueInDays != nil {
			due := w.anchor.AddDate(0, 0, *t.DueInDays).Format(time.DateOnly)
			todo.DueDate = &due
		}
		if _, err := st.CreateTodo(ctx, todo); err != nil {
			return err
		}
		w.created++
	}
	for _, g := range w.fx.Detail.Goals {
		g.PatientID = pid
		if _, err := st.CreateGoal(ctx, g); err != nil {
			return err
		}
		w.created++
	}
	return nil
}
