package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rchart/internal/model"
)

// PatientTable is a patient roster.
type PatientTable []model.Patient

func (t PatientTable) RenderText(w io.Writer) error {
	if len(t) == 0 {
		_, err := fmt.Fprintln(w, "No patients.")
		return err
	}
	rows := make([][]string, len(t))
	for i, p := range t {
		rows[i] = []string{idString(p.ID), p.LastName + ", " + p.FirstName, p.DOB, p.Sex, or(p.Phone, "-")}
	}
	return table(w, []string{"ID", "NAME", "DOB", "SEX", "PHONE"}, rows)
}

// PatientChart is a full patient record.
type PatientChart struct {
	*model.PatientRecord
}

func (c PatientChart) RenderText(w io.Writer) error {
	p := c.Patient
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)  DOB %s  %s\n", p.FullName(), p.ID, p.DOB, p.Sex)
	if p.AISummary != nil {
		fmt.Fprintf(&b, "\n%s\n", *p.AISummary)
	}

	b.WriteString("\nProblems\n")
	meds := make(map[int64]string, len(c.Medications))
	for _, m := range c.Medications {
		meds[m.ID] = m.Name
	}
	for _, d := range c.Diagnoses {
		fmt.Fprintf(&b, "  %s [%s] %s\n", d.Diagnosis.Name, or(d.Diagnosis.ICDCode, "no code"), or(d.Diagnosis.Status, ""))
		for _, id := range d.MedicationIDs {
			if name, ok := meds[id]; ok {
				fmt.Fprintf(&b, "      - %s\n", name)
			}
		}
	}

	b.WriteString("\nMedications\n")
	for _, m := range c.Medications {
		fmt.Fprintf(&b, "  %s %s %s\n", m.Name, or(m.Dose, ""), or(m.Frequency, ""))
	}

	b.WriteString("\nRecent labs\n")
	for i := len(c.Labs) - 1; i >= 0 && i >= len(c.Labs)-5; i-- {
		l := c.Labs[i]
		flag := ""
		if l.IsAbnormal != nil && *l.IsAbnormal {
			flag = " (abnormal)"
		}
		fmt.Fprintf(&b, "  %s %s: %g %s%s\n", l.RecordedAt, l.Name, l.Value, or(l.Unit, ""), flag)
	}

	b.WriteString("\nOpen todos\n")
	for _, t := range c.Todos {
		if or(t.Status, model.StatusPending) != model.StatusPending {
			continue
		}
		fmt.Fprintf(&b, "  [%s] %s (due %s)\n", or(t.Priority, model.DefaultTodoPriority), t.Description, or(t.DueDate, "-"))
	}

	fmt.Fprintf(&b, "\n%d vitals, %d encounters, %d allergies, %d vaccinations, %d goals, %d timeline events\n",
		len(c.Vitals), len(c.Encounters), len(c.Allergies), len(c.Vaccinations), len(c.Goals), len(c.TimelineEvents))
	_, err := io.WriteString(w, b.String())
	return err
}

// NewPatientCommand creates the patient command group.
func NewPatientCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Read patient charts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List patients by name",
		Args:  cobra.NoArgs,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			patients, err := invoke(cmd, e, "patient.list", e.store.ListPatients)
			if err != nil {
				return err
			}
			return e.out.Success(PatientTable(patients))
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <patient-id>",
		Short: "Show a patient's full chart",
		Long: `Show everything recorded for one patient, read as a single consistent
snapshot.

Examples:
  rchart patient show 1
  rchart patient show 1 --format json`,
		Args: idArg,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			id, _ := parseID(args[0])
			rec, err := invoke(cmd, e, "patient.show", func(ctx context.Context) (*model.PatientRecord, error) {
				rec, err := e.store.FullPatientRecord(ctx, id)
				if err == nil && rec == nil {
					return nil, notFound("patient.show", "patient", id)
				}
				return rec, err
			})
			if err != nil {
				return err
			}
			return e.out.Success(PatientChart{rec})
		}),
	})

	return cmd
}
