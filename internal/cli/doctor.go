package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/rchart/internal/store"
)

// DoctorReport is a health summary of the database.
type DoctorReport struct {
	Path                  string             `json:"path"`
	Driver                string             `json:"driver"`
	SchemaVersion         int                `json:"schema_version"`
	FileSize              int64              `json:"file_size"`
	EncryptionKeySupplied bool               `json:"encryption_key_supplied"`
	EncryptionApplied     bool               `json:"encryption_applied"`
	Integrity             string             `json:"integrity"`
	Tables                []store.TableCount `json:"tables"`
	Metrics               []MetricSample     `json:"metrics"`
}

// MetricSample is one counter value observed during the check.
type MetricSample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Healthy reports whether the integrity check passed.
func (r DoctorReport) Healthy() bool { return r.Integrity == "ok" }

func (r DoctorReport) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "database:   %s (%s)\n", r.Path, humanize.IBytes(uint64(r.FileSize)))
	fmt.Fprintf(w, "driver:     %s\n", r.Driver)
	fmt.Fprintf(w, "schema:     v%d\n", r.SchemaVersion)
	fmt.Fprintf(w, "integrity:  %s\n", r.Integrity)
	switch {
	case r.EncryptionApplied:
		fmt.Fprintln(w, "encryption: on")
	case r.EncryptionKeySupplied:
		fmt.Fprintln(w, "encryption: OFF - a key is configured but not applied; data is stored in plaintext")
	default:
		fmt.Fprintln(w, "encryption: off")
	}

	fmt.Fprintln(w)
	rows := make([][]string, len(r.Tables))
	for i, t := range r.Tables {
		rows[i] = []string{t.Table, humanize.Comma(t.Rows)}
	}
	if err := table(w, []string{"TABLE", "ROWS"}, rows); err != nil {
		return err
	}

	fmt.Fprintln(w)
	rows = rows[:0]
	for _, m := range r.Metrics {
		rows = append(rows, []string{m.Name, formatLabels(m.Labels), fmt.Sprintf("%g", m.Value)})
	}
	return table(w, []string{"METRIC", "LABELS", "VALUE"}, rows)
}

func formatLabels(labels map[string]string) string {
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check database integrity and report counts, encryption status and metrics",
		Long: `Run SQLite's integrity check, count rows in the main tables and report
the store metrics collected while doing so. Exits 1 when the integrity
check fails.`,
		Args: cobra.NoArgs,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			report, err := invoke(cmd, e, "doctor", func(ctx context.Context) (DoctorReport, error) {
				return diagnose(ctx, e)
			})
			if err != nil {
				return err
			}
			if err := e.out.Success(report); err != nil {
				return err
			}
			if !report.Healthy() {
				return NewExitError(ExitFailure, "integrity check failed: "+report.Integrity)
			}
			return nil
		}),
	}
}

func diagnose(ctx context.Context, e *env) (DoctorReport, error) {
	r := DoctorReport{
		Path:                  e.store.Path(),
		Driver:                e.store.Driver(),
		SchemaVersion:         e.store.SchemaVersion(),
		EncryptionKeySupplied: e.store.EncryptionKeySupplied(),
		EncryptionApplied:     e.store.EncryptionApplied(),
	}
	if st, err := os.Stat(r.Path); err == nil {
		r.FileSize = st.Size()
	}

	var err error
	if r.Integrity, err = e.store.IntegrityCheck(ctx); err != nil {
		return r, err
	}
	if r.Tables, err = e.store.TableCounts(ctx); err != nil {
		return r, err
	}
	if r.Metrics, err = gatherCounters(e.reg); err != nil {
		return r, err
	}
	return r, nil
}

// gatherCounters flattens counter values and histogram sample counts.
func gatherCounters(g prometheus.Gatherer) ([]MetricSample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := []MetricSample{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels map[string]string
			if len(m.GetLabel()) > 0 {
				labels = make(map[string]string, len(m.GetLabel()))
				for _, lp := range m.GetLabel() {
					labels[lp.GetName()] = lp.GetValue()
				}
			}
			switch {
			case m.GetCounter() != nil:
				out = append(out, MetricSample{Name: mf.GetName(), Labels: labels, Value: m.GetCounter().GetValue()})
			case m.GetHistogram() != nil:
				out = append(out, MetricSample{
					Name:   mf.GetName() + "_count",
					Labels: labels,
					Value:  float64(m.GetHistogram().GetSampleCount()),
				})
			}
		}
	}
	return out, nil
}
