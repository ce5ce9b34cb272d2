package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rchart/internal/model"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	PatientID int64
	Limit     int
	Quick     bool
}

// SearchTable is a ranked list of hits.
type SearchTable []model.SearchResult

func (t SearchTable) RenderText(w io.Writer) error {
	if len(t) == 0 {
		_, err := fmt.Fprintln(w, "No matches.")
		return err
	}
	rows := make([][]string, len(t))
	for i, r := range t {
		rows[i] = []string{r.ResultType, idString(r.ID), r.Title, or(r.Subtitle, ""), stripMarks(or(r.Snippet, ""))}
	}
	return table(w, []string{"TYPE", "ID", "TITLE", "DETAIL", "SNIPPET"}, rows)
}

// stripMarks turns the index's <mark> highlighting into terminal-friendly
// brackets.
func stripMarks(s string) string {
	return strings.NewReplacer("<mark>", "[", "</mark>", "]").Replace(s)
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Full-text search across patients and chart data",
		Long: `Search patients, encounters, diagnoses, medications and labs. Every word
is matched as a prefix; results are ranked best first.

--patient restricts the search to one patient's chart. --quick filters the
patient roster instead; with no query it lists every patient.

Examples:
  rchart search chest pain
  rchart search --patient 1 metformin
  rchart search --quick nun`,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			return runSearch(cmd, e, opts, strings.Join(args, " "))
		}),
	}

	cmd.Flags().Int64Var(&opts.PatientID, "patient", 0, "search only this patient's chart")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results (default 20, or 50 with --quick)")
	cmd.Flags().BoolVar(&opts.Quick, "quick", false, "filter the patient roster by name")
	cmd.MarkFlagsMutuallyExclusive("patient", "quick")

	return cmd
}

func runSearch(cmd *cobra.Command, e *env, opts *SearchOptions, query string) error {
	if opts.Quick {
		patients, err := invoke(cmd, e, "search.quick", func(ctx context.Context) ([]model.Patient, error) {
			return e.store.QuickSearchPatients(ctx, query, opts.Limit)
		})
		if err != nil {
			return err
		}
		return e.out.Success(PatientTable(patients))
	}

	if strings.TrimSpace(query) == "" {
		return NewExitError(ExitCommandError, "search needs a query (or --quick to list patients)")
	}

	command := "search.global"
	if opts.PatientID != 0 {
		command = "search.patient"
	}
	hits, err := invoke(cmd, e, command, func(ctx context.Context) ([]model.SearchResult, error) {
		if opts.PatientID != 0 {
			return e.store.SearchPatientData(ctx, opts.PatientID, query, opts.Limit)
		}
		return e.store.GlobalSearch(ctx, query, opts.Limit)
	})
	if err != nil {
		return err
	}
	return e.out.Success(SearchTable(hits))
}

// ReindexResult reports a search index rebuild.
type ReindexResult struct {
	Duration time.Duration `json:"duration_ns"`
}

func (r ReindexResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Search index rebuilt in %s\n", r.Duration.Round(time.Millisecond))
	return err
}

// NewReindexCommand creates the reindex command.
func NewReindexCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the full-text search index from the record tables",
		Args:  cobra.NoArgs,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			start := time.Now()
			if _, err := invoke(cmd, e, "reindex", func(ctx context.Context) (struct{}, error) {
				return struct{}{}, e.store.RebuildSearchIndex(ctx)
			}); err != nil {
				return err
			}
			return e.out.Success(ReindexResult{Duration: time.Since(start)})
		}),
	}
}
