package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rchart/internal/seed"
)

// SeedReport collects the results of one seed command, one entry per step.
type SeedReport struct {
	Steps []SeedStep `json:"steps"`
}

// SeedStep is the outcome of a single seeding operation.
type SeedStep struct {
	Step string `json:"step"`
	seed.Result
}

func (r SeedReport) RenderText(w io.Writer) error {
	for _, s := range r.Steps {
		status := "created"
		if s.Skipped {
			status = "skipped"
		}
		if _, err := fmt.Fprintf(w, "%-8s %-8s %3d  %s\n", s.Step, status, s.Created, s.Message); err != nil {
			return err
		}
	}
	return nil
}

// NewSeedCommand creates the seed command group.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
		Long: `Load demo patients, a provider profile, chart detail and worklists.

Every step is idempotent: it does nothing when its data is already present.
"seed detail --force" replaces a patient's clinical data instead.

Examples:
  rchart seed all
  rchart seed detail 1 --force`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Create demo patients, today's appointments and inbox messages",
		Args:  cobra.NoArgs,
		RunE: withSeeder(rootOpts, func(ctx context.Context, sd *seed.Seeder, e *env, args []string) ([]SeedStep, error) {
			return steps(ctx, seedStep{"test", sd.SeedTestData})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "user",
		Short: "Create the demo provider profile",
		Args:  cobra.NoArgs,
		RunE: withSeeder(rootOpts, func(ctx context.Context, sd *seed.Seeder, e *env, args []string) ([]SeedStep, error) {
			return steps(ctx, seedStep{"user", sd.SeedUserData})
		}),
	})

	var force bool
	detail := &cobra.Command{
		Use:   "detail <patient-id>",
		Short: "Fill one patient's chart with clinical data",
		Args:  idArg,
		RunE: withSeeder(rootOpts, func(ctx context.Context, sd *seed.Seeder, e *env, args []string) ([]SeedStep, error) {
			id, _ := parseID(args[0])
			return steps(ctx, seedStep{"detail", func(ctx context.Context) (seed.Result, error) {
				return sd.SeedPatientDetail(ctx, id, force)
			}})
		}),
	}
	detail.Flags().BoolVar(&force, "force", false, "replace existing clinical data")
	cmd.AddCommand(detail)

	var userID int64
	lists := &cobra.Command{
		Use:   "lists",
		Short: "Create the demo worklists for a provider",
		Args:  cobra.NoArgs,
		RunE: withSeeder(rootOpts, func(ctx context.Context, sd *seed.Seeder, e *env, args []string) ([]SeedStep, error) {
			return steps(ctx, seedStep{"lists", func(ctx context.Context) (seed.Result, error) {
				return seedLists(ctx, sd, e, userID)
			}})
		}),
	}
	lists.Flags().Int64Var(&userID, "user", 0, "provider id (default: the local provider)")
	cmd.AddCommand(lists)

	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run every seed step, adding chart detail for each patient",
		Args:  cobra.NoArgs,
		RunE: withSeeder(rootOpts, func(ctx context.Context, sd *seed.Seeder, e *env, args []string) ([]SeedStep, error) {
			out, err := steps(ctx,
				seedStep{"test", sd.SeedTestData},
				seedStep{"user", sd.SeedUserData},
				seedStep{"lists", func(ctx context.Context) (seed.Result, error) { return seedLists(ctx, sd, e, 0) }},
			)
			if err != nil {
				return nil, err
			}
			patients, err := e.store.ListPatients(ctx)
			if err != nil {
				return nil, err
			}
			for _, p := range patients {
				r, err := sd.SeedPatientDetail(ctx, p.ID, false)
				if err != nil {
					return nil, err
				}
				out = append(out, SeedStep{Step: "detail", Result: r})
			}
			return out, nil
		}),
	})

	return cmd
}

type seedStep struct {
	name string
	fn   func(context.Context) (seed.Result, error)
}

func steps(ctx context.Context, list ...seedStep) ([]SeedStep, error) {
	out := make([]SeedStep, 0, len(list))
	for _, s := range list {
		r, err := s.fn(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, SeedStep{Step: s.name, Result: r})
	}
	return out, nil
}

// seedLists targets userID, or the local provider when it is zero.
func seedLists(ctx context.Context, sd *seed.Seeder, e *env, userID int64) (seed.Result, error) {
	if userID == 0 {
		u, err := e.store.CurrentUser(ctx)
		if err != nil {
			return seed.Result{}, err
		}
		if u == nil {
			return seed.Result{Skipped: true, Message: "no provider profile; run \"seed user\" first"}, nil
		}
		userID = u.ID
	}
	return sd.SeedPatientLists(ctx, userID)
}

// withSeeder opens the store, builds a Seeder and runs fn through the
// boundary as one request.
func withSeeder(rootOpts *RootOptions, fn func(context.Context, *seed.Seeder, *env, []string) ([]SeedStep, error)) func(*cobra.Command, []string) error {
	return withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
		sd, err := seed.New(e.store, seed.Options{Logger: &e.log})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load seed fixtures", err)
		}
		out, err := invoke(cmd, e, "seed."+cmd.Name(), func(ctx context.Context) ([]SeedStep, error) {
			return fn(ctx, sd, e, args)
		})
		if err != nil {
			return err
		}
		return e.out.Success(SeedReport{Steps: out})
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q: must be a positive integer", s))
	}
	return id, nil
}

// idArg accepts exactly one positive integer argument.
func idArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	_, err := parseID(args[0])
	return err
}
