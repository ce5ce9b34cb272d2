package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rchart/internal/model"
	"github.com/roach88/rchart/internal/store"
)

// ProviderProfile is a provider record with the password hash removed.
type ProviderProfile struct {
	*model.ProviderRecord
}

func (p ProviderProfile) RenderText(w io.Writer) error {
	u := p.User
	fmt.Fprintf(w, "%s %s, %s (#%d, %s)\n", u.FirstName, u.LastName, or(u.DegreeType, "-"), u.ID, u.Username)
	fmt.Fprintf(w, "  specialty: %s / %s\n  NPI: %s\n", or(u.Specialty, "-"), or(u.Subspecialty, "-"), or(u.NPINumber, "-"))
	if len(p.Education) > 0 {
		fmt.Fprintln(w, "\nEducation")
		for _, e := range p.Education {
			fmt.Fprintf(w, "  %s: %s %s\n", e.EducationType, e.Institution, or(e.Degree, ""))
		}
	}
	if len(p.Badges) > 0 {
		fmt.Fprintln(w, "\nBadges")
		for _, b := range p.Badges {
			fmt.Fprintf(w, "  %s (%s) %s\n", b.BadgeName, b.BadgeType, or(b.AwardedDate, ""))
		}
	}
	s := p.Settings
	_, err := fmt.Fprintf(w, "\nSettings: language=%s notifications=%t email=%t sms=%t 2fa=%t zen=%t\n",
		s.Language, s.NotificationsEnabled, s.EmailNotifications, s.SMSNotifications, s.TwoFactorEnabled, s.ZenModeDefault)
	return err
}

// NewProviderCommand creates the provider command group.
func NewProviderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Read provider profiles",
	}

	var userID int64
	show := &cobra.Command{
		Use:   "show",
		Short: "Show a provider profile with education, badges and settings",
		Long: `Show a provider profile. Without --user the local provider (the first
profile created) is shown. Settings are created with defaults on first read.`,
		Args: cobra.NoArgs,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			rec, err := invoke(cmd, e, "provider.show", func(ctx context.Context) (*model.ProviderRecord, error) {
				return providerRecord(ctx, e.store, userID)
			})
			if err != nil {
				return err
			}
			rec.User.PasswordHash = ""
			return e.out.Success(ProviderProfile{rec})
		}),
	}
	show.Flags().Int64Var(&userID, "user", 0, "provider id (default: the local provider)")
	cmd.AddCommand(show)

	return cmd
}

func providerRecord(ctx context.Context, st *store.Store, userID int64) (*model.ProviderRecord, error) {
	var rec *model.ProviderRecord
	var err error
	if userID == 0 {
		rec, err = st.CurrentProviderRecord(ctx)
	} else {
		rec, err = st.FullProviderRecord(ctx, userID)
	}
	if err == nil && rec == nil {
		return nil, notFound("provider.show", "provider", userID)
	}
	return rec, err
}
