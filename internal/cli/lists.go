package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rchart/internal/model"
)

// ListTable is a provider's worklists.
type ListTable []model.PatientList

func (t ListTable) RenderText(w io.Writer) error {
	if len(t) == 0 {
		_, err := fmt.Fprintln(w, "No lists.")
		return err
	}
	rows := make([][]string, len(t))
	for i, l := range t {
		def := ""
		if l.IsDefault {
			def = "*"
		}
		rows[i] = []string{idString(l.ID), l.Name + def, or(l.Description, "")}
	}
	return table(w, []string{"ID", "NAME", "DESCRIPTION"}, rows)
}

// ListView is one worklist rendered with its visible columns.
type ListView struct {
	*model.PatientListWithPatients
}

func (v ListView) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "%s (#%d)\n", v.List.Name, v.List.ID)
	var header []string
	var keys []string
	for _, c := range v.Columns {
		if c.IsVisible {
			header = append(header, strings.ToUpper(c.ColumnLabel))
			keys = append(keys, c.ColumnKey)
		}
	}
	rows := make([][]string, len(v.Patients))
	for i, p := range v.Patients {
		row := make([]string, len(keys))
		for j, k := range keys {
			row[j] = cell(p, k)
		}
		rows[i] = row
	}
	return table(w, header, rows)
}

// cell renders the demographic columns; chart-derived columns show "-".
func cell(p model.Patient, key string) string {
	switch key {
	case "name":
		return p.FullName()
	case "dob":
		return p.DOB
	case "sex":
		return p.Sex
	case "gender":
		return or(p.Gender, "-")
	case "phone":
		return or(p.Phone, "-")
	case "email":
		return or(p.Email, "-")
	case "address":
		return or(p.Address, "-")
	case "insurance_provider":
		return or(p.InsuranceProvider, "-")
	case "preferred_pharmacy":
		return or(p.PreferredPharmacy, "-")
	}
	return "-"
}

// NewListsCommand creates the lists command group.
func NewListsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Read provider worklists",
	}

	var userID int64
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List a provider's worklists in display order",
		Args:  cobra.NoArgs,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			lists, err := invoke(cmd, e, "lists.ls", func(ctx context.Context) ([]model.PatientList, error) {
				id := userID
				if id == 0 {
					u, err := e.store.CurrentUser(ctx)
					if err != nil || u == nil {
						return []model.PatientList{}, err
					}
					id = u.ID
				}
				return e.store.ListPatientLists(ctx, id)
			})
			if err != nil {
				return err
			}
			return e.out.Success(ListTable(lists))
		}),
	}
	ls.Flags().Int64Var(&userID, "user", 0, "provider id (default: the local provider)")
	cmd.AddCommand(ls)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <list-id>",
		Short: "Show a worklist with its members",
		Args:  idArg,
		RunE: withEnv(rootOpts, func(cmd *cobra.Command, args []string, e *env) error {
			id, _ := parseID(args[0])
			view, err := invoke(cmd, e, "lists.show", func(ctx context.Context) (*model.PatientListWithPatients, error) {
				v, err := e.store.GetPatientListWithPatients(ctx, id)
				if err == nil && v == nil {
					return nil, notFound("lists.show", "patient list", id)
				}
				return v, err
			})
			if err != nil {
				return err
			}
			return e.out.Success(ListView{view})
		}),
	})

	return cmd
}
