package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-adp-console/internal/console"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

func (c *cli) inviteCommand() *cobra.Command {
	var opts console.OpenOptions
	var role string

	cmd := &cobra.Command{
		Use:   "invite EMAIL",
		Short: "Invite a user through a named dialog workflow",
		Example: `  admin-console invite grace@example.edu --role instructor
  admin-console invite ada@example.edu --workflow sectionAssignment --section sec-42
  admin-console invite pa@example.edu --role program_admin --program prog-1 --program prog-2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			con := c.newConsole()
			con.Load(ctx)

			if name, _ := con.Registry().Resolve(opts.Workflow); opts.Workflow != "" && name != opts.Workflow {
				fmt.Fprintf(c.err, "unknown workflow %q, using %s\n", opts.Workflow, name)
			}
			opts.Email = args[0]
			opts.Role = models.Role(role)
			con.OpenInviteDialog(opts)

			result, err := con.SubmitInviteDialog(ctx)
			if err != nil {
				if errors.Is(err, appErrors.ErrValidation) {
					return formErrors(con.Dialog().Errors)
				}
				return err
			}
			if result.Invitation != nil {
				fmt.Fprintln(c.out, result.Invitation.ID)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Workflow, "workflow", console.DefaultWorkflow, "dialog workflow ("+strings.Join(console.NewRegistry().Names(), ", ")+")")
	flags.StringVar(&role, "role", "", "role to grant")
	flags.StringVar(&opts.SectionID, "section", "", "course section to assign")
	flags.StringSliceVar(&opts.ProgramIDs, "program", nil, "program id; repeat for several")
	flags.StringVar(&opts.FirstName, "first-name", "", "invitee first name")
	flags.StringVar(&opts.LastName, "last-name", "", "invitee last name")
	flags.StringVar(&opts.PersonalMessage, "message", "", "personal message included in the email")
	return cmd
}

func formErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return errors.New("invitation form is invalid")
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, fields[name]))
	}
	return fmt.Errorf("invalid fields: %s", strings.Join(parts, ", "))
}
