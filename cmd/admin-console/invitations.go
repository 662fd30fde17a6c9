package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-adp-console/internal/console"
)

var errLoadFailed = errors.New("could not load data from the admin API")

var nowFunc = time.Now

func (c *cli) invitationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invitations",
		Aliases: []string{"invitation", "inv"},
		Short:   "List, export, resend and cancel invitations",
	}

	var list filterFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of invitations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			con := c.newConsole()
			if !con.LoadInvitations(cmd.Context()) {
				return errLoadFailed
			}
			list.apply(con, console.TabInvitations)
			return renderInvitations(c.out, con.Snapshot(), con.ExpiryLabel)
		},
	}
	list.bind(listCmd)

	var exp exportFlags
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered invitations to CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			con := c.newConsole()
			if !con.LoadInvitations(cmd.Context()) {
				return errLoadFailed
			}
			exp.apply(con, console.TabInvitations)
			return c.writeExport("invitations", exp, con.ExportInvitations)
		},
	}
	exp.bind(exportCmd)

	resendCmd := &cobra.Command{
		Use:   "resend ID...",
		Short: "Resend pending invitations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			con := c.newConsole()
			if !con.LoadInvitations(cmd.Context()) {
				return errLoadFailed
			}
			if len(args) == 1 {
				return con.ResendInvitation(cmd.Context(), args[0])
			}
			if err := c.selectIDs(con, console.KindInvitation, args); err != nil {
				return err
			}
			return bulkOutcome(con.RunBulkAction(cmd.Context(), console.KindInvitation, con.BulkResend()))
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel ID...",
		Short: "Cancel pending invitations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			con := c.newConsole()
			if !con.LoadInvitations(cmd.Context()) {
				return errLoadFailed
			}
			if len(args) == 1 {
				err := con.CancelInvitation(cmd.Context(), args[0])
				if errors.Is(err, console.ErrDeclined) {
					return nil
				}
				return err
			}
			if err := c.selectIDs(con, console.KindInvitation, args); err != nil {
				return err
			}
			return bulkOutcome(con.RunBulkAction(cmd.Context(), console.KindInvitation, con.BulkCancel()))
		},
	}

	cmd.AddCommand(listCmd, exportCmd, resendCmd, cancelCmd)
	return cmd
}
