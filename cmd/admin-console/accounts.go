package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-adp-console/internal/console"
	"github.com/noah-isme/sma-adp-console/pkg/export"
	"github.com/noah-isme/sma-adp-console/pkg/storage"
)

func (c *cli) accountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "List, export and toggle accounts",
	}

	var list filterFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			con := c.newConsole()
			if !con.LoadAccounts(cmd.Context()) {
				return errLoadFailed
			}
			list.apply(con, console.TabAccounts)
			return renderAccounts(c.out, con.Snapshot())
		},
	}
	list.bind(listCmd)

	var exp exportFlags
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered accounts to CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			con := c.newConsole()
			if !con.LoadAccounts(cmd.Context()) {
				return errLoadFailed
			}
			exp.apply(con, console.TabAccounts)
			return c.writeExport("accounts", exp, con.ExportAccounts)
		},
	}
	exp.bind(exportCmd)

	cmd.AddCommand(listCmd, exportCmd,
		c.accountStatusCommand("activate", "Activate the given accounts", (*console.Console).BulkActivate),
		c.accountStatusCommand("deactivate", "Deactivate the given accounts", (*console.Console).BulkDeactivate),
	)
	return cmd
}

func (c *cli) accountStatusCommand(use, short string, action func(*console.Console) console.BulkAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			con := c.newConsole()
			if !con.LoadAccounts(cmd.Context()) {
				return errLoadFailed
			}
			if err := c.selectIDs(con, console.KindAccount, args); err != nil {
				return err
			}
			return bulkOutcome(con.RunBulkAction(cmd.Context(), console.KindAccount, action(con)))
		},
	}
}

type exportFlags struct {
	filterFlags
	format string
	dir    string
}

func (f *exportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "match name or email")
	cmd.Flags().StringVar(&f.role, "role", "", "role filter")
	cmd.Flags().StringVar(&f.status, "status", "", "status filter")
	cmd.Flags().StringVar(&f.format, "format", "csv", "csv or pdf")
	cmd.Flags().StringVar(&f.dir, "dir", "", "output directory (defaults to CONSOLE_EXPORT_DIR)")
}

func (c *cli) writeExport(kind string, flags exportFlags, render func(export.Format) ([]byte, error)) error {
	format, err := export.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	data, err := render(format)
	if err != nil {
		return err
	}

	dir := flags.dir
	if dir == "" {
		dir = c.cfg.Console.ExportDir
	}
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return err
	}
	path, err := store.Save(storage.ExportFilename(kind, string(format), nowFunc()), data)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, path)
	return nil
}

// bulkOutcome turns item failures into a non-zero exit; the notice already described them.
func bulkOutcome(result console.BulkResult) error {
	if len(result.Failed) > 0 {
		return fmt.Errorf("%s failed for %d of %d items", result.Action, len(result.Failed), result.Attempted)
	}
	return nil
}
