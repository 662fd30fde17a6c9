package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/client"
	"github.com/noah-isme/sma-adp-console/internal/console"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/config"
	"github.com/noah-isme/sma-adp-console/pkg/logger"
)

type cli struct {
	in  *bufio.Reader
	out io.Writer
	err io.Writer

	yes     bool
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
	remote console.Remote
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: bufio.NewReader(in), out: out, err: errOut}
	return c.command(in)
}

func (c *cli) command(in io.Reader) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin-console",
		Short:         "Manage accounts and invitations from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.SetIn(in)
	root.SetOut(c.out)
	root.SetErr(c.err)
	root.PersistentFlags().BoolVarP(&c.yes, "yes", "y", false, "skip confirmation prompts")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(c.accountsCommand(), c.invitationsCommand(), c.inviteCommand(), c.tokenCommand())
	return root
}

func (c *cli) setup() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.NewCLI(cfg, c.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logr
	if c.remote == nil {
		c.remote = client.New(cfg.Console, logr)
	}
	return nil
}

// newConsole builds the engine with stdin confirmation and notices printed to stderr.
func (c *cli) newConsole() *console.Console {
	return console.New(c.remote, console.Options{
		PageSize:     c.cfg.Console.PageSize,
		ProgramsWait: c.cfg.Console.ProgramsWait,
		Logger:       c.logger,
		Confirmer:    console.ConfirmFunc(c.confirm),
		Events: console.EventsFunc(func(_ context.Context, inv models.Invitation) {
			c.logger.Debug("invitation created", zap.String("invitation_id", inv.ID))
		}),
		NoticeSinks: []console.NoticeSink{c.printNotice},
	})
}

func (c *cli) confirm(_ context.Context, prompt string) (bool, error) {
	if c.yes {
		return true, nil
	}
	fmt.Fprintf(c.err, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (c *cli) printNotice(n console.Notice) {
	fmt.Fprintf(c.err, "[%s] %s\n", n.Tone, n.Message)
	if n.Detail != "" {
		fmt.Fprintf(c.err, "        %s\n", n.Detail)
	}
}

type filterFlags struct {
	search string
	role   string
	status string
	page   int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "match name or email")
	cmd.Flags().StringVar(&f.role, "role", "", "role filter, e.g. instructor")
	cmd.Flags().StringVar(&f.status, "status", "", "status filter")
	cmd.Flags().IntVar(&f.page, "page", 1, "page to show")
}

func (f filterFlags) apply(con *console.Console, tab console.Tab) {
	con.SetTab(tab)
	con.SetFilters(console.Filters{Search: f.search, Role: f.role, Status: f.status})
	con.SetPage(f.page)
}

// selectIDs marks the loaded records among ids so bulk actions can run over them. Unknown ids
// are reported on stderr and skipped.
func (c *cli) selectIDs(con *console.Console, kind console.Kind, ids []string) error {
	for _, id := range ids {
		if !con.Loaded(kind, id) {
			fmt.Fprintf(c.err, "skipping unknown %s %s\n", kind, id)
			continue
		}
		if !contains(con.Selected(kind), id) {
			con.Toggle(kind, id)
		}
	}
	if len(con.Selected(kind)) == 0 {
		return fmt.Errorf("no loaded %s matches the given ids", kind)
	}
	return nil
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
