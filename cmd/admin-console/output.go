package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/noah-isme/sma-adp-console/internal/console"
	"github.com/noah-isme/sma-adp-console/internal/models"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// Column limits keep free-text cells from stretching the table.
const (
	programsWidth = 40
	inviterWidth  = 24
)

func renderAccounts(out io.Writer, view console.View) error {
	w := newTable(out)
	fmt.Fprintln(w, "SEL\tID\tNAME\tEMAIL\tROLE\tSTATUS\tPROGRAMS\tLAST ACTIVE")
	selected := toSet(view.SelectedAccounts)
	for _, a := range view.Accounts.Items {
		status, _ := console.FormatAccountStatus(a.Status)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark(selected, a.ID),
			a.ID,
			a.FullName(),
			a.Email,
			console.FormatRole(a.Role),
			status,
			console.Truncate(strings.Join(a.ProgramNames, ", "), programsWidth),
			console.FormatTimestamp(a.LastActivityAt),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return renderFooter(out, view, "accounts")
}

func renderInvitations(out io.Writer, view console.View, expiry func(models.Invitation) string) error {
	w := newTable(out)
	fmt.Fprintln(w, "SEL\tID\tEMAIL\tROLE\tSTATUS\tINVITED BY\tSENT\tEXPIRES")
	selected := toSet(view.SelectedInvitations)
	for _, inv := range view.Invitations.Items {
		status, _ := console.FormatInvitationStatus(inv.Status)
		sent := inv.SentAt
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark(selected, inv.ID),
			inv.ID,
			inv.Email,
			console.FormatRole(inv.Role),
			status,
			console.Truncate(inv.InviterName, inviterWidth),
			console.FormatTimestamp(&sent),
			expiry(inv),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return renderFooter(out, view, "invitations")
}

func renderFooter(out io.Writer, view console.View, noun string) error {
	total := view.Accounts.TotalItems
	if view.Tab == console.TabInvitations {
		total = view.Invitations.TotalItems
	}
	if total == 0 {
		_, err := fmt.Fprintf(out, "No %s found.\n", noun)
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d %s, page %d of %d  %s\n", total, noun, view.Page, view.PageCount, pageIndex(view.PageIndex))
	return err
}

func pageIndex(markers []console.PageMarker) string {
	parts := make([]string, 0, len(markers))
	for _, m := range markers {
		switch {
		case m.Ellipsis:
			parts = append(parts, "…")
		case m.Current:
			parts = append(parts, fmt.Sprintf("[%d]", m.Number))
		default:
			parts = append(parts, fmt.Sprintf("%d", m.Number))
		}
	}
	return strings.Join(parts, " ")
}

func mark(selected map[string]struct{}, id string) string {
	if _, ok := selected[id]; ok {
		return "*"
	}
	return ""
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
