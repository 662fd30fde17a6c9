package console

import (
	"strings"

	"github.com/noah-isme/sma-adp-console/pkg/export"
)

var (
	accountHeaders    = []string{"Name", "Email", "Role", "Status", "Programs", "Last Activity"}
	invitationHeaders = []string{"Email", "Role", "Status", "Invited By", "Sent", "Expires"}
)

// ExportAccounts renders every account matching the current filters, across all pages.
func (c *Console) ExportAccounts(format export.Format) ([]byte, error) {
	c.mu.Lock()
	accounts := c.state.FilteredAccounts()
	c.mu.Unlock()

	rows := make([]map[string]string, 0, len(accounts))
	for _, a := range accounts {
		status, _ := FormatAccountStatus(a.Status)
		rows = append(rows, map[string]string{
			"Name":          a.FullName(),
			"Email":         a.Email,
			"Role":          FormatRole(a.Role),
			"Status":        status,
			"Programs":      strings.Join(a.ProgramNames, ", "),
			"Last Activity": FormatTimestamp(a.LastActivityAt),
		})
	}
	return export.Render(format, export.Dataset{Title: "Accounts", Headers: accountHeaders, Rows: rows})
}

// ExportInvitations renders every invitation matching the current filters, across all pages.
func (c *Console) ExportInvitations(format export.Format) ([]byte, error) {
	c.mu.Lock()
	invitations := c.state.FilteredInvitations()
	c.mu.Unlock()

	rows := make([]map[string]string, 0, len(invitations))
	for _, inv := range invitations {
		status, _ := FormatInvitationStatus(inv.Status)
		expires := c.ExpiryLabel(inv)
		if expires == "" {
			expires = "-"
		}
		rows = append(rows, map[string]string{
			"Email":      inv.Email,
			"Role":       FormatRole(inv.Role),
			"Status":     status,
			"Invited By": inv.InviterName,
			"Sent":       FormatDate(inv.SentAt),
			"Expires":    expires,
		})
	}
	return export.Render(format, export.Dataset{Title: "Invitations", Headers: invitationHeaders, Rows: rows})
}
