package console

import (
	"strings"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// Filters holds the three independent list criteria. Empty values match everything.
type Filters struct {
	Search string `json:"search,omitempty"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status,omitempty"`
}

// IsZero reports whether no criterion is set.
func (f Filters) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.Role == "" && f.Status == ""
}

// accountStatusFilter maps the simplified filter vocabulary onto stored account statuses.
var accountStatusFilter = map[string]models.AccountStatus{
	"active":   models.AccountActive,
	"pending":  models.AccountPendingVerification,
	"inactive": models.AccountInactive,
}

// MatchAccount reports whether the account satisfies every criterion.
func MatchAccount(account models.Account, f Filters) bool {
	if !matchText(f.Search, account.FirstName, account.LastName, account.Email) {
		return false
	}
	if f.Role != "" && string(account.Role) != f.Role {
		return false
	}
	if f.Status != "" {
		want, ok := accountStatusFilter[f.Status]
		if !ok || account.Status != want {
			return false
		}
	}
	return true
}

// MatchInvitation reports whether the invitation satisfies every criterion.
func MatchInvitation(invitation models.Invitation, f Filters) bool {
	if !matchText(f.Search, invitation.Email, invitation.InviterName) {
		return false
	}
	if f.Role != "" && string(invitation.Role) != f.Role {
		return false
	}
	if f.Status != "" && string(invitation.Status) != f.Status {
		return false
	}
	return true
}

// FilterAccounts returns the accounts matching f, preserving order.
func FilterAccounts(accounts []models.Account, f Filters) []models.Account {
	out := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		if MatchAccount(a, f) {
			out = append(out, a)
		}
	}
	return out
}

// FilterInvitations returns the invitations matching f, preserving order.
func FilterInvitations(invitations []models.Invitation, f Filters) []models.Invitation {
	out := make([]models.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if MatchInvitation(inv, f) {
			out = append(out, inv)
		}
	}
	return out
}

func matchText(search string, fields ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), needle)
}
