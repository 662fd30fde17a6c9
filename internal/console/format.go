package console

import (
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

const (
	timestampLayout = "2006-01-02 15:04"
	dateLayout      = "2006-01-02"
	neverLabel      = "Never"
)

// Badge tones mirror the notice tones plus a neutral tone for inactive states.
const (
	BadgeSuccess   = "success"
	BadgeWarning   = "warning"
	BadgeError     = "error"
	BadgeSecondary = "secondary"
)

// FormatTimestamp renders a nullable timestamp in local display form.
func FormatTimestamp(value *time.Time) string {
	if value == nil || value.IsZero() {
		return neverLabel
	}
	return value.Local().Format(timestampLayout)
}

// FormatDate renders a YYYY-MM-DD date.
func FormatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Local().Format(dateLayout)
}

// FormatRole turns a role code such as program_admin into "Program Admin".
func FormatRole(role models.Role) string {
	return humanize(string(role))
}

// FormatAccountStatus returns the display label and badge tone for an account status.
func FormatAccountStatus(status models.AccountStatus) (string, string) {
	switch status {
	case models.AccountActive:
		return "Active", BadgeSuccess
	case models.AccountPendingVerification:
		return "Pending", BadgeWarning
	case models.AccountInactive:
		return "Inactive", BadgeSecondary
	default:
		return humanize(string(status)), BadgeSecondary
	}
}

// FormatInvitationStatus returns the display label and badge tone for an invitation status.
func FormatInvitationStatus(status models.InvitationStatus) (string, string) {
	switch status {
	case models.InvitationPending:
		return "Pending", BadgeWarning
	case models.InvitationAccepted:
		return "Accepted", BadgeSuccess
	case models.InvitationCancelled:
		return "Cancelled", BadgeError
	case models.InvitationExpired:
		return "Expired", BadgeSecondary
	default:
		return humanize(string(status)), BadgeSecondary
	}
}

// Escape makes free text safe to embed in markup.
func Escape(text string) string {
	return templ.EscapeString(text)
}

// Truncate shortens text to limit runes with an ellipsis.
func Truncate(text string, limit int) string {
	if limit <= 0 || text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func humanize(code string) string {
	code = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(code))
	if code == "" {
		return ""
	}
	// Casers carry state, one per call.
	return cases.Title(language.English).String(code)
}
