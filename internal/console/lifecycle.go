package console

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// ErrDeclined is returned when the operator declines a confirmation prompt.
var ErrDeclined = errors.New("console: action declined")

const day = 24 * time.Hour

// ExpiryLabel classifies how close an invitation is to expiring.
func ExpiryLabel(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil {
		return ""
	}
	remaining := expiresAt.Sub(now)
	switch {
	case remaining < 0:
		return "Expired"
	case remaining < day:
		return "Today"
	case remaining < 2*day:
		return "Tomorrow"
	}
	return fmt.Sprintf("%d days", int(math.Ceil(float64(remaining)/float64(day))))
}

// ExpiryLabel classifies inv against the console clock.
func (c *Console) ExpiryLabel(inv models.Invitation) string {
	if !inv.IsPending() {
		return ""
	}
	return ExpiryLabel(inv.ExpiresAt, c.now())
}

// ResendInvitation re-delivers a pending invitation, reloads invitations and notifies. A resend
// whose email was not delivered still succeeds and is reported with warning tone.
func (c *Console) ResendInvitation(ctx context.Context, id string) error {
	result, err := c.resend(ctx, id)
	if err != nil {
		c.notices.Notify(appErrors.MessageOr(err, "Failed to resend invitation"), ToneError)
		return err
	}
	c.LoadInvitations(ctx)
	if result != nil && result.EmailError != "" {
		c.notices.Notify(InvitationResendEmailFailedMessage, ToneWarning, result.EmailError)
		return nil
	}
	c.notices.Notify("Invitation resent successfully", ToneSuccess)
	return nil
}

// CancelInvitation confirms, then cancels a pending invitation.
func (c *Console) CancelInvitation(ctx context.Context, id string) error {
	prompt := "Cancel this invitation?"
	if inv, ok := c.findInvitation(id); ok {
		prompt = fmt.Sprintf("Cancel the invitation for %s?", inv.Email)
	}
	if !c.confirmed(ctx, prompt) {
		return ErrDeclined
	}
	if err := c.cancel(ctx, id); err != nil {
		c.notices.Notify(appErrors.MessageOr(err, "Failed to cancel invitation"), ToneError)
		return err
	}
	c.LoadInvitations(ctx)
	c.notices.Notify("Invitation cancelled", ToneSuccess)
	return nil
}

// UpdateAccount validates and saves account edits.
func (c *Console) UpdateAccount(ctx context.Context, id string, req models.UpdateAccountRequest) error {
	if err := c.validate.Struct(req); err != nil {
		c.notices.Notify("Please fill in all required fields", ToneError)
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account update")
	}
	if err := c.remote.UpdateAccount(ctx, id, req); err != nil {
		c.logger.Warn("account update failed", zap.String("account_id", id), zap.Error(err))
		c.notices.Notify(appErrors.MessageOr(err, "Failed to update account"), ToneError)
		return err
	}
	c.LoadAccounts(ctx)
	c.notices.Notify("Account updated successfully", ToneSuccess)
	return nil
}

// SetAccountStatus activates or deactivates one account.
func (c *Console) SetAccountStatus(ctx context.Context, id string, status models.AccountStatus) error {
	if err := c.setStatus(ctx, id, status); err != nil {
		c.notices.Notify(appErrors.MessageOr(err, "Failed to update account status"), ToneError)
		return err
	}
	c.LoadAccounts(ctx)
	label, _ := FormatAccountStatus(status)
	c.notices.Notify("Account status set to "+label, ToneSuccess)
	return nil
}

// resend and cancel refuse invitations known to be non-pending without a remote call. Unknown
// ids go through and the admin API decides.
func (c *Console) resend(ctx context.Context, id string) (*models.ResendInvitationResult, error) {
	if err := c.guardPending(id); err != nil {
		return nil, err
	}
	return c.remote.ResendInvitation(ctx, id)
}

func (c *Console) cancel(ctx context.Context, id string) error {
	if err := c.guardPending(id); err != nil {
		return err
	}
	return c.remote.CancelInvitation(ctx, id)
}

func (c *Console) setStatus(ctx context.Context, id string, status models.AccountStatus) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown account status")
	}
	c.mu.Lock()
	account, ok := c.state.FindAccount(id)
	c.mu.Unlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "account not found")
	}
	return c.remote.UpdateAccount(ctx, id, models.UpdateAccountRequest{
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Role:      account.Role,
		Status:    status,
	})
}

func (c *Console) guardPending(id string) error {
	inv, ok := c.findInvitation(id)
	if ok && !inv.IsPending() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("invitation is %s", inv.Status))
	}
	return nil
}

func (c *Console) findInvitation(id string) (models.Invitation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.FindInvitation(id)
}

func (c *Console) confirmed(ctx context.Context, prompt string) bool {
	ok, err := c.confirm.Confirm(ctx, prompt)
	if err != nil {
		c.logger.Warn("confirmation failed", zap.Error(err))
		return false
	}
	return ok
}
