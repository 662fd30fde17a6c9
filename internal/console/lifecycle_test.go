package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

func TestExpiryLabel(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	assert.Equal(t, "Today", ExpiryLabel(at(time.Hour), now))
	assert.Equal(t, "Tomorrow", ExpiryLabel(at(36*time.Hour), now))
	assert.Equal(t, "Expired", ExpiryLabel(at(-time.Hour), now))
	assert.Equal(t, "Today", ExpiryLabel(at(0), now))
	assert.Equal(t, "2 days", ExpiryLabel(at(48*time.Hour), now))
	assert.Equal(t, "4 days", ExpiryLabel(at(72*time.Hour+time.Minute), now))
	assert.Equal(t, "", ExpiryLabel(nil, now))
}

func TestConsoleExpiryLabelOnlyForPending(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c, _ := newTestConsole(t, newRemoteStub(), Options{Now: func() time.Time { return now }})
	expires := now.Add(time.Hour)
	inv := models.Invitation{Status: models.InvitationPending, ExpiresAt: &expires}

	assert.Equal(t, "Today", c.ExpiryLabel(inv))
	inv.Status = models.InvitationAccepted
	assert.Equal(t, "", c.ExpiryLabel(inv))
}

func TestResendInvitationGuardsPending(t *testing.T) {
	remote := newRemoteStub()
	accepted := pendingInvitation("inv-1", "a@example.edu")
	accepted.Status = models.InvitationAccepted
	remote.invitations = []models.Invitation{accepted}
	c, rec := newTestConsole(t, remote, Options{})
	require.True(t, c.LoadInvitations(context.Background()))

	err := c.ResendInvitation(context.Background(), "inv-1")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, 0, remote.count("ResendInvitation"))
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "invitation is accepted", rec.all()[0].Message)
}

func TestResendInvitationSuccess(t *testing.T) {
	remote := newRemoteStub()
	remote.invitations = []models.Invitation{pendingInvitation("inv-1", "a@example.edu")}
	c, rec := newTestConsole(t, remote, Options{})
	require.True(t, c.LoadInvitations(context.Background()))

	require.NoError(t, c.ResendInvitation(context.Background(), "inv-1"))
	assert.Equal(t, 2, remote.count("ListInvitations"))
	require.Len(t, rec.all(), 1)
	assert.Equal(t, ToneSuccess, rec.all()[0].Tone)
}

func TestResendInvitationEmailFailureWarns(t *testing.T) {
	remote := newRemoteStub()
	remote.invitations = []models.Invitation{pendingInvitation("inv-1", "a@example.edu")}
	remote.resendEmailErr = "due to blacklist user"
	c, rec := newTestConsole(t, remote, Options{})
	require.True(t, c.LoadInvitations(context.Background()))

	require.NoError(t, c.ResendInvitation(context.Background(), "inv-1"))
	assert.Equal(t, 2, remote.count("ListInvitations"))
	require.Len(t, rec.all(), 1)
	notice := rec.all()[0]
	assert.Equal(t, ToneWarning, notice.Tone)
	assert.Equal(t, InvitationResendEmailFailedMessage, notice.Message)
	assert.Equal(t, "Reason: due to blacklist user", notice.Detail)
}

func TestCancelInvitationConfirms(t *testing.T) {
	remote := newRemoteStub()
	remote.invitations = []models.Invitation{pendingInvitation("inv-1", "a@example.edu")}
	var prompt string
	answer := false
	c, _ := newTestConsole(t, remote, Options{Confirmer: ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return answer, nil
	})})
	require.True(t, c.LoadInvitations(context.Background()))

	err := c.CancelInvitation(context.Background(), "inv-1")
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Equal(t, "Cancel the invitation for a@example.edu?", prompt)
	assert.Equal(t, 0, remote.count("CancelInvitation"))

	answer = true
	require.NoError(t, c.CancelInvitation(context.Background(), "inv-1"))
	assert.Equal(t, 1, remote.count("CancelInvitation"))
}

func TestCancelInvitationRemoteFailure(t *testing.T) {
	remote := newRemoteStub()
	remote.failIDs["inv-1"] = appErrors.Clone(appErrors.ErrInvalidTransition, "invitation was already accepted")
	c, _ := newTestConsole(t, remote, Options{})

	err := c.CancelInvitation(context.Background(), "inv-1")
	require.Error(t, err)
	notice, ok := c.Notice()
	require.True(t, ok)
	assert.Equal(t, "invitation was already accepted", notice.Message)
	assert.Equal(t, ToneError, notice.Tone)
	assert.Equal(t, 0, remote.count("ListInvitations"))
}

func TestUpdateAccountValidates(t *testing.T) {
	remote := newRemoteStub()
	c, rec := newTestConsole(t, remote, Options{})

	err := c.UpdateAccount(context.Background(), "acc-01", models.UpdateAccountRequest{FirstName: "Ada"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 0, remote.count("UpdateAccount"))
	require.Len(t, rec.all(), 1)

	err = c.UpdateAccount(context.Background(), "acc-01", models.UpdateAccountRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleInstructor,
		Status:    models.AccountActive,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, remote.count("UpdateAccount"))
	assert.Equal(t, 1, remote.count("ListAccounts"))
}

func TestSetAccountStatusUnknownAccount(t *testing.T) {
	remote := newRemoteStub()
	c, _ := newTestConsole(t, remote, Options{})

	err := c.SetAccountStatus(context.Background(), "missing", models.AccountInactive)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 0, remote.count("UpdateAccount"))
}
