package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

func bulkFixture(t *testing.T, opts Options) (*Console, *remoteStub, *noticeRecorder) {
	t.Helper()
	remote := newRemoteStub()
	remote.invitations = []models.Invitation{
		pendingInvitation("inv-1", "alpha@example.edu"),
		pendingInvitation("inv-2", "beta@example.edu"),
		pendingInvitation("inv-3", "gamma@example.edu"),
	}
	c, rec := newTestConsole(t, remote, opts)
	require.True(t, c.LoadInvitations(context.Background()))
	c.SetTab(TabInvitations)
	return c, remote, rec
}

func TestBulkResendIssuesOneReloadAndOneNotice(t *testing.T) {
	c, remote, rec := bulkFixture(t, Options{})
	c.Toggle(KindInvitation, "inv-1")
	c.Toggle(KindInvitation, "inv-2")

	result := c.RunBulkAction(context.Background(), KindInvitation, c.BulkResend())

	assert.True(t, result.Confirmed)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, []string{"inv-1", "inv-2"}, remote.resent)
	assert.Equal(t, 2, remote.count("ResendInvitation"))
	assert.Equal(t, 2, remote.count("ListInvitations"))
	assert.Empty(t, c.Selected(KindInvitation))

	notices := rec.all()
	require.Len(t, notices, 1)
	assert.Equal(t, ToneSuccess, notices[0].Tone)
	assert.Equal(t, "Resend completed for 2 invitations", notices[0].Message)
}

func TestBulkResendPartialFailure(t *testing.T) {
	c, remote, rec := bulkFixture(t, Options{})
	remote.failIDs["inv-2"] = errors.New("smtp relay down")
	c.Toggle(KindInvitation, "inv-1")
	c.Toggle(KindInvitation, "inv-2")

	result := c.RunBulkAction(context.Background(), KindInvitation, c.BulkResend())

	assert.Equal(t, []string{"inv-1"}, result.Succeeded)
	assert.Contains(t, result.Failed, "inv-2")
	assert.Equal(t, 2, remote.count("ResendInvitation"))
	assert.Equal(t, 2, remote.count("ListInvitations"))

	notices := rec.all()
	require.Len(t, notices, 1)
	assert.Equal(t, ToneWarning, notices[0].Tone)
	assert.Equal(t, "Resend completed for 1 of 2 invitations", notices[0].Message)
	assert.Equal(t, "1 failed", notices[0].Detail)
}

func TestBulkResendCountsUndeliveredEmailAsResent(t *testing.T) {
	c, remote, rec := bulkFixture(t, Options{})
	remote.resendEmailErr = "mail relay unavailable"
	c.Toggle(KindInvitation, "inv-1")
	c.Toggle(KindInvitation, "inv-2")

	result := c.RunBulkAction(context.Background(), KindInvitation, c.BulkResend())

	assert.Equal(t, []string{"inv-1", "inv-2"}, result.Succeeded)
	assert.Empty(t, result.Failed)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, ToneSuccess, rec.all()[0].Tone)
}

func TestBulkAllFailedIsError(t *testing.T) {
	c, remote, rec := bulkFixture(t, Options{})
	remote.failIDs["inv-1"] = errors.New("nope")
	c.Toggle(KindInvitation, "inv-1")

	c.RunBulkAction(context.Background(), KindInvitation, c.BulkCancel())

	notices := rec.all()
	require.Len(t, notices, 1)
	assert.Equal(t, ToneError, notices[0].Tone)
	assert.Equal(t, "Cancel failed for all 1 invitation", notices[0].Message)
}

func TestBulkSkipsNonPendingWithoutRemoteCall(t *testing.T) {
	c, remote, _ := bulkFixture(t, Options{})
	invitations := c.Invitations()
	invitations[0].Status = models.InvitationAccepted
	c.SetInvitations(invitations)
	c.Toggle(KindInvitation, "inv-1")
	c.Toggle(KindInvitation, "inv-2")

	result := c.RunBulkAction(context.Background(), KindInvitation, c.BulkResend())

	assert.Equal(t, 1, remote.count("ResendInvitation"))
	assert.Equal(t, []string{"inv-2"}, result.Succeeded)
	assert.Contains(t, result.Failed, "inv-1")
}

func TestBulkNoSelectionIsNoop(t *testing.T) {
	prompts := 0
	c, remote, rec := bulkFixture(t, Options{Confirmer: ConfirmFunc(func(context.Context, string) (bool, error) {
		prompts++
		return true, nil
	})})

	result := c.RunBulkAction(context.Background(), KindInvitation, c.BulkResend())

	assert.False(t, result.Confirmed)
	assert.Equal(t, 0, prompts)
	assert.Equal(t, 0, remote.count("ResendInvitation"))
	assert.Empty(t, rec.all())
}

func TestBulkDeclinedLeavesSelection(t *testing.T) {
	var prompt string
	c, remote, rec := bulkFixture(t, Options{Confirmer: ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return false, nil
	})})
	c.Toggle(KindInvitation, "inv-3")

	result := c.RunBulkAction(context.Background(), KindInvitation, c.BulkCancel())

	assert.False(t, result.Confirmed)
	assert.Equal(t, "Cancel 1 selected invitation?", prompt)
	assert.Equal(t, 0, remote.count("CancelInvitation"))
	assert.Equal(t, []string{"inv-3"}, c.Selected(KindInvitation))
	assert.Empty(t, rec.all())
}

func TestBulkConfirmErrorCountsAsDeclined(t *testing.T) {
	c, remote, _ := bulkFixture(t, Options{Confirmer: ConfirmFunc(func(context.Context, string) (bool, error) {
		return true, errors.New("stdin closed")
	})})
	c.Toggle(KindInvitation, "inv-1")

	result := c.RunBulkAction(context.Background(), KindInvitation, c.BulkResend())
	assert.False(t, result.Confirmed)
	assert.Equal(t, 0, remote.count("ResendInvitation"))
}

func TestBulkDeactivateAccounts(t *testing.T) {
	remote := newRemoteStub()
	remote.accounts = accountsFixture(3)
	c, rec := newTestConsole(t, remote, Options{})
	require.True(t, c.LoadAccounts(context.Background()))
	c.Toggle(KindAccount, "acc-01")
	c.Toggle(KindAccount, "acc-03")

	result := c.RunBulkAction(context.Background(), KindAccount, c.BulkDeactivate())

	assert.Equal(t, []string{"acc-01", "acc-03"}, result.Succeeded)
	assert.Equal(t, models.AccountInactive, remote.updates["acc-01"].Status)
	assert.Equal(t, "User01", remote.updates["acc-01"].FirstName)
	assert.Equal(t, 2, remote.count("ListAccounts"))
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "Deactivate completed for 2 accounts", rec.all()[0].Message)
}

func TestFilterChangeDuringBulkActionIsReflected(t *testing.T) {
	c, remote, _ := bulkFixture(t, Options{})
	remote.block = make(chan struct{})
	remote.started = make(chan string, 3)
	c.Toggle(KindInvitation, "inv-1")
	c.Toggle(KindInvitation, "inv-2")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.RunBulkAction(context.Background(), KindInvitation, c.BulkResend())
	}()

	select {
	case <-remote.started:
	case <-time.After(2 * time.Second):
		t.Fatal("bulk action did not start")
	}

	// The engine lock is free while the remote call is in flight.
	c.SetFilters(Filters{Search: "BETA"})
	close(remote.block)
	wg.Wait()

	view := c.Snapshot()
	assert.Equal(t, "BETA", view.Filters.Search)
	require.Len(t, view.Invitations.Items, 1)
	assert.Equal(t, "inv-2", view.Invitations.Items[0].ID)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 2, remote.count("ListInvitations"))
}
