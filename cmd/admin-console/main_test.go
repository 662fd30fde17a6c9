package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/config"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type remoteStub struct {
	accounts    []models.Account
	invitations []models.Invitation
	programs    []models.ProgramChoice
	created     []models.CreateInvitationRequest
	cancelled   []string
	updated     map[string]models.UpdateAccountRequest
	failIDs     map[string]bool
}

func (r *remoteStub) ListAccounts(context.Context) ([]models.Account, error) { return r.accounts, nil }

func (r *remoteStub) ListInvitations(context.Context) ([]models.Invitation, error) {
	return r.invitations, nil
}

func (r *remoteStub) ListPrograms(context.Context) ([]models.ProgramChoice, error) {
	return r.programs, nil
}

func (r *remoteStub) CreateInvitation(_ context.Context, req models.CreateInvitationRequest) (*models.CreateInvitationResult, error) {
	r.created = append(r.created, req)
	return &models.CreateInvitationResult{Invitation: &models.Invitation{ID: "inv-new"}, Message: "Invitation sent to " + req.Email}, nil
}

func (r *remoteStub) ResendInvitation(_ context.Context, id string) (*models.ResendInvitationResult, error) {
	return &models.ResendInvitationResult{Invitation: &models.Invitation{ID: id}, Message: "Invitation resent successfully"}, nil
}

func (r *remoteStub) CancelInvitation(_ context.Context, id string) error {
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *remoteStub) UpdateAccount(_ context.Context, id string, req models.UpdateAccountRequest) error {
	if r.failIDs[id] {
		return appErrors.Clone(appErrors.ErrForbidden, "you cannot change your own role or status")
	}
	if r.updated == nil {
		r.updated = map[string]models.UpdateAccountRequest{}
	}
	r.updated[id] = req
	return nil
}

func runCLI(t *testing.T, remote *remoteStub, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := &cli{
		in:     bufio.NewReader(strings.NewReader(stdin)),
		out:    &out,
		err:    &errOut,
		cfg:    &config.Config{Console: config.ConsoleConfig{PageSize: 2, ProgramsWait: 50 * time.Millisecond, ExportDir: t.TempDir()}},
		logger: zap.NewNop(),
		remote: remote,
	}
	cmd := c.command(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func accountsFixture() []models.Account {
	return []models.Account{
		{ID: "acc-1", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.edu", Role: models.RoleInstructor, Status: models.AccountActive},
		{ID: "acc-2", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.edu", Role: models.RoleProgramAdmin, Status: models.AccountInactive},
		{ID: "acc-3", FirstName: "Alan", LastName: "Turing", Email: "alan@example.edu", Role: models.RoleStudent, Status: models.AccountPendingVerification},
	}
}

func TestAccountsListPaginatesAndFilters(t *testing.T) {
	remote := &remoteStub{accounts: accountsFixture()}

	out, _, err := runCLI(t, remote, "", "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "grace@example.edu")
	assert.NotContains(t, out, "alan@example.edu")
	assert.Contains(t, out, "3 accounts, page 1 of 2")

	out, _, err = runCLI(t, remote, "", "accounts", "list", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "alan@example.edu")
	assert.Contains(t, out, "Pending")
}

func TestAccountsDeactivateAsksForConfirmation(t *testing.T) {
	remote := &remoteStub{accounts: accountsFixture()}

	_, stderr, err := runCLI(t, remote, "n\n", "accounts", "deactivate", "acc-1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Deactivate 1 selected account?")
	assert.Empty(t, remote.updated)

	_, stderr, err = runCLI(t, remote, "y\n", "accounts", "deactivate", "acc-1", "acc-3")
	require.NoError(t, err)
	assert.Equal(t, models.AccountInactive, remote.updated["acc-1"].Status)
	assert.Contains(t, stderr, "[success]")
}

func TestAccountsActivateReportsPartialFailure(t *testing.T) {
	remote := &remoteStub{accounts: accountsFixture(), failIDs: map[string]bool{"acc-2": true}}

	_, stderr, err := runCLI(t, remote, "", "--yes", "accounts", "activate", "acc-2", "acc-3")
	require.Error(t, err)
	assert.Contains(t, stderr, "[warning]")
	assert.Contains(t, stderr, "1 failed")
}

func TestInvitationsCancelSkipsNonPending(t *testing.T) {
	remote := &remoteStub{invitations: []models.Invitation{
		{ID: "inv-1", Email: "a@example.edu", Status: models.InvitationAccepted},
	}}

	_, _, err := runCLI(t, remote, "", "--yes", "invitations", "cancel", "inv-1")
	require.Error(t, err)
	assert.True(t, appErrors.FromError(err).Code == appErrors.ErrInvalidTransition.Code)
	assert.Empty(t, remote.cancelled)
}

func TestInviteThroughSectionWorkflow(t *testing.T) {
	remote := &remoteStub{}

	out, _, err := runCLI(t, remote, "", "invite", "new@example.edu", "--workflow", "sectionAssignment", "--section", "sec-9")
	require.NoError(t, err)
	assert.Equal(t, "inv-new\n", out)
	require.Len(t, remote.created, 1)
	assert.Equal(t, models.RoleInstructor, remote.created[0].Role)
	assert.Equal(t, "sec-9", remote.created[0].SectionID)
}

func TestInviteReportsInvalidFields(t *testing.T) {
	remote := &remoteStub{}

	_, _, err := runCLI(t, remote, "", "invite", "not-an-email", "--role", "program_admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "program_ids")
	assert.Empty(t, remote.created)
}

func TestAccountsExportWritesFile(t *testing.T) {
	remote := &remoteStub{accounts: accountsFixture()}

	out, _, err := runCLI(t, remote, "", "accounts", "export", "--role", "student")
	require.NoError(t, err)

	data, err := os.ReadFile(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Contains(t, string(data), "alan@example.edu")
	assert.NotContains(t, string(data), "grace@example.edu")
}

func TestAccountsDeactivateSkipsUnknownIDs(t *testing.T) {
	remote := &remoteStub{accounts: accountsFixture()}

	_, stderr, err := runCLI(t, remote, "", "--yes", "accounts", "deactivate", "ghost", "acc-1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "skipping unknown account ghost")
	assert.Contains(t, remote.updated, "acc-1")
	assert.NotContains(t, remote.updated, "ghost")

	_, _, err = runCLI(t, remote, "", "--yes", "invitations", "cancel", "ghost-1", "ghost-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no loaded invitation")
	assert.Empty(t, remote.cancelled)
}

func TestInvitationsListTruncatesInviter(t *testing.T) {
	expires := time.Now().Add(48 * time.Hour)
	remote := &remoteStub{invitations: []models.Invitation{{
		ID:          "inv-1",
		Email:       "a@example.edu",
		Role:        models.RoleInstructor,
		Status:      models.InvitationPending,
		InviterName: "Maximiliana Bartholomew-Featherstonehaugh",
		SentAt:      time.Now(),
		ExpiresAt:   &expires,
	}}}

	out, _, err := runCLI(t, remote, "", "invitations", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Maximiliana Bartholomew-...")
	assert.NotContains(t, out, "Featherstonehaugh")
}
