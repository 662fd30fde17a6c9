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

func waitSettled(t *testing.T, c *Console) {
	t.Helper()
	select {
	case <-c.DialogSettled():
	case <-time.After(2 * time.Second):
		t.Fatal("dialog did not settle")
	}
}

func TestRegistryResolvesUnknownToDefault(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"", "missing", "Default"} {
		resolved, wf := r.Resolve(name)
		assert.Equal(t, DefaultWorkflow, resolved, name)
		assert.NotNil(t, wf)
	}

	resolved, _ := r.Resolve(SectionAssignmentWorkflow)
	assert.Equal(t, SectionAssignmentWorkflow, resolved)
	assert.Equal(t, []string{DefaultWorkflow, SectionAssignmentWorkflow}, r.Names())
}

func TestRegistryRegisterValidates(t *testing.T) {
	r := NewRegistry()

	err := r.Register(" ", WorkflowFuncs{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Error(t, r.Register("custom", nil))
	require.NoError(t, r.Register("custom", WorkflowFuncs{}))
	assert.Contains(t, r.Names(), "custom")
}

func TestOpenRunsResetThenSetup(t *testing.T) {
	c, _ := newTestConsole(t, newRemoteStub(), Options{})
	var phases []DialogPhase
	require.NoError(t, c.Registry().Register("tracking", WorkflowFuncs{
		ResetFunc: func(ctx *WorkflowContext) {
			phases = append(phases, ctx.Dialog.Phase)
			DefaultReset(ctx)
		},
		SetupFunc: func(ctx *WorkflowContext) {
			phases = append(phases, ctx.Dialog.Phase)
			DefaultSetup(ctx)
			ctx.Dialog.Form.PersonalMessage = "Welcome aboard"
		},
	}))

	view := c.OpenInviteDialog(OpenOptions{Workflow: "tracking", Email: "new@example.edu"})
	assert.Equal(t, []DialogPhase{PhaseResetting, PhaseConfiguring}, phases)
	assert.Equal(t, PhaseVisible, view.Phase)
	assert.Equal(t, "new@example.edu", view.Form.Email)
	assert.Equal(t, "Welcome aboard", view.Form.PersonalMessage)
}

func TestOpenWithSectionDefaultsToInstructor(t *testing.T) {
	c, _ := newTestConsole(t, newRemoteStub(), Options{})

	view := c.OpenInviteDialog(OpenOptions{SectionID: "sec-1"})
	assert.True(t, view.SectionVisible)
	assert.Equal(t, "sec-1", view.Form.SectionID)
	assert.Equal(t, models.RoleInstructor, view.Form.Role)
	assert.False(t, view.ProgramsVisible)
	assert.Empty(t, view.Workflow)
}

func TestOpenExplicitRoleWinsOverSection(t *testing.T) {
	c, _ := newTestConsole(t, newRemoteStub(), Options{})

	view := c.OpenInviteDialog(OpenOptions{SectionID: "sec-1", Role: models.RoleStudent})
	assert.Equal(t, models.RoleStudent, view.Form.Role)
}

func TestOpenResetClearsPreviousPrefill(t *testing.T) {
	c, _ := newTestConsole(t, newRemoteStub(), Options{})

	c.OpenInviteDialog(OpenOptions{Workflow: SectionAssignmentWorkflow, SectionID: "sec-1", FirstName: "Grace", LastName: "Hopper"})
	c.DismissInviteDialog()
	view := c.OpenInviteDialog(OpenOptions{Workflow: "unknown"})

	assert.False(t, view.SectionVisible)
	assert.Empty(t, view.Form.SectionID)
	assert.Empty(t, view.Form.Role)
	assert.Empty(t, view.Form.FirstName)
	assert.Empty(t, view.Form.LastName)
	assert.Empty(t, view.Workflow)
}

func TestSectionAssignmentDelegatesAndStampsName(t *testing.T) {
	c, _ := newTestConsole(t, newRemoteStub(), Options{})

	view := c.OpenInviteDialog(OpenOptions{
		Workflow:  SectionAssignmentWorkflow,
		SectionID: "sec-9",
		FirstName: "Grace",
		LastName:  "Hopper",
	})
	assert.Equal(t, SectionAssignmentWorkflow, view.Workflow)
	assert.True(t, view.SectionVisible)
	assert.Equal(t, models.RoleInstructor, view.Form.Role)
	assert.Equal(t, "Grace", view.Form.FirstName)
	assert.Equal(t, "Hopper", view.Form.LastName)
}

func TestProgramRoleShowsRequiredProgramSelector(t *testing.T) {
	remote := newRemoteStub()
	remote.programs = []models.ProgramChoice{{ID: "p1", Name: "Nursing"}, {ID: "p2", Name: "Law"}}
	c, _ := newTestConsole(t, remote, Options{})
	require.True(t, c.LoadPrograms(context.Background()))

	view := c.OpenInviteDialog(OpenOptions{Role: models.RoleProgramAdmin, ProgramIDs: []string{"p2", "p404"}})
	assert.True(t, view.ProgramsVisible)
	assert.True(t, view.ProgramsRequired)
	assert.Equal(t, []string{"p2"}, view.Form.ProgramIDs)
}

func TestDeferredProgramSelectionWaitsForReadySignal(t *testing.T) {
	remote := newRemoteStub()
	remote.programs = []models.ProgramChoice{{ID: "p1", Name: "Nursing"}, {ID: "p2", Name: "Law"}}
	c, _ := newTestConsole(t, remote, Options{ProgramsWait: time.Minute})

	view := c.OpenInviteDialog(OpenOptions{Role: models.RoleProgramAdmin, ProgramIDs: []string{"p1"}})
	assert.Empty(t, view.Form.ProgramIDs)

	require.True(t, c.LoadPrograms(context.Background()))
	waitSettled(t, c)
	assert.Equal(t, []string{"p1"}, c.Dialog().Form.ProgramIDs)
}

func TestDeferredProgramSelectionFallsBackAfterDelay(t *testing.T) {
	c, _ := newTestConsole(t, newRemoteStub(), Options{ProgramsWait: 10 * time.Millisecond})

	c.OpenInviteDialog(OpenOptions{Role: models.RoleProgramAdmin, ProgramIDs: []string{"p1"}})
	waitSettled(t, c)
	assert.Equal(t, PhaseVisible, c.Dialog().Phase)
	assert.Empty(t, c.Dialog().Form.ProgramIDs)
}

func TestDeferredSelectionDiscardedWhenDialogReopened(t *testing.T) {
	c, _ := newTestConsole(t, newRemoteStub(), Options{ProgramsWait: time.Minute})

	c.OpenInviteDialog(OpenOptions{Role: models.RoleProgramAdmin, ProgramIDs: []string{"p1"}})
	c.DismissInviteDialog()
	c.OpenInviteDialog(OpenOptions{Role: models.RoleStudent})

	c.SetPrograms([]models.ProgramChoice{{ID: "p1", Name: "Nursing"}})
	waitSettled(t, c)
	assert.Empty(t, c.Dialog().Form.ProgramIDs)
	assert.Equal(t, models.RoleStudent, c.Dialog().Form.Role)
}
