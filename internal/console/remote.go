package console

import (
	"context"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// Remote is the admin API boundary. Every call is a single attempt; the engine adds no retries.
type Remote interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ListInvitations(ctx context.Context) ([]models.Invitation, error)
	ListPrograms(ctx context.Context) ([]models.ProgramChoice, error)
	CreateInvitation(ctx context.Context, req models.CreateInvitationRequest) (*models.CreateInvitationResult, error)
	ResendInvitation(ctx context.Context, id string) (*models.ResendInvitationResult, error)
	CancelInvitation(ctx context.Context, id string) error
	UpdateAccount(ctx context.Context, id string, req models.UpdateAccountRequest) error
}

// Events is the page-level signal fired after a successful invite so sibling components can react.
type Events interface {
	InvitationCreated(ctx context.Context, invitation models.Invitation)
}

// EventsFunc adapts a function to Events.
type EventsFunc func(ctx context.Context, invitation models.Invitation)

// InvitationCreated calls f.
func (f EventsFunc) InvitationCreated(ctx context.Context, invitation models.Invitation) {
	f(ctx, invitation)
}

type noopEvents struct{}

func (noopEvents) InvitationCreated(context.Context, models.Invitation) {}

// Confirmer gates destructive or bulk actions behind an explicit operator decision.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AutoConfirm accepts every prompt.
var AutoConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
