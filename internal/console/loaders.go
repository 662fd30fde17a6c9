package console

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// LoadAccounts fetches the account collection. A failure leaves an empty collection and an
// error notice; it never propagates past the loader.
func (c *Console) LoadAccounts(ctx context.Context) bool {
	accounts, err := c.remote.ListAccounts(ctx)
	if err != nil {
		c.logger.Warn("failed to load accounts", zap.Error(err))
		c.SetAccounts(nil)
		c.notices.Notify("Failed to load accounts: "+appErrors.MessageOr(err, "please try again"), ToneError)
		return false
	}
	c.SetAccounts(accounts)
	c.logger.Debug("accounts loaded", zap.Int("count", len(accounts)))
	return true
}

// LoadInvitations fetches the invitation collection with the same failure contract as LoadAccounts.
func (c *Console) LoadInvitations(ctx context.Context) bool {
	invitations, err := c.remote.ListInvitations(ctx)
	if err != nil {
		c.logger.Warn("failed to load invitations", zap.Error(err))
		c.SetInvitations(nil)
		c.notices.Notify("Failed to load invitations: "+appErrors.MessageOr(err, "please try again"), ToneError)
		return false
	}
	c.SetInvitations(invitations)
	c.logger.Debug("invitations loaded", zap.Int("count", len(invitations)))
	return true
}

// LoadPrograms fetches the program choices and, on success, signals ProgramsReady so deferred
// dialog pre-selection can proceed.
func (c *Console) LoadPrograms(ctx context.Context) bool {
	programs, err := c.remote.ListPrograms(ctx)
	if err != nil {
		c.logger.Warn("failed to load programs", zap.Error(err))
		c.mu.Lock()
		c.state.Programs = []models.ProgramChoice{}
		c.mu.Unlock()
		c.notices.Notify("Failed to load programs: "+appErrors.MessageOr(err, "please try again"), ToneError)
		return false
	}
	c.SetPrograms(programs)
	return true
}

// Reload fetches the collection of kind.
func (c *Console) Reload(ctx context.Context, kind Kind) bool {
	if kind == KindInvitation {
		return c.LoadInvitations(ctx)
	}
	return c.LoadAccounts(ctx)
}

// Load fetches both collections and starts the independent program load. The returned channel
// closes when the program load finishes, whatever its outcome.
func (c *Console) Load(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.LoadPrograms(ctx)
	}()
	go func() {
		wg.Wait()
		close(done)
	}()

	c.LoadAccounts(ctx)
	c.LoadInvitations(ctx)
	return done
}
