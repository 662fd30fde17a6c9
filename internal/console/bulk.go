package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// BulkAction is a single-item operation applied to every selected identifier.
type BulkAction struct {
	Name  string
	Label string
	Run   func(ctx context.Context, id string) error
}

// BulkResult partitions the outcome of a bulk action.
type BulkResult struct {
	Kind      Kind
	Action    string
	Confirmed bool
	Attempted int
	Succeeded []string
	Failed    map[string]error
}

// RunBulkAction confirms, then runs action sequentially over the selection of kind. Item
// failures never stop the loop. Afterwards the selection is cleared, the collection reloaded
// once and one aggregated notice issued.
func (c *Console) RunBulkAction(ctx context.Context, kind Kind, action BulkAction) BulkResult {
	result := BulkResult{Kind: kind, Action: action.Name, Failed: map[string]error{}}

	c.mu.Lock()
	ids := c.state.Selection(kind).IDs()
	c.mu.Unlock()
	if len(ids) == 0 {
		return result
	}

	noun := pluralNoun(kind, len(ids))
	if !c.confirmed(ctx, fmt.Sprintf("%s %d selected %s?", action.Label, len(ids), noun)) {
		return result
	}
	result.Confirmed = true

	for _, id := range ids {
		result.Attempted++
		if err := action.Run(ctx, id); err != nil {
			c.logger.Debug("bulk item failed", zap.String("action", action.Name), zap.String("id", id), zap.Error(err))
			result.Failed[id] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	c.ClearSelection(kind)
	c.Reload(ctx, kind)

	succeeded, failed := len(result.Succeeded), len(result.Failed)
	switch {
	case failed == 0:
		c.notices.Notify(fmt.Sprintf("%s completed for %d %s", action.Label, succeeded, noun), ToneSuccess)
	case succeeded == 0:
		c.notices.Notify(fmt.Sprintf("%s failed for all %d %s", action.Label, failed, noun), ToneError)
	default:
		c.notices.Notify(
			fmt.Sprintf("%s completed for %d of %d %s", action.Label, succeeded, result.Attempted, noun),
			ToneWarning,
			fmt.Sprintf("%d failed", failed),
		)
	}
	c.logger.Info("bulk action finished",
		zap.String("action", action.Name),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
	return result
}

// BulkResend resends every selected invitation. An item whose email was not delivered still
// counts as resent.
func (c *Console) BulkResend() BulkAction {
	return BulkAction{Name: "resend", Label: "Resend", Run: func(ctx context.Context, id string) error {
		_, err := c.resend(ctx, id)
		return err
	}}
}

// BulkCancel cancels every selected invitation.
func (c *Console) BulkCancel() BulkAction {
	return BulkAction{Name: "cancel", Label: "Cancel", Run: c.cancel}
}

// BulkActivate activates every selected account.
func (c *Console) BulkActivate() BulkAction {
	return c.bulkStatus("activate", "Activate", models.AccountActive)
}

// BulkDeactivate deactivates every selected account.
func (c *Console) BulkDeactivate() BulkAction {
	return c.bulkStatus("deactivate", "Deactivate", models.AccountInactive)
}

func (c *Console) bulkStatus(name, label string, status models.AccountStatus) BulkAction {
	return BulkAction{Name: name, Label: label, Run: func(ctx context.Context, id string) error {
		return c.setStatus(ctx, id, status)
	}}
}

func pluralNoun(kind Kind, n int) string {
	noun := string(kind)
	if n != 1 {
		noun += "s"
	}
	return noun
}
