package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// ErrSuppressed is the delivery failure reported for addresses on the suppression list.
var ErrSuppressed = errors.New("due to blacklist user")

// Delivery outcomes recorded in metrics.
const (
	DeliverySent       = "sent"
	DeliverySuppressed = "suppressed"
	DeliveryFailed     = "failed"
)

type suppressionList interface {
	IsSuppressed(ctx context.Context, email string) (bool, error)
}

// Publisher publishes a JSON-encodable payload to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Mailer hands invitation emails to the mail relay over the event bus.
type Mailer struct {
	suppression suppressionList
	publisher   Publisher
	subject     string
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewMailer constructs a Mailer. A nil publisher logs deliveries instead of relaying them.
func NewMailer(suppression suppressionList, publisher Publisher, subject string, metrics *MetricsService, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{suppression: suppression, publisher: publisher, subject: subject, metrics: metrics, logger: logger}
}

// Deliver sends mail. The returned error text is shown to operators as the delivery reason.
func (m *Mailer) Deliver(ctx context.Context, mail models.InvitationMail) error {
	if m.suppression != nil {
		suppressed, err := m.suppression.IsSuppressed(ctx, mail.Email)
		if err != nil {
			m.logger.Warn("suppression lookup failed", zap.String("email", mail.Email), zap.Error(err))
		}
		if suppressed {
			m.metrics.RecordDelivery(DeliverySuppressed)
			m.logger.Info("invitation email suppressed", zap.String("invitation_id", mail.InvitationID))
			return ErrSuppressed
		}
	}

	if m.publisher == nil {
		m.metrics.RecordDelivery(DeliverySent)
		m.logger.Info("invitation email relay disabled, logging delivery",
			zap.String("invitation_id", mail.InvitationID),
			zap.String("email", mail.Email),
			zap.Bool("resend", mail.Resend),
		)
		return nil
	}

	if err := m.publisher.Publish(ctx, m.subject, mail); err != nil {
		m.metrics.RecordDelivery(DeliveryFailed)
		m.logger.Warn("invitation email relay failed", zap.String("invitation_id", mail.InvitationID), zap.Error(err))
		return errors.New("mail relay unavailable")
	}
	m.metrics.RecordDelivery(DeliverySent)
	return nil
}
