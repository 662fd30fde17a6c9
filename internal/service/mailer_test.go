package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

type suppressionStub struct {
	blocked map[string]bool
	err     error
}

func (s suppressionStub) IsSuppressed(ctx context.Context, email string) (bool, error) {
	return s.blocked[email], s.err
}

func TestMailerSuppressedAddress(t *testing.T) {
	pub := &publisherStub{}
	metrics := NewMetricsService()
	m := NewMailer(suppressionStub{blocked: map[string]bool{"blocked@example.edu": true}}, pub, "mail.invitation", metrics, nil)

	err := m.Deliver(context.Background(), models.InvitationMail{Email: "blocked@example.edu"})
	assert.ErrorIs(t, err, ErrSuppressed)
	assert.Equal(t, "due to blacklist user", err.Error())
	assert.Empty(t, pub.subjects)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.deliveries.WithLabelValues(DeliverySuppressed)))
}

func TestMailerRelaysThroughPublisher(t *testing.T) {
	pub := &publisherStub{}
	m := NewMailer(suppressionStub{err: errors.New("redis down")}, pub, "mail.invitation", nil, nil)

	mail := models.InvitationMail{InvitationID: "inv-1", Email: "a@example.edu"}
	require.NoError(t, m.Deliver(context.Background(), mail))
	assert.Equal(t, []string{"mail.invitation"}, pub.subjects)
	assert.Equal(t, mail, pub.payloads[0])
}

func TestMailerRelayFailure(t *testing.T) {
	m := NewMailer(nil, &publisherStub{err: errors.New("timeout")}, "mail.invitation", nil, nil)

	err := m.Deliver(context.Background(), models.InvitationMail{Email: "a@example.edu"})
	require.Error(t, err)
	assert.Equal(t, "mail relay unavailable", err.Error())
}

func TestMailerWithoutRelayLogsOnly(t *testing.T) {
	m := NewMailer(nil, nil, "", nil, nil)
	assert.NoError(t, m.Deliver(context.Background(), models.InvitationMail{Email: "a@example.edu"}))
}
