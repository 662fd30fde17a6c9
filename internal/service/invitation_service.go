package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type invitationRepository interface {
	List(ctx context.Context, filter models.InvitationFilter) ([]models.Invitation, error)
	FindByID(ctx context.Context, id string) (*models.Invitation, error)
	HasPending(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, inv *models.Invitation) error
	Refresh(ctx context.Context, id string, sentAt, expiresAt time.Time) error
	Cancel(ctx context.Context, id string) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type accountLookup interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type programValidator interface {
	Validate(ctx context.Context, ids []string) error
}

type invitationMailer interface {
	Deliver(ctx context.Context, mail models.InvitationMail) error
}

// InvitationConfig tunes invitation issuance.
type InvitationConfig struct {
	ExpiryTTL         time.Duration
	InvitationSubject string
}

// InvitationService implements the invitation lifecycle.
type InvitationService struct {
	repo      invitationRepository
	accounts  accountLookup
	programs  programValidator
	mailer    invitationMailer
	events    Publisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    InvitationConfig
	now       func() time.Time
}

// NewInvitationService constructs an InvitationService. events may be nil.
func NewInvitationService(
	repo invitationRepository,
	accounts accountLookup,
	programs programValidator,
	mailer invitationMailer,
	events Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	config InvitationConfig,
) *InvitationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.ExpiryTTL <= 0 {
		config.ExpiryTTL = 7 * 24 * time.Hour
	}
	return &InvitationService{
		repo:      repo,
		accounts:  accounts,
		programs:  programs,
		mailer:    mailer,
		events:    events,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns invitations matching the filter.
func (s *InvitationService) List(ctx context.Context, filter models.InvitationFilter) ([]models.Invitation, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	invitations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invitations")
	}
	return invitations, nil
}

// Create stores a new invitation and delivers its email. A delivery failure does not undo the
// invitation; it is reported through EmailError.
func (s *InvitationService) Create(ctx context.Context, actor *models.JWTClaims, req models.CreateInvitationRequest) (*models.CreateInvitationResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invitation payload")
	}
	if req.Role.RequiresPrograms() && len(req.ProgramIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one program is required for this role")
	}
	if !req.Role.RequiresPrograms() {
		req.ProgramIDs = nil
	}
	if err := s.programs.Validate(ctx, req.ProgramIDs); err != nil {
		return nil, err
	}

	exists, err := s.accounts.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing accounts")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account already exists for this email")
	}
	pending, err := s.repo.HasPending(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending invitations")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a pending invitation already exists for this email")
	}

	now := s.now()
	expiresAt := now.Add(s.config.ExpiryTTL)
	inv := &models.Invitation{
		ID:              uuid.NewString(),
		Email:           req.Email,
		Role:            req.Role,
		Status:          models.InvitationPending,
		FirstName:       optional(req.FirstName),
		LastName:        optional(req.LastName),
		PersonalMessage: optional(req.PersonalMessage),
		ProgramIDs:      pq.StringArray(req.ProgramIDs),
		SectionID:       optional(req.SectionID),
		SentAt:          now,
		ExpiresAt:       &expiresAt,
		CreatedAt:       now,
	}
	if actor != nil {
		inv.InviterID = actor.UserID
		inv.InviterName = actor.FullName
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invitation")
	}
	s.metrics.RecordInvitationCreated(string(inv.Role))

	result := &models.CreateInvitationResult{Invitation: inv, Message: "Invitation sent to " + inv.Email}
	if err := s.mailer.Deliver(ctx, mailFor(inv, false)); err != nil {
		result.Message = models.InvitationEmailFailedMessage
		result.EmailError = err.Error()
	}

	s.publishCreated(ctx, inv, now)
	s.logger.Info("invitation created",
		zap.String("invitation_id", inv.ID),
		zap.String("role", string(inv.Role)),
		zap.Bool("email_sent", result.EmailError == ""),
	)
	return result, nil
}

// Resend refreshes a pending invitation's timestamps and re-delivers its email.
func (s *InvitationService) Resend(ctx context.Context, id string) (*models.ResendInvitationResult, error) {
	inv, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.config.ExpiryTTL)
	if err := s.repo.Refresh(ctx, id, now, expiresAt); err != nil {
		return nil, s.transitionError(err, "failed to refresh invitation")
	}
	inv.SentAt = now
	inv.ExpiresAt = &expiresAt
	s.metrics.RecordTransition("resend", 1)

	result := &models.ResendInvitationResult{Invitation: inv, Message: "Invitation resent successfully"}
	if err := s.mailer.Deliver(ctx, mailFor(inv, true)); err != nil {
		result.Message = models.InvitationResendEmailFailedMessage
		result.EmailError = err.Error()
	}
	s.logger.Info("invitation resent",
		zap.String("invitation_id", id),
		zap.Bool("email_sent", result.EmailError == ""),
	)
	return result, nil
}

// Cancel moves a pending invitation to cancelled.
func (s *InvitationService) Cancel(ctx context.Context, id string) (*models.Invitation, error) {
	inv, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return nil, s.transitionError(err, "failed to cancel invitation")
	}
	inv.Status = models.InvitationCancelled
	inv.ExpiresAt = nil
	s.metrics.RecordTransition("cancel", 1)
	s.logger.Info("invitation cancelled", zap.String("invitation_id", id))
	return inv, nil
}

// ExpireOverdue marks pending invitations past their expiry as expired.
func (s *InvitationService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire invitations")
	}
	s.metrics.RecordTransition("expire", int(n))
	return n, nil
}

func (s *InvitationService) pending(ctx context.Context, id string) (*models.Invitation, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	if !inv.IsPending() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "invitation is "+string(inv.Status))
	}
	return inv, nil
}

func (s *InvitationService) transitionError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "invitation is no longer pending")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *InvitationService) publishCreated(ctx context.Context, inv *models.Invitation, at time.Time) {
	if s.events == nil || s.config.InvitationSubject == "" {
		return
	}
	event := models.InvitationCreatedEvent{
		InvitationID: inv.ID,
		Email:        inv.Email,
		Role:         inv.Role,
		ProgramIDs:   inv.ProgramIDs,
		OccurredAt:   at,
	}
	if inv.SectionID != nil {
		event.SectionID = *inv.SectionID
	}
	if err := s.events.Publish(ctx, s.config.InvitationSubject, event); err != nil {
		s.logger.Warn("failed to publish invitation event", zap.String("invitation_id", inv.ID), zap.Error(err))
	}
}

func mailFor(inv *models.Invitation, resend bool) models.InvitationMail {
	mail := models.InvitationMail{
		InvitationID: inv.ID,
		Email:        inv.Email,
		Role:         inv.Role,
		InviterName:  inv.InviterName,
		ExpiresAt:    inv.ExpiresAt,
		Resend:       resend,
	}
	if inv.PersonalMessage != nil {
		mail.PersonalMessage = *inv.PersonalMessage
	}
	return mail
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
