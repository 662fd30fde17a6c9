package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

const invitationSelect = `SELECT i.id, i.email, i.role, i.status, i.inviter_id,
	COALESCE(TRIM(u.first_name || ' ' || u.last_name), '') AS inviter_name,
	i.first_name, i.last_name, i.personal_message, i.program_ids, i.section_id,
	i.sent_at, i.expires_at, i.created_at
	FROM invitations i
	LEFT JOIN accounts u ON u.id = i.inviter_id`

// InvitationRepository provides database access for invitations.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository creates a new instance of InvitationRepository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// List returns invitations matching the filter, newest first.
func (r *InvitationRepository) List(ctx context.Context, filter models.InvitationFilter) ([]models.Invitation, error) {
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		conditions = append(conditions, fmt.Sprintf("i.role = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(i.email) LIKE $%d", len(args)))
	}

	query := invitationSelect + " WHERE 1=1"
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.sent_at DESC"

	invitations := []models.Invitation{}
	if err := r.db.SelectContext(ctx, &invitations, query, args...); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}

// FindByID returns an invitation by identifier.
func (r *InvitationRepository) FindByID(ctx context.Context, id string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.GetContext(ctx, &inv, invitationSelect+" WHERE i.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find invitation by id: %w", err)
	}
	return &inv, nil
}

// HasPending reports whether email already has a pending invitation.
func (r *InvitationRepository) HasPending(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM invitations WHERE LOWER(email) = LOWER($1) AND status = 'pending')`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check pending invitation: %w", err)
	}
	return exists, nil
}

// Create inserts a new invitation.
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO invitations (id, email, role, status, inviter_id, first_name, last_name, personal_message, program_ids, section_id, sent_at, expires_at, created_at) VALUES (:id, :email, :role, :status, :inviter_id, :first_name, :last_name, :personal_message, :program_ids, :section_id, :sent_at, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// Refresh moves the sent and expiry timestamps of a pending invitation. sql.ErrNoRows signals
// that the invitation is missing or no longer pending.
func (r *InvitationRepository) Refresh(ctx context.Context, id string, sentAt, expiresAt time.Time) error {
	const query = `UPDATE invitations SET sent_at = $2, expires_at = $3 WHERE id = $1 AND status = 'pending'`
	return r.execPending(ctx, "refresh invitation", query, id, sentAt, expiresAt)
}

// Cancel marks a pending invitation cancelled and clears its expiry.
func (r *InvitationRepository) Cancel(ctx context.Context, id string) error {
	const query = `UPDATE invitations SET status = 'cancelled', expires_at = NULL WHERE id = $1 AND status = 'pending'`
	return r.execPending(ctx, "cancel invitation", query, id)
}

// ExpireOverdue flips pending invitations past their expiry to expired.
func (r *InvitationRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE invitations SET status = 'expired' WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}
	return affected, nil
}

func (r *InvitationRepository) execPending(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
