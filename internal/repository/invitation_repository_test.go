package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

var invitationRowColumns = []string{"id", "email", "role", "status", "inviter_id", "inviter_name", "first_name", "last_name", "personal_message", "program_ids", "section_id", "sent_at", "expires_at", "created_at"}

func TestListInvitations(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(invitationRowColumns).
		AddRow("inv-1", "new@example.edu", "instructor", "pending", "acc-9", "Ada Admin", "Grace", nil, nil, nil, "sec-1", now, now.Add(time.Hour), now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND i.status = $1 ORDER BY i.sent_at DESC")).
		WithArgs(models.InvitationPending).
		WillReturnRows(rows)

	status := models.InvitationPending
	invitations, err := repo.List(context.Background(), models.InvitationFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	inv := invitations[0]
	assert.Equal(t, "Ada Admin", inv.InviterName)
	require.NotNil(t, inv.FirstName)
	assert.Equal(t, "Grace", *inv.FirstName)
	assert.Nil(t, inv.LastName)
	require.NotNil(t, inv.SectionID)
	assert.Equal(t, "sec-1", *inv.SectionID)
	assert.True(t, inv.IsPending())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInvitation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	mock.ExpectExec("INSERT INTO invitations").WillReturnResult(sqlmock.NewResult(1, 1))

	inv := &models.Invitation{
		Email:      "pa@example.edu",
		Role:       models.RoleProgramAdmin,
		Status:     models.InvitationPending,
		InviterID:  "acc-9",
		ProgramIDs: pq.StringArray{"p1"},
		SentAt:     time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), inv))
	assert.NotEmpty(t, inv.ID)
	assert.False(t, inv.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelInvitationOnlyWhenPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	cancel := regexp.QuoteMeta("UPDATE invitations SET status = 'cancelled', expires_at = NULL WHERE id = $1 AND status = 'pending'")
	mock.ExpectExec(cancel).WithArgs("inv-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(cancel).WithArgs("inv-2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Cancel(context.Background(), "inv-1"))
	assert.ErrorIs(t, repo.Cancel(context.Background(), "inv-2"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshInvitation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	sent := time.Now()
	expires := sent.Add(7 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invitations SET sent_at = $2, expires_at = $3")).
		WithArgs("inv-1", sent, expires).
		WillReturnError(errors.New("connection reset"))

	err := repo.Refresh(context.Background(), "inv-1", sent, expires)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh invitation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireOverdue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	now := time.Now()
	mock.ExpectExec("UPDATE invitations SET status = 'expired'").WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM invitations").
		WithArgs("dup@example.edu").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	pending, err := repo.HasPending(context.Background(), "dup@example.edu")
	require.NoError(t, err)
	assert.False(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
