package models

import (
	"time"

	"github.com/lib/pq"
)

// InvitationStatus tracks the invitation lifecycle.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCancelled InvitationStatus = "cancelled"
	InvitationExpired   InvitationStatus = "expired"
)

// Valid reports whether s is a known invitation status.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationCancelled, InvitationExpired:
		return true
	}
	return false
}

// Invitation is an outstanding or historical invite to join the platform.
type Invitation struct {
	ID              string           `db:"id" json:"id"`
	Email           string           `db:"email" json:"email"`
	Role            Role             `db:"role" json:"role"`
	Status          InvitationStatus `db:"status" json:"status"`
	InviterID       string           `db:"inviter_id" json:"-"`
	InviterName     string           `db:"inviter_name" json:"invited_by"`
	FirstName       *string          `db:"first_name" json:"first_name,omitempty"`
	LastName        *string          `db:"last_name" json:"last_name,omitempty"`
	PersonalMessage *string          `db:"personal_message" json:"personal_message,omitempty"`
	ProgramIDs      pq.StringArray   `db:"program_ids" json:"program_ids,omitempty"`
	SectionID       *string          `db:"section_id" json:"section_id,omitempty"`
	SentAt          time.Time        `db:"sent_at" json:"sent_at"`
	ExpiresAt       *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// IsPending reports whether resend and cancel still apply.
func (i Invitation) IsPending() bool {
	return i.Status == InvitationPending
}

// InvitationFilter captures filtering criteria for listing invitations.
type InvitationFilter struct {
	Role   *Role
	Status *InvitationStatus
	Search string
}

// CreateInvitationRequest is the payload accepted by the invite action.
type CreateInvitationRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	Role            Role     `json:"role" validate:"required,oneof=site_admin institution_admin program_admin instructor student"`
	PersonalMessage string   `json:"personal_message,omitempty" validate:"max=1000"`
	FirstName       string   `json:"first_name,omitempty" validate:"max=100"`
	LastName        string   `json:"last_name,omitempty" validate:"max=100"`
	ProgramIDs      []string `json:"program_ids,omitempty" validate:"dive,required"`
	SectionID       string   `json:"section_id,omitempty"`
}

// CreateInvitationResult reports the outcome of the invite action. EmailError is set when the
// invitation was stored but delivery of the invitation email failed.
type CreateInvitationResult struct {
	Invitation *Invitation `json:"invitation"`
	Message    string      `json:"message"`
	EmailError string      `json:"email_error,omitempty"`
}

// ResendInvitationResult reports the outcome of a resend. EmailError is set when the invitation
// was refreshed but the email could not be delivered.
type ResendInvitationResult struct {
	Invitation *Invitation `json:"invitation"`
	Message    string      `json:"message"`
	EmailError string      `json:"email_error,omitempty"`
}

// ProgramChoice is an option of the program selector.
type ProgramChoice struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// InvitationCreatedEvent is broadcast after a successful invite.
type InvitationCreatedEvent struct {
	InvitationID string    `json:"invitation_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	SectionID    string    `json:"section_id,omitempty"`
	ProgramIDs   []string  `json:"program_ids,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// InvitationMail is the delivery request handed to the mail relay.
type InvitationMail struct {
	InvitationID    string     `json:"invitation_id"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	InviterName     string     `json:"inviter_name"`
	PersonalMessage string     `json:"personal_message,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	Resend          bool       `json:"resend"`
}

// InvitationEmailFailedMessage is returned as the invite message when the invitation was stored
// but its email could not be delivered. Clients key warning-tone rendering off this exact text.
const InvitationEmailFailedMessage = "Invitation created, but the invitation email could not be sent."

// InvitationResendEmailFailedMessage is the resend counterpart of InvitationEmailFailedMessage.
const InvitationResendEmailFailedMessage = "Invitation resent, but the invitation email could not be sent."
