package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Role enumerates account roles. Administrator-tier roles gate the console itself.
type Role string

const (
	RoleSiteAdmin        Role = "site_admin"
	RoleInstitutionAdmin Role = "institution_admin"
	RoleProgramAdmin     Role = "program_admin"
	RoleInstructor       Role = "instructor"
	RoleStudent          Role = "student"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleSiteAdmin, RoleInstitutionAdmin, RoleProgramAdmin, RoleInstructor, RoleStudent}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// RequiresPrograms reports whether the role is scoped to one or more programs.
func (r Role) RequiresPrograms() bool {
	return r == RoleProgramAdmin
}

// IsAdministrator reports whether the role may operate the management console.
func (r Role) IsAdministrator() bool {
	return r == RoleSiteAdmin || r == RoleInstitutionAdmin
}

// AccountStatus is the stored account status vocabulary.
type AccountStatus string

const (
	AccountActive              AccountStatus = "active"
	AccountInactive            AccountStatus = "inactive"
	AccountPendingVerification AccountStatus = "pending_verification"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountActive, AccountInactive, AccountPendingVerification:
		return true
	}
	return false
}

// Account represents a console-managed user account.
type Account struct {
	ID             string         `db:"id" json:"id"`
	FirstName      string         `db:"first_name" json:"first_name"`
	LastName       string         `db:"last_name" json:"last_name"`
	Email          string         `db:"email" json:"email"`
	Role           Role           `db:"role" json:"role"`
	Status         AccountStatus  `db:"account_status" json:"account_status"`
	LastActivityAt *time.Time     `db:"last_activity_at" json:"last_activity_at,omitempty"`
	ProgramIDs     pq.StringArray `db:"program_ids" json:"program_ids,omitempty"`
	ProgramNames   pq.StringArray `db:"program_names" json:"program_names,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name, skipping empty parts.
func (a Account) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// AccountFilter captures filtering criteria for listing accounts.
type AccountFilter struct {
	Role   *Role
	Status *AccountStatus
	Search string
}

// UpdateAccountRequest is the payload for editing an account or toggling its status.
type UpdateAccountRequest struct {
	FirstName string        `json:"first_name" validate:"required"`
	LastName  string        `json:"last_name" validate:"required"`
	Role      Role          `json:"role" validate:"required,oneof=site_admin institution_admin program_admin instructor student"`
	Status    AccountStatus `json:"status" validate:"required,oneof=active inactive pending_verification"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
