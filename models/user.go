package models

import (
	"time"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User is scoped to one organisation. Deactivated users are kept as rows
// with status=inactive rather than deleted, so historical timesheets keep
// their owner.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	OrganisationID   uint       `gorm:"not null;index" json:"organisation_id"`
	Name             string     `gorm:"not null;size:200" json:"name"`
	Email            string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	RefreshTokenHash string     `json:"-"`
	Role             Role       `gorm:"not null;size:20;default:EMPLOYEE" json:"role"`
	Department       string     `gorm:"size:100" json:"department"`
	Status           UserStatus `gorm:"not null;size:20;default:active" json:"status"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

func (u *User) IsActive() bool {
	return u.Status == UserActive
}

// CanApprove reports whether the user's role allows acting on submitted
// timesheets at all; ownership and direct-report checks are separate.
func (u *User) CanApprove() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
