package models

import "time"

// Role names stored on user profiles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the profile kept for an identity-provider account, keyed by its UID.
type User struct {
	UID         string    `gorm:"primaryKey;size:128" json:"uid"`
	Email       string    `gorm:"index" json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
