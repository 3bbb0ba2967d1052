package models

import "time"

// UserStatus gates whether a user may sign in.
type UserStatus string

const (
	UserStatusInactive  UserStatus = "inactive"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// DefaultCurrency is assigned to users who register without one.
const DefaultCurrency = "MXN"

// User represents the user model in the database
type User struct {
	Base
	Username              string     `gorm:"uniqueIndex;not null" json:"username"`
	Email                 string     `gorm:"uniqueIndex;not null" json:"email"`
	Password              string     `gorm:"not null" json:"-"`
	FullName              string     `json:"full_name"`
	Currency              string     `gorm:"size:3;not null;default:'MXN'" json:"currency"`
	Status                UserStatus `gorm:"not null;default:'inactive'" json:"status"`
	ActivationToken       *string    `gorm:"uniqueIndex;size:64" json:"-"`
	ActivationTokenExpiry *time.Time `json:"-"`
}

// OwnerID implements Owned; a user owns itself.
func (u *User) OwnerID() string { return u.ID }
