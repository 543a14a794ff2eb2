package models

import "time"

// UserRole is stored as a small integer: 1=manager, 2=user.
// Roles are immutable once the account is created.
type UserRole int

const (
	RoleManager UserRole = 1
	RoleUser    UserRole = 2
)

func (r UserRole) Valid() bool {
	return r == RoleManager || r == RoleUser
}

func (r UserRole) Label() string {
	switch r {
	case RoleManager:
		return "manager"
	case RoleUser:
		return "user"
	}
	return "unknown"
}

type User struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"` // never serialized

	// Telegram notifications are opt-in; zero means not linked.
	TelegramChatID int64 `json:"-"`

	// refresh-token storage, opaque value kept in the users row
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`

	DeletedAt *time.Time `json:"-"`
}

// Actor is the authenticated identity handed to the core by the auth layer.
// Every service call receives it explicitly; nothing is read from ambient
// request state.
type Actor struct {
	ID   int64
	Role UserRole
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
