package auth

import (
	"context"
	"time"
)

// Token subjects.
const SubjectPasswordReset = "password_reset"

// User is a local account.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an authenticated session identified by an opaque token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// UserStore persists accounts. Lookups by email receive a normalized address.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePasswordHash(ctx context.Context, id string, hash []byte) error
}

// SessionStore keeps live sessions. Get returns ErrSessionNotFound for
// unknown or expired tokens.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteUser revokes every session of a user.
	DeleteUser(ctx context.Context, userID string) error
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// SignUpParams is the registration form.
type SignUpParams struct {
	Email                string
	Password             string
	PasswordConfirmation string
	DisplayName          string
}
