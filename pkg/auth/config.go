package auth

import "time"

// Config holds the service settings loaded from the environment.
type Config struct {
	// TokenSecret signs password reset tokens. Required.
	TokenSecret string `env:"AUTH_TOKEN_SECRET"`
	// SessionTTL is the lifetime of a session.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"720h"`
	// ResetTokenTTL is the lifetime of a password reset link.
	ResetTokenTTL time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
	BcryptCost    int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}
