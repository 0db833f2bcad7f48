package ngola

import "errors"

var (
	ErrUnknownBillingProvider = errors.New("ngola: unknown billing provider")
	ErrMissingSecret          = errors.New("ngola: AUTH_TOKEN_SECRET is required in production")
)
