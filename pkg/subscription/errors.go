package subscription

import "errors"

var (
	ErrNoSession        = errors.New("no active subscription session")
	ErrAlreadyStarted   = errors.New("subscription session already started")
	ErrSignedOut        = errors.New("subscription session ended")
	ErrCheckFailed      = errors.New("subscription check failed")
	ErrUnknownPriceRef  = errors.New("price reference is not in the plan catalog")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrCheckoutFailed   = errors.New("failed to start checkout")
	ErrPortalFailed     = errors.New("failed to open customer portal")
	ErrInvalidInterval  = errors.New("refresh interval must be positive")
	ErrSchedulingFailed = errors.New("failed to schedule subscription refresh")
)
