package entitlement

import "errors"

var (
	ErrNoActivePlan         = errors.New("no active subscription plan")
	ErrLimitExceeded        = errors.New("plan limit exceeded")
	ErrInvalidField         = errors.New("unknown plan limit field")
	ErrNoCounterRegistered  = errors.New("no usage counter registered for limit")
	ErrFailedToCountUsage   = errors.New("failed to count usage")
	ErrFeatureNotAvailable  = errors.New("feature not available on current plan")
	ErrDowngradeNotPossible = errors.New("current usage exceeds target plan limits")
)
