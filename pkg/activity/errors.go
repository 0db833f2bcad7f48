package activity

import "errors"

var (
	ErrMissingAction          = errors.New("activity entry has no action")
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
)
