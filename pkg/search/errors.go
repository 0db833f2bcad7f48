package search

import "errors"

var (
	ErrConnectionFailed  = errors.New("opensearch connection failed")
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")
	ErrRequestFailed     = errors.New("opensearch request failed")
	ErrMissingOwner      = errors.New("search query has no owner")
)
