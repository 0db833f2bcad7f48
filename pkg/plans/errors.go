package plans

import "errors"

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrInvalidCatalog   = errors.New("invalid plan catalog")
	ErrFailedToLoadYAML = errors.New("failed to load plan catalog from yaml")
)
