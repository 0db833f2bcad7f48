package workspace

import "errors"

var (
	ErrNotSignedIn     = errors.New("workspace: no signed-in user")
	ErrForbidden       = errors.New("workspace: not owned by the current user")
	ErrSearchDisabled  = errors.New("workspace: search index not configured")
	ErrTemplateMissing = errors.New("workspace: project template not found")
)
