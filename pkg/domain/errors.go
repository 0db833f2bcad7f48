package domain

import "errors"

var (
	ErrSelfDependency         = errors.New("task cannot depend on itself")
	ErrDependencyCycle        = errors.New("task dependency would create a cycle")
	ErrDependencyNotFound     = errors.New("dependency task not found")
	ErrDependencyOtherProject = errors.New("dependency task belongs to another project")
)
