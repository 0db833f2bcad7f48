package domain

import (
	"errors"

	"github.com/ngolasuite/ngola/pkg/validator"
)

// ValidateDependency checks that task may depend on dependencyID given the
// project's existing tasks. A task cannot depend on itself, on a task of
// another project, on a missing task, or on any task that already depends on
// it directly or transitively. An empty dependencyID is always valid.
//
// Errors wrap both the matching sentinel and validator.ValidationErrors.
func ValidateDependency(task Task, dependencyID string, tasks []Task) error {
	if dependencyID == "" {
		return nil
	}
	if task.ID != "" && dependencyID == task.ID {
		return dependencyError(ErrSelfDependency)
	}

	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	dep, ok := byID[dependencyID]
	if !ok {
		return dependencyError(ErrDependencyNotFound)
	}
	if dep.ProjectID != task.ProjectID {
		return dependencyError(ErrDependencyOtherProject)
	}

	// A new task has no ID yet, so nothing can depend on it.
	if task.ID == "" {
		return nil
	}

	seen := map[string]bool{task.ID: true}
	for cur := dep; ; {
		if seen[cur.ID] {
			return dependencyError(ErrDependencyCycle)
		}
		seen[cur.ID] = true
		if cur.DependencyID == "" {
			return nil
		}
		if cur.DependencyID == task.ID {
			return dependencyError(ErrDependencyCycle)
		}
		next, ok := byID[cur.DependencyID]
		if !ok {
			return nil
		}
		cur = next
	}
}

func dependencyError(sentinel error) error {
	return errors.Join(sentinel, validator.ValidationErrors{
		{Field: "dependency_id", Message: sentinel.Error()},
	})
}
