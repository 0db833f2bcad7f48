package domain

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// ProjectFilter narrows a project list. Zero fields match everything.
type ProjectFilter struct {
	Query  string // case-insensitive substring of name or description
	Status ProjectStatus
}

func (f ProjectFilter) Match(p Project) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	q := fold(f.Query)
	if q == "" {
		return true
	}
	return strings.Contains(fold(p.Name), q) || strings.Contains(fold(p.Description), q)
}

// TaskFilter narrows a task list. Zero fields match everything.
type TaskFilter struct {
	Query      string // case-insensitive substring of the title
	Status     TaskStatus
	ProjectID  string
	AssigneeID string
}

func (f TaskFilter) Match(t Task) bool {
	switch {
	case f.Status != "" && t.Status != f.Status:
		return false
	case f.ProjectID != "" && t.ProjectID != f.ProjectID:
		return false
	case f.AssigneeID != "" && t.AssigneeID != f.AssigneeID:
		return false
	}
	q := fold(f.Query)
	return q == "" || strings.Contains(fold(t.Title), q)
}

// Filter returns the items match accepts, preserving order.
func Filter[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

// NewestFirst sorts items by creation time, most recent first. Ties keep
// their input order.
func NewestFirst[T any](items []T, createdAt func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return createdAt(b).Compare(createdAt(a))
	})
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
