package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngolasuite/ngola/pkg/validator"
)

// Task is a unit of work inside a project.
type Task struct {
	ID             string
	Title          string
	Description    string
	Status         TaskStatus
	Priority       Priority
	ProjectID      string
	AssigneeID     string
	DueDate        *time.Time
	DependencyID   string
	Phase          string
	EstimatedHours *decimal.Decimal
	ActualHours    *decimal.Decimal
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t Task) Validate() error {
	return validator.Apply(
		validator.Required("title", t.Title),
		validator.MaxLen("title", t.Title, 200),
		validator.OneOf("status", t.Status, TaskStatuses),
		validator.Between("priority", t.Priority, PriorityMin, PriorityMax),
		validator.Required("project_id", t.ProjectID),
		validator.Required("created_by", t.CreatedBy),
		validator.When(t.EstimatedHours != nil, nonNegative("estimated_hours", t.EstimatedHours)),
		validator.When(t.ActualHours != nil, nonNegative("actual_hours", t.ActualHours)),
		validator.When(t.DependencyID != "" && t.ID != "",
			validator.NotEqual("dependency_id", t.DependencyID, t.ID, ErrSelfDependency.Error())),
	)
}

// NewTask fills creation defaults: trimmed title, pending status and the
// default priority when none was chosen.
func NewTask(t Task) Task {
	t.Title = strings.TrimSpace(t.Title)
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.Priority == 0 {
		t.Priority = PriorityDefault
	}
	return t
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool { return t.Status == TaskCompleted }

// TaskPatch carries the fields a task update sets.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *TaskStatus
	Priority       *Priority
	AssigneeID     *string
	DueDate        *time.Time
	DependencyID   *string
	Phase          *string
	EstimatedHours *decimal.Decimal
	ActualHours    *decimal.Decimal
}

func (tp TaskPatch) Apply(t Task) Task {
	if tp.Title != nil {
		t.Title = strings.TrimSpace(*tp.Title)
	}
	set(&t.Description, tp.Description)
	set(&t.Status, tp.Status)
	set(&t.Priority, tp.Priority)
	set(&t.AssigneeID, tp.AssigneeID)
	set(&t.DependencyID, tp.DependencyID)
	set(&t.Phase, tp.Phase)
	setPtr(&t.DueDate, tp.DueDate)
	setPtr(&t.EstimatedHours, tp.EstimatedHours)
	setPtr(&t.ActualHours, tp.ActualHours)
	return t
}

func (tp TaskPatch) IsZero() bool {
	return tp == TaskPatch{}
}
