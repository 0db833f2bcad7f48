package workspace

import (
	"context"
	"errors"
	"slices"

	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/repository"
	"github.com/ngolasuite/ngola/pkg/search"
)

// CreateTask adds a task to one of the actor's projects. A dependency must
// point at another task of the same project.
func (s *Service) CreateTask(ctx context.Context, a Actor, t domain.Task) (domain.Task, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Task{}, err
	}
	if _, err := s.ownedProject(ctx, userID, t.ProjectID); err != nil {
		return domain.Task{}, err
	}
	t = domain.NewTask(t)
	t.ID = ""
	t.CreatedBy = userID
	if err := t.Validate(); err != nil {
		return domain.Task{}, err
	}
	if err := s.checkDependency(ctx, t, t.DependencyID); err != nil {
		return domain.Task{}, err
	}

	t, err = s.repos.Tasks.Create(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}
	s.logger.DebugContext(ctx, "task created", logger.ProjectID(t.ProjectID), logger.TaskID(t.ID))

	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionTaskCreated,
		UserID:    userID,
		ProjectID: t.ProjectID,
		TaskID:    t.ID,
		Details:   map[string]any{"title": t.Title},
	})
	s.indexDocs(ctx, search.TaskDocument(t, userID))
	return t, nil
}

// UpdateTask applies patch to a task of one of the actor's projects.
func (s *Service) UpdateTask(ctx context.Context, a Actor, id string, patch domain.TaskPatch) (domain.Task, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Task{}, err
	}
	t, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return domain.Task{}, err
	}
	if patch.IsZero() {
		return t, nil
	}

	t = patch.Apply(t)
	if err := t.Validate(); err != nil {
		return domain.Task{}, err
	}
	if patch.DependencyID != nil {
		if err := s.checkDependency(ctx, t, t.DependencyID); err != nil {
			return domain.Task{}, err
		}
	}
	return s.saveTask(ctx, userID, t, domain.ActionTaskUpdated)
}

// ToggleTask flips a task between completed and pending.
func (s *Service) ToggleTask(ctx context.Context, a Actor, id string) (domain.Task, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Task{}, err
	}
	t, err := s.ownedTask(ctx, userID, id)
	if err != nil {
		return domain.Task{}, err
	}
	t.Status = domain.ToggleCompletion(t.Status)
	action := domain.ActionTaskReopened
	if t.IsCompleted() {
		action = domain.ActionTaskCompleted
	}
	return s.saveTask(ctx, userID, t, action)
}

// Task returns a task of one of the actor's projects.
func (s *Service) Task(ctx context.Context, a Actor, id string) (domain.Task, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Task{}, err
	}
	return s.ownedTask(ctx, userID, id)
}

// Tasks lists tasks across the actor's projects, or of one project when the
// filter names it. Newest first.
func (s *Service) Tasks(ctx context.Context, a Actor, f domain.TaskFilter) ([]domain.Task, error) {
	userID, err := userOf(a)
	if err != nil {
		return nil, err
	}
	q := repository.TaskQuery{
		AssigneeID: f.AssigneeID,
		Status:     f.Status,
		Search:     f.Query,
	}
	if f.ProjectID != "" {
		if _, err := s.ownedProject(ctx, userID, f.ProjectID); err != nil {
			return nil, err
		}
		q.ProjectID = f.ProjectID
	} else {
		if q.ProjectIDs, err = s.ownedProjectIDs(ctx, userID); err != nil {
			return nil, err
		}
	}
	tasks, err := s.repos.Tasks.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return domain.Filter(tasks, f.Match), nil
}

func (s *Service) saveTask(ctx context.Context, userID string, t domain.Task, action string) (domain.Task, error) {
	t, err := s.repos.Tasks.Save(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}
	s.record(ctx, domain.ActivityEntry{
		Action:    action,
		UserID:    userID,
		ProjectID: t.ProjectID,
		TaskID:    t.ID,
		Details:   map[string]any{"title": t.Title, "status": string(t.Status)},
	})
	s.indexDocs(ctx, search.TaskDocument(t, userID))
	return t, nil
}

func (s *Service) ownedTask(ctx context.Context, userID, id string) (domain.Task, error) {
	t, err := s.repos.Tasks.Get(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if _, err := s.ownedProject(ctx, userID, t.ProjectID); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// checkDependency loads the project's tasks only when a dependency is set.
func (s *Service) checkDependency(ctx context.Context, t domain.Task, dependencyID string) error {
	if dependencyID == "" {
		return nil
	}
	tasks, err := s.repos.Tasks.List(ctx, repository.TaskQuery{ProjectID: t.ProjectID})
	if err != nil {
		return err
	}
	// A task of another project is loaded so the error says so instead of
	// reporting a missing dependency.
	if !slices.ContainsFunc(tasks, func(x domain.Task) bool { return x.ID == dependencyID }) {
		dep, err := s.repos.Tasks.Get(ctx, dependencyID)
		switch {
		case err == nil:
			tasks = append(tasks, dep)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	return domain.ValidateDependency(t, dependencyID, tasks)
}
