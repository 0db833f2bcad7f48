package workspace

import (
	"context"

	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/repository"
)

// CreateResource allocates a resource on one of the actor's projects. When a
// task is named it must belong to the same project.
func (s *Service) CreateResource(ctx context.Context, a Actor, r domain.Resource) (domain.Resource, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Resource{}, err
	}
	if _, err := s.ownedProject(ctx, userID, r.ProjectID); err != nil {
		return domain.Resource{}, err
	}
	r = domain.NewResource(r)
	r.ID = ""
	if err := r.Validate(); err != nil {
		return domain.Resource{}, err
	}
	if err := s.checkResourceTask(ctx, r); err != nil {
		return domain.Resource{}, err
	}

	r, err = s.repos.Resources.Create(ctx, r)
	if err != nil {
		return domain.Resource{}, err
	}
	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionResourceCreated,
		UserID:    userID,
		ProjectID: r.ProjectID,
		TaskID:    r.TaskID,
		Details:   map[string]any{"name": r.Name, "type": string(r.Type)},
	})
	return r, nil
}

// UpdateResource applies patch. The type and project of a resource never
// change.
func (s *Service) UpdateResource(ctx context.Context, a Actor, id string, patch domain.ResourcePatch) (domain.Resource, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Resource{}, err
	}
	r, err := s.repos.Resources.Get(ctx, id)
	if err != nil {
		return domain.Resource{}, err
	}
	if _, err := s.ownedProject(ctx, userID, r.ProjectID); err != nil {
		return domain.Resource{}, err
	}
	if patch.IsZero() {
		return r, nil
	}

	r = patch.Apply(r)
	if err := r.Validate(); err != nil {
		return domain.Resource{}, err
	}
	if patch.TaskID != nil {
		if err := s.checkResourceTask(ctx, r); err != nil {
			return domain.Resource{}, err
		}
	}
	r, err = s.repos.Resources.Save(ctx, r)
	if err != nil {
		return domain.Resource{}, err
	}
	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionResourceUpdated,
		UserID:    userID,
		ProjectID: r.ProjectID,
		TaskID:    r.TaskID,
		Details:   map[string]any{"name": r.Name},
	})
	return r, nil
}

// Resources lists resources of the actor's projects, or of one project when
// projectID is set. An empty typ matches every type.
func (s *Service) Resources(ctx context.Context, a Actor, projectID string, typ domain.ResourceType) ([]domain.Resource, error) {
	userID, err := userOf(a)
	if err != nil {
		return nil, err
	}
	q := repository.ResourceQuery{Type: typ}
	if projectID != "" {
		if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
			return nil, err
		}
		q.ProjectID = projectID
	} else if q.ProjectIDs, err = s.ownedProjectIDs(ctx, userID); err != nil {
		return nil, err
	}
	return s.repos.Resources.List(ctx, q)
}

func (s *Service) checkResourceTask(ctx context.Context, r domain.Resource) error {
	if r.TaskID == "" {
		return nil
	}
	t, err := s.repos.Tasks.Get(ctx, r.TaskID)
	if err != nil {
		return err
	}
	if t.ProjectID != r.ProjectID {
		return ErrForbidden
	}
	return nil
}
