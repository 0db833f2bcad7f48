package workspace

import (
	"context"
	"errors"

	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/repository"
	"github.com/ngolasuite/ngola/pkg/search"
)

// CreateProject stores a new project owned by the actor. The plan's project
// limit is checked before anything is written.
func (s *Service) CreateProject(ctx context.Context, a Actor, p domain.Project) (domain.Project, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Project{}, err
	}
	p = domain.NewProject(p)
	p.ID = ""
	p.OwnerID = userID
	if err := p.Validate(); err != nil {
		return domain.Project{}, err
	}
	if err := s.checkTemplate(ctx, p.TemplateID); err != nil {
		return domain.Project{}, err
	}
	if err := s.enforcer.CanCreate(ctx, a.Plan(), plans.FieldMaxProjects, userID); err != nil {
		return domain.Project{}, err
	}

	p, err = s.repos.Projects.Create(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}
	s.logger.InfoContext(ctx, "project created", logger.UserID(userID), logger.ProjectID(p.ID))

	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionProjectCreated,
		UserID:    userID,
		ProjectID: p.ID,
		Details:   map[string]any{"name": p.Name},
	})
	s.indexDocs(ctx, search.ProjectDocument(p))
	return p, nil
}

// UpdateProject applies patch to one of the actor's projects.
func (s *Service) UpdateProject(ctx context.Context, a Actor, id string, patch domain.ProjectPatch) (domain.Project, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Project{}, err
	}
	p, err := s.ownedProject(ctx, userID, id)
	if err != nil {
		return domain.Project{}, err
	}
	if patch.IsZero() {
		return p, nil
	}

	p = patch.Apply(p)
	if err := p.Validate(); err != nil {
		return domain.Project{}, err
	}
	if patch.TemplateID != nil {
		if err := s.checkTemplate(ctx, p.TemplateID); err != nil {
			return domain.Project{}, err
		}
	}
	p, err = s.repos.Projects.Save(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}

	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionProjectUpdated,
		UserID:    userID,
		ProjectID: p.ID,
		Details:   map[string]any{"name": p.Name, "status": string(p.Status)},
	})
	s.indexDocs(ctx, search.ProjectDocument(p))
	return p, nil
}

// Project returns one of the actor's projects.
func (s *Service) Project(ctx context.Context, a Actor, id string) (domain.Project, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Project{}, err
	}
	return s.ownedProject(ctx, userID, id)
}

// Projects lists the actor's projects, newest first. The status filter runs
// in the store; the text query also matches descriptions, so it runs here.
func (s *Service) Projects(ctx context.Context, a Actor, f domain.ProjectFilter) ([]domain.Project, error) {
	userID, err := userOf(a)
	if err != nil {
		return nil, err
	}
	projects, err := s.repos.Projects.List(ctx, repository.ProjectQuery{
		OwnerID: userID,
		Status:  f.Status,
	})
	if err != nil {
		return nil, err
	}
	return domain.Filter(projects, f.Match), nil
}

// Templates lists the presets a new project can start from.
func (s *Service) Templates(ctx context.Context) ([]domain.ProjectTemplate, error) {
	return s.repos.Templates.List(ctx)
}

func (s *Service) checkTemplate(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	_, err := s.repos.Templates.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return errors.Join(ErrTemplateMissing, err)
	}
	return err
}

// ProjectUsage reports how many of the plan's projects the actor uses.
func (s *Service) ProjectUsage(ctx context.Context, a Actor) (entitlement.Usage, error) {
	userID, err := userOf(a)
	if err != nil {
		return entitlement.Usage{}, err
	}
	return s.enforcer.Usage(ctx, a.Plan(), plans.FieldMaxProjects, userID)
}
