package workspace

import (
	"context"
	"log/slog"
	"time"

	"github.com/ngolasuite/ngola/pkg/activity"
	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/repository"
	"github.com/ngolasuite/ngola/pkg/search"
)

// Actor is the signed-in user an operation runs for.
// *session.Context satisfies it.
type Actor interface {
	UserID() string
	Plan() *plans.Plan
}

// Service runs workspace operations over the repositories.
type Service struct {
	repos    *repository.Repositories
	enforcer *entitlement.Enforcer
	activity *activity.Recorder
	index    search.Index
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Nil keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithActivity replaces the default recorder, which writes to the
// activity_logs table only.
func WithActivity(r *activity.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.activity = r
		}
	}
}

// WithIndex enables search. Without an index Search returns ErrSearchDisabled.
func WithIndex(idx search.Index) Option {
	return func(s *Service) { s.index = idx }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds the service. Plan limits are enforced with counters over
// repos: projects per owner and members per team.
func NewService(repos *repository.Repositories, opts ...Option) *Service {
	if repos == nil {
		panic("workspace: nil repositories")
	}
	s := &Service{
		repos:  repos,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.activity == nil {
		s.activity = activity.NewRecorder(activity.NewStoreSink(repos.Activity),
			activity.WithLogger(s.logger), activity.WithClock(s.now))
	}
	s.enforcer = entitlement.NewEnforcer(
		entitlement.WithCounter(plans.FieldMaxProjects, s.countProjects),
		entitlement.WithCounter(plans.FieldMaxTeamMembers, s.countMembers),
	)
	s.logger = s.logger.With(logger.Component("workspace"))
	return s
}

// Enforcer exposes the limit checks, e.g. for plan downgrade checks.
func (s *Service) Enforcer() *entitlement.Enforcer { return s.enforcer }

func (s *Service) countProjects(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.repos.Projects.Count(ctx, repository.ProjectQuery{OwnerID: ownerID})
	return int64(n), err
}

func (s *Service) countMembers(ctx context.Context, teamID string) (int64, error) {
	n, err := s.repos.Teams.CountMembers(ctx, teamID)
	return int64(n), err
}

func userOf(a Actor) (string, error) {
	if a == nil || a.UserID() == "" {
		return "", ErrNotSignedIn
	}
	return a.UserID(), nil
}

// record writes an activity entry. The write it describes already happened,
// so failures are logged by the recorder and dropped here.
func (s *Service) record(ctx context.Context, e domain.ActivityEntry) {
	_, _ = s.activity.Record(ctx, e)
}

func (s *Service) indexDocs(ctx context.Context, docs ...search.Document) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, docs...); err != nil {
		s.logger.WarnContext(ctx, "failed to update search index", logger.Error(err))
	}
}

// ownedProject loads a project and checks the actor owns it.
func (s *Service) ownedProject(ctx context.Context, userID, id string) (domain.Project, error) {
	p, err := s.repos.Projects.Get(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if p.OwnerID != userID {
		return domain.Project{}, ErrForbidden
	}
	return p, nil
}

// ownedProjectIDs lists the IDs of every project the user owns. The result
// is non-nil so an empty workspace matches no tasks or resources.
func (s *Service) ownedProjectIDs(ctx context.Context, userID string) ([]string, error) {
	projects, err := s.repos.Projects.List(ctx, repository.ProjectQuery{OwnerID: userID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
