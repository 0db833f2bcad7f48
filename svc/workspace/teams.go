package workspace

import (
	"context"

	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/repository"
)

// CreateTeam stores a team owned by the actor, optionally linked to one of
// the actor's projects.
func (s *Service) CreateTeam(ctx context.Context, a Actor, t domain.Team) (domain.Team, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Team{}, err
	}
	t = domain.NewTeam(t)
	t.ID = ""
	t.OwnerID = userID
	if err := t.Validate(); err != nil {
		return domain.Team{}, err
	}
	if t.ProjectID != "" {
		if _, err := s.ownedProject(ctx, userID, t.ProjectID); err != nil {
			return domain.Team{}, err
		}
	}

	t, err = s.repos.Teams.Create(ctx, t)
	if err != nil {
		return domain.Team{}, err
	}
	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionTeamCreated,
		UserID:    userID,
		ProjectID: t.ProjectID,
		Details:   map[string]any{"team_id": t.ID, "name": t.Name},
	})
	return t, nil
}

func (s *Service) UpdateTeam(ctx context.Context, a Actor, id string, patch domain.TeamPatch) (domain.Team, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Team{}, err
	}
	t, err := s.ownedTeam(ctx, userID, id)
	if err != nil {
		return domain.Team{}, err
	}
	if patch.IsZero() {
		return t, nil
	}

	t = patch.Apply(t)
	if err := t.Validate(); err != nil {
		return domain.Team{}, err
	}
	if patch.ProjectID != nil && t.ProjectID != "" {
		if _, err := s.ownedProject(ctx, userID, t.ProjectID); err != nil {
			return domain.Team{}, err
		}
	}
	t, err = s.repos.Teams.Save(ctx, t)
	if err != nil {
		return domain.Team{}, err
	}
	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionTeamUpdated,
		UserID:    userID,
		ProjectID: t.ProjectID,
		Details:   map[string]any{"team_id": t.ID, "name": t.Name},
	})
	return t, nil
}

// Teams lists the actor's teams, newest first.
func (s *Service) Teams(ctx context.Context, a Actor) ([]domain.Team, error) {
	userID, err := userOf(a)
	if err != nil {
		return nil, err
	}
	return s.repos.Teams.List(ctx, repository.TeamQuery{OwnerID: userID})
}

// AddMember adds a member to one of the actor's teams. The plan limits the
// number of members per team.
func (s *Service) AddMember(ctx context.Context, a Actor, m domain.TeamMember) (domain.TeamMember, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.TeamMember{}, err
	}
	t, err := s.ownedTeam(ctx, userID, m.TeamID)
	if err != nil {
		return domain.TeamMember{}, err
	}
	m = domain.NewTeamMember(m)
	m.ID = ""
	if err := m.Validate(); err != nil {
		return domain.TeamMember{}, err
	}
	if err := s.enforcer.CanCreate(ctx, a.Plan(), plans.FieldMaxTeamMembers, t.ID); err != nil {
		return domain.TeamMember{}, err
	}

	m, err = s.repos.Teams.AddMember(ctx, m)
	if err != nil {
		return domain.TeamMember{}, err
	}
	s.logger.InfoContext(ctx, "team member added", logger.TeamID(t.ID), logger.UserID(userID))
	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionMemberAdded,
		UserID:    userID,
		ProjectID: t.ProjectID,
		Details:   map[string]any{"team_id": t.ID, "member_id": m.ID, "role": string(m.Role)},
	})
	return m, nil
}

func (s *Service) UpdateMember(ctx context.Context, a Actor, id string, patch domain.TeamMemberPatch) (domain.TeamMember, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.TeamMember{}, err
	}
	m, err := s.repos.Teams.GetMember(ctx, id)
	if err != nil {
		return domain.TeamMember{}, err
	}
	t, err := s.ownedTeam(ctx, userID, m.TeamID)
	if err != nil {
		return domain.TeamMember{}, err
	}

	m = patch.Apply(m)
	if err := m.Validate(); err != nil {
		return domain.TeamMember{}, err
	}
	m, err = s.repos.Teams.SaveMember(ctx, m)
	if err != nil {
		return domain.TeamMember{}, err
	}
	s.record(ctx, domain.ActivityEntry{
		Action:    domain.ActionMemberUpdated,
		UserID:    userID,
		ProjectID: t.ProjectID,
		Details:   map[string]any{"team_id": t.ID, "member_id": m.ID, "role": string(m.Role)},
	})
	return m, nil
}

// Members lists the members of one of the actor's teams in joining order.
func (s *Service) Members(ctx context.Context, a Actor, teamID string) ([]domain.TeamMember, error) {
	userID, err := userOf(a)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedTeam(ctx, userID, teamID); err != nil {
		return nil, err
	}
	return s.repos.Teams.Members(ctx, teamID)
}

// MemberUsage reports how many of the plan's member seats a team uses.
func (s *Service) MemberUsage(ctx context.Context, a Actor, teamID string) (entitlement.Usage, error) {
	userID, err := userOf(a)
	if err != nil {
		return entitlement.Usage{}, err
	}
	if _, err := s.ownedTeam(ctx, userID, teamID); err != nil {
		return entitlement.Usage{}, err
	}
	return s.enforcer.Usage(ctx, a.Plan(), plans.FieldMaxTeamMembers, teamID)
}

func (s *Service) ownedTeam(ctx context.Context, userID, id string) (domain.Team, error) {
	t, err := s.repos.Teams.Get(ctx, id)
	if err != nil {
		return domain.Team{}, err
	}
	if t.OwnerID != userID {
		return domain.Team{}, ErrForbidden
	}
	return t, nil
}
