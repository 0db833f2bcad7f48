package workspace

import (
	"context"
	"errors"

	"github.com/ngolasuite/ngola/pkg/activity"
	"github.com/ngolasuite/ngola/pkg/async"
	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/reporting"
	"github.com/ngolasuite/ngola/pkg/repository"
)

const dashboardActivity = 10

// Dashboard loads the landing page. Projects are read first; tasks, team
// count and recent activity are then fetched concurrently.
func (s *Service) Dashboard(ctx context.Context, a Actor) (reporting.Dashboard, error) {
	userID, err := userOf(a)
	if err != nil {
		return reporting.Dashboard{}, err
	}
	projects, err := s.repos.Projects.List(ctx, repository.ProjectQuery{OwnerID: userID})
	if err != nil {
		return reporting.Dashboard{}, err
	}

	tasksF := async.Async(ctx, projectIDs(projects), s.projectTasks)
	teamsF := async.Go(ctx, func(ctx context.Context) (int, error) {
		return s.repos.Teams.Count(ctx, repository.TeamQuery{OwnerID: userID})
	})
	activityF := async.Go(ctx, func(ctx context.Context) ([]domain.ActivityEntry, error) {
		return s.activity.Recent(ctx, activity.Query{UserID: userID, Limit: dashboardActivity})
	})

	tasks, tasksErr := tasksF.Await()
	teams, teamsErr := teamsF.Await()
	entries, activityErr := activityF.Await()
	if err := errors.Join(tasksErr, teamsErr, activityErr); err != nil {
		return reporting.Dashboard{}, err
	}

	return reporting.BuildDashboard(reporting.DashboardInput{
		Projects:     projects,
		Tasks:        tasks,
		Activity:     entries,
		ProjectCount: len(projects),
		TaskCount:    len(tasks),
		TeamCount:    teams,
	}), nil
}

// Report is the reports page. Detailed is false without a plan that has
// advanced reports; such reports carry totals only and no distributions.
type Report struct {
	reporting.Report
	Detailed bool
}

// Report summarizes everything the actor owns as of now.
func (s *Service) Report(ctx context.Context, a Actor) (Report, error) {
	userID, err := userOf(a)
	if err != nil {
		return Report{}, err
	}
	projects, err := s.repos.Projects.List(ctx, repository.ProjectQuery{OwnerID: userID})
	if err != nil {
		return Report{}, err
	}
	ids := projectIDs(projects)

	tasksF := async.Async(ctx, ids, s.projectTasks)
	resourcesF := async.Async(ctx, ids, func(ctx context.Context, ids []string) ([]domain.Resource, error) {
		return s.repos.Resources.List(ctx, repository.ResourceQuery{ProjectIDs: ids})
	})
	teamsF := async.Go(ctx, func(ctx context.Context) (teamSet, error) {
		return s.teamSet(ctx, userID)
	})

	tasks, tasksErr := tasksF.Await()
	resources, resourcesErr := resourcesF.Await()
	teams, teamsErr := teamsF.Await()
	if err := errors.Join(tasksErr, resourcesErr, teamsErr); err != nil {
		return Report{}, err
	}

	rep := reporting.Summarize(reporting.Input{
		Projects:  projects,
		Tasks:     tasks,
		Resources: resources,
		Teams:     teams.teams,
		Members:   teams.members,
	}, s.now())

	detailed := entitlement.HasFeature(a.Plan(), plans.FeatureAdvancedReports)
	if !detailed {
		rep = totalsOnly(rep)
	}
	return Report{Report: rep, Detailed: detailed}, nil
}

type teamSet struct {
	teams   []domain.Team
	members []domain.TeamMember
}

func (s *Service) teamSet(ctx context.Context, userID string) (teamSet, error) {
	teams, err := s.repos.Teams.List(ctx, repository.TeamQuery{OwnerID: userID})
	if err != nil {
		return teamSet{}, err
	}
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	members, err := s.repos.Teams.Members(ctx, ids...)
	if err != nil {
		return teamSet{}, err
	}
	return teamSet{teams: teams, members: members}, nil
}

func (s *Service) projectTasks(ctx context.Context, ids []string) ([]domain.Task, error) {
	return s.repos.Tasks.List(ctx, repository.TaskQuery{ProjectIDs: ids})
}

func projectIDs(projects []domain.Project) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}

func totalsOnly(r reporting.Report) reporting.Report {
	r.Projects.ByStatus = nil
	r.Tasks.ByStatus = nil
	r.Tasks.ByPriority = nil
	r.Resources.ByType = nil
	r.Resources.CostByType = nil
	return r
}
