package reporting

import (
	"slices"
	"time"

	"github.com/ngolasuite/ngola/pkg/domain"
)

const (
	dashboardProjects = 6
	dashboardTasks    = 5
)

// ProjectCard is a dashboard project with its progress.
type ProjectCard struct {
	Project  domain.Project
	Progress int
}

// Dashboard holds the landing page numbers.
type Dashboard struct {
	ProjectCount int
	TaskCount    int
	TeamCount    int
	// Progress is the completion rate over every task.
	Progress       int
	RecentProjects []ProjectCard
	RecentTasks    []domain.Task
	Activity       []domain.ActivityEntry
}

// DashboardInput carries what the dashboard is built from. Counts are
// given separately because they cover more rows than the listed ones.
type DashboardInput struct {
	Projects     []domain.Project
	Tasks        []domain.Task
	Activity     []domain.ActivityEntry
	ProjectCount int
	TaskCount    int
	TeamCount    int
}

// BuildDashboard picks the six newest projects and five newest tasks and
// computes per-project progress.
func BuildDashboard(in DashboardInput) Dashboard {
	projects := slices.Clone(in.Projects)
	domain.NewestFirst(projects, func(p domain.Project) time.Time { return p.CreatedAt })
	tasks := slices.Clone(in.Tasks)
	domain.NewestFirst(tasks, func(t domain.Task) time.Time { return t.CreatedAt })

	cards := make([]ProjectCard, 0, min(len(projects), dashboardProjects))
	for _, p := range projects[:min(len(projects), dashboardProjects)] {
		cards = append(cards, ProjectCard{Project: p, Progress: domain.ProjectProgress(p, in.Tasks)})
	}

	return Dashboard{
		ProjectCount:   max(in.ProjectCount, len(in.Projects)),
		TaskCount:      max(in.TaskCount, len(in.Tasks)),
		TeamCount:      in.TeamCount,
		Progress:       CompletionRate(in.Tasks),
		RecentProjects: cards,
		RecentTasks:    tasks[:min(len(tasks), dashboardTasks)],
		Activity:       in.Activity,
	}
}
