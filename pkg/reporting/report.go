package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngolasuite/ngola/pkg/domain"
)

// Input is the set of collections a report is computed from.
type Input struct {
	Projects  []domain.Project
	Tasks     []domain.Task
	Resources []domain.Resource
	Teams     []domain.Team
	Members   []domain.TeamMember
}

type ProjectStats struct {
	Total       int
	ByStatus    map[domain.ProjectStatus]int
	TotalBudget decimal.Decimal
}

type TaskStats struct {
	Total          int
	Completed      int
	Overdue        int
	CompletionRate int
	ByStatus       map[domain.TaskStatus]int
	ByPriority     map[domain.PriorityTier]int
}

type TeamStats struct {
	Teams   int
	Members int
}

type ResourceStats struct {
	Total      int
	ByType     map[domain.ResourceType]int
	TotalCost  decimal.Decimal
	CostByType map[domain.ResourceType]decimal.Decimal
}

// Report is the reports page in one value.
type Report struct {
	Projects    ProjectStats
	Tasks       TaskStats
	Teams       TeamStats
	Resources   ResourceStats
	GeneratedAt time.Time
}

// HasData reports whether there is anything to chart.
func (r Report) HasData() bool {
	return r.Projects.Total > 0 || r.Tasks.Total > 0
}

// Summarize computes every aggregate of in as of now.
func Summarize(in Input, now time.Time) Report {
	return Report{
		Projects: ProjectStats{
			Total:       len(in.Projects),
			ByStatus:    ProjectStatusDistribution(in.Projects),
			TotalBudget: BudgetTotal(in.Projects),
		},
		Tasks: TaskStats{
			Total:          len(in.Tasks),
			Completed:      countIf(in.Tasks, domain.Task.IsCompleted),
			Overdue:        OverdueCount(in.Tasks, now),
			CompletionRate: CompletionRate(in.Tasks),
			ByStatus:       TaskStatusDistribution(in.Tasks),
			ByPriority:     PriorityDistribution(in.Tasks),
		},
		Teams: TeamStats{
			Teams:   len(in.Teams),
			Members: len(in.Members),
		},
		Resources: ResourceStats{
			Total:      len(in.Resources),
			ByType:     ResourceTypeDistribution(in.Resources),
			TotalCost:  ResourceCostTotal(in.Resources),
			CostByType: ResourceCostByType(in.Resources),
		},
		GeneratedAt: now,
	}
}
