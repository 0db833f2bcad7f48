package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngolasuite/ngola/pkg/domain"
)

// BudgetTotal sums project budgets. A missing budget counts as zero.
func BudgetTotal(projects []domain.Project) decimal.Decimal {
	total := decimal.Zero
	for _, p := range projects {
		total = total.Add(domain.OrZero(p.Budget))
	}
	return total
}

// CompletionRate is the rounded percentage of completed tasks, 0 when empty.
func CompletionRate(tasks []domain.Task) int {
	return domain.Percent(countIf(tasks, domain.Task.IsCompleted), len(tasks))
}

// OverdueCount counts tasks that are overdue at now.
func OverdueCount(tasks []domain.Task, now time.Time) int {
	return countIf(tasks, func(t domain.Task) bool { return domain.IsOverdue(t, now) })
}

// ProjectStatusDistribution counts projects per status.
func ProjectStatusDistribution(projects []domain.Project) map[domain.ProjectStatus]int {
	return domain.GroupByStatus(projects, domain.ProjectStatusOf)
}

// TaskStatusDistribution counts tasks per status.
func TaskStatusDistribution(tasks []domain.Task) map[domain.TaskStatus]int {
	return domain.GroupByStatus(tasks, domain.TaskStatusOf)
}

// PriorityDistribution buckets tasks into low, medium, high and urgent.
func PriorityDistribution(tasks []domain.Task) map[domain.PriorityTier]int {
	return domain.GroupByStatus(tasks, domain.TaskTierOf)
}

// ResourceCostTotal sums quantity times cost per unit over all resources.
func ResourceCostTotal(resources []domain.Resource) decimal.Decimal {
	total := decimal.Zero
	for _, r := range resources {
		total = total.Add(domain.ResourceTotalCost(r))
	}
	return total
}

// ResourceTypeDistribution counts resources per type.
func ResourceTypeDistribution(resources []domain.Resource) map[domain.ResourceType]int {
	return domain.GroupByStatus(resources, domain.ResourceTypeOf)
}

// ResourceCostByType sums resource cost per resource type. Types without
// resources are absent.
func ResourceCostByType(resources []domain.Resource) map[domain.ResourceType]decimal.Decimal {
	out := make(map[domain.ResourceType]decimal.Decimal)
	for _, r := range resources {
		out[r.Type] = out[r.Type].Add(domain.ResourceTotalCost(r))
	}
	return out
}

func countIf[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}
