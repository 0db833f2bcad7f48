package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectProgress returns the rounded percentage of the project's tasks that
// are completed. Tasks of other projects are ignored. No tasks means 0.
func ProjectProgress(project Project, tasks []Task) int {
	total, done := 0, 0
	for _, t := range tasks {
		if t.ProjectID != project.ID {
			continue
		}
		total++
		if t.IsCompleted() {
			done++
		}
	}
	return Percent(done, total)
}

// Percent returns part/total*100 rounded half away from zero, or 0 when
// total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// IsOverdue reports whether the task has a due date strictly before now and
// is not completed.
func IsOverdue(t Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.IsCompleted()
}

// ResourceTotalCost is quantity times cost per unit. A missing operand
// counts as zero.
func ResourceTotalCost(r Resource) decimal.Decimal {
	return OrZero(r.Quantity).Mul(OrZero(r.CostPerUnit))
}

// OrZero unwraps an optional amount for arithmetic.
func OrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// GroupByStatus counts items per key. Keys that never occur are absent from
// the result rather than present with zero.
func GroupByStatus[T any, S comparable](items []T, key func(T) S) map[S]int {
	out := make(map[S]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

// Status accessors for GroupByStatus.
func ProjectStatusOf(p Project) ProjectStatus { return p.Status }
func TaskStatusOf(t Task) TaskStatus          { return t.Status }
func ResourceTypeOf(r Resource) ResourceType  { return r.Type }
func TaskTierOf(t Task) PriorityTier          { return t.Priority.Tier() }
