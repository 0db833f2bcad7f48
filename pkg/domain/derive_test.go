package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ngolasuite/ngola/pkg/domain"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestProjectProgress(t *testing.T) {
	t.Parallel()

	site := domain.Project{ID: "p1", Name: "Site A"}

	t.Run("no tasks", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, domain.ProjectProgress(site, nil))
	})

	t.Run("four tasks one completed", func(t *testing.T) {
		t.Parallel()
		tasks := []domain.Task{
			{ID: "t1", ProjectID: "p1", Status: domain.TaskCompleted},
			{ID: "t2", ProjectID: "p1", Status: domain.TaskPending},
			{ID: "t3", ProjectID: "p1", Status: domain.TaskInProgress},
			{ID: "t4", ProjectID: "p1", Status: domain.TaskBlocked},
		}
		assert.Equal(t, 25, domain.ProjectProgress(site, tasks))
	})

	t.Run("all completed", func(t *testing.T) {
		t.Parallel()
		tasks := []domain.Task{
			{ProjectID: "p1", Status: domain.TaskCompleted},
			{ProjectID: "p1", Status: domain.TaskCompleted},
		}
		assert.Equal(t, 100, domain.ProjectProgress(site, tasks))
	})

	t.Run("other projects ignored", func(t *testing.T) {
		t.Parallel()
		tasks := []domain.Task{
			{ProjectID: "p1", Status: domain.TaskCompleted},
			{ProjectID: "p2", Status: domain.TaskPending},
			{ProjectID: "p2", Status: domain.TaskPending},
		}
		assert.Equal(t, 100, domain.ProjectProgress(site, tasks))
	})

	t.Run("rounds", func(t *testing.T) {
		t.Parallel()
		tasks := []domain.Task{
			{ProjectID: "p1", Status: domain.TaskCompleted},
			{ProjectID: "p1", Status: domain.TaskCompleted},
			{ProjectID: "p1", Status: domain.TaskPending},
		}
		assert.Equal(t, 67, domain.ProjectProgress(site, tasks))
	})
}

func TestIsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task domain.Task
		want bool
	}{
		{"past and pending", domain.Task{DueDate: &past, Status: domain.TaskPending}, true},
		{"past and blocked", domain.Task{DueDate: &past, Status: domain.TaskBlocked}, true},
		{"past but completed", domain.Task{DueDate: &past, Status: domain.TaskCompleted}, false},
		{"future", domain.Task{DueDate: &future, Status: domain.TaskPending}, false},
		{"exactly now", domain.Task{DueDate: &now, Status: domain.TaskPending}, false},
		{"no due date", domain.Task{Status: domain.TaskPending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.IsOverdue(tt.task, now))
		})
	}
}

func TestResourceTotalCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  domain.Resource
		want int64
	}{
		{"both set", domain.Resource{Quantity: dec(10), CostPerUnit: dec(500)}, 5000},
		{"no quantity", domain.Resource{CostPerUnit: dec(500)}, 0},
		{"no cost", domain.Resource{Quantity: dec(10)}, 0},
		{"neither", domain.Resource{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, decimal.NewFromInt(tt.want).Equal(domain.ResourceTotalCost(tt.res)))
		})
	}

	t.Run("fractional", func(t *testing.T) {
		t.Parallel()
		q := decimal.RequireFromString("2.5")
		c := decimal.RequireFromString("1200.40")
		got := domain.ResourceTotalCost(domain.Resource{Quantity: &q, CostPerUnit: &c})
		assert.Equal(t, "3001", got.String())
	})
}

func TestGroupByStatus(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		{Status: domain.TaskPending},
		{Status: domain.TaskCompleted},
		{Status: domain.TaskPending},
	}
	got := domain.GroupByStatus(tasks, domain.TaskStatusOf)
	assert.Equal(t, map[domain.TaskStatus]int{
		domain.TaskPending:   2,
		domain.TaskCompleted: 1,
	}, got)

	_, present := got[domain.TaskBlocked]
	assert.False(t, present, "absent statuses must not be zero-filled")

	assert.Empty(t, domain.GroupByStatus([]domain.Project{}, domain.ProjectStatusOf))
}

func TestToggleCompletion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.TaskPending, domain.ToggleCompletion(domain.TaskCompleted))
	for _, s := range []domain.TaskStatus{domain.TaskPending, domain.TaskInProgress, domain.TaskReview, domain.TaskBlocked} {
		assert.Equal(t, domain.TaskCompleted, domain.ToggleCompletion(s), s)
	}
}
