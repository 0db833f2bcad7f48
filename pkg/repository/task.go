package repository

import (
	"context"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Tasks persists domain.Task in the tasks table.
type Tasks struct{ base }

// TaskQuery narrows List and Count. ProjectIDs, when non-nil, restricts to
// those projects; an empty non-nil slice matches nothing.
type TaskQuery struct {
	ProjectID  string
	ProjectIDs []string
	AssigneeID string
	Status     domain.TaskStatus
	Search     string
	Limit      int
}

// empty reports whether the query can match no rows at all.
func (q TaskQuery) empty() bool { return q.ProjectIDs != nil && len(q.ProjectIDs) == 0 }

func (q TaskQuery) filter() datastore.Filter {
	var f datastore.Filter
	if q.ProjectID != "" {
		f = append(f, datastore.Eq("project_id", q.ProjectID))
	}
	if len(q.ProjectIDs) > 0 {
		f = append(f, datastore.Cond{Column: "project_id", Op: datastore.OpIn, Value: q.ProjectIDs})
	}
	if q.AssigneeID != "" {
		f = append(f, datastore.Eq("assignee_id", q.AssigneeID))
	}
	if q.Status != "" {
		f = append(f, datastore.Eq("status", string(q.Status)))
	}
	if q.Search != "" {
		f = append(f, datastore.Cond{Column: "title", Op: datastore.OpContains, Value: q.Search})
	}
	return f
}

func taskFromRecord(rec datastore.Record) (domain.Task, error) {
	r := row{rec: rec}
	t := domain.Task{
		ID:             r.str("id"),
		Title:          r.str("title"),
		Description:    r.str("description"),
		Status:         domain.TaskStatus(r.str("status")),
		Priority:       domain.Priority(r.int("priority")),
		ProjectID:      r.str("project_id"),
		AssigneeID:     r.str("assignee_id"),
		DueDate:        r.optTime("due_date"),
		DependencyID:   r.str("dependency_id"),
		Phase:          r.str("phase"),
		EstimatedHours: r.optDecimal("estimated_hours"),
		ActualHours:    r.optDecimal("actual_hours"),
		CreatedBy:      r.str("created_by"),
		CreatedAt:      r.time("created_at"),
		UpdatedAt:      r.time("updated_at"),
	}
	return t, r.err
}

func taskColumns(t domain.Task) datastore.Record {
	return datastore.Record{
		"title":           t.Title,
		"description":     nullStr(t.Description),
		"status":          string(t.Status),
		"priority":        int(t.Priority),
		"assignee_id":     nullStr(t.AssigneeID),
		"due_date":        nullTime(t.DueDate),
		"dependency_id":   nullStr(t.DependencyID),
		"phase":           nullStr(t.Phase),
		"estimated_hours": nullDecimal(t.EstimatedHours),
		"actual_hours":    nullDecimal(t.ActualHours),
		"updated_at":      t.UpdatedAt,
	}
}

func (r *Tasks) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = r.newID()
	}
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt

	rec := taskColumns(t)
	rec["id"] = t.ID
	rec["project_id"] = t.ProjectID
	rec["created_by"] = t.CreatedBy
	rec["created_at"] = t.CreatedAt

	out, err := r.store.Insert(ctx, tableTasks, rec)
	if err != nil {
		return domain.Task{}, wrap("create task", err)
	}
	return taskFromRecord(out)
}

func (r *Tasks) Get(ctx context.Context, id string) (domain.Task, error) {
	rec, err := r.store.First(ctx, tableTasks, datastore.Query{Filter: byID(id)})
	if err != nil {
		return domain.Task{}, wrap("get task", err)
	}
	return taskFromRecord(rec)
}

// List returns matching tasks ordered by creation date, newest first.
func (r *Tasks) List(ctx context.Context, q TaskQuery) ([]domain.Task, error) {
	if q.empty() {
		return nil, nil
	}
	recs, err := r.store.Select(ctx, tableTasks, datastore.Query{
		Filter: q.filter(),
		Order:  newestFirst(),
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, wrap("list tasks", err)
	}
	return mapRows(recs, taskFromRecord)
}

// Save rewrites the mutable columns. The project of a task never changes.
func (r *Tasks) Save(ctx context.Context, t domain.Task) (domain.Task, error) {
	t.UpdatedAt = r.now()
	n, err := r.store.Update(ctx, tableTasks, taskColumns(t), byID(t.ID))
	if err != nil {
		return domain.Task{}, wrap("save task", err)
	}
	if n == 0 {
		return domain.Task{}, wrap("save task", ErrNotFound)
	}
	return t, nil
}

func (r *Tasks) Count(ctx context.Context, q TaskQuery) (int, error) {
	if q.empty() {
		return 0, nil
	}
	n, err := r.store.Count(ctx, tableTasks, q.filter())
	if err != nil {
		return 0, wrap("count tasks", err)
	}
	return int(n), nil
}
