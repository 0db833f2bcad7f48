package repository

import (
	"context"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Resources persists domain.Resource in the resources table.
type Resources struct{ base }

// ResourceQuery narrows List. ProjectIDs behaves as in TaskQuery.
type ResourceQuery struct {
	ProjectID  string
	ProjectIDs []string
	Type       domain.ResourceType
}

func (q ResourceQuery) filter() datastore.Filter {
	var f datastore.Filter
	if q.ProjectID != "" {
		f = append(f, datastore.Eq("project_id", q.ProjectID))
	}
	if len(q.ProjectIDs) > 0 {
		f = append(f, datastore.Cond{Column: "project_id", Op: datastore.OpIn, Value: q.ProjectIDs})
	}
	if q.Type != "" {
		f = append(f, datastore.Eq("type", string(q.Type)))
	}
	return f
}

func resourceFromRecord(rec datastore.Record) (domain.Resource, error) {
	r := row{rec: rec}
	res := domain.Resource{
		ID:          r.str("id"),
		Name:        r.str("name"),
		Type:        domain.ResourceType(r.str("type")),
		ProjectID:   r.str("project_id"),
		TaskID:      r.str("task_id"),
		AssigneeID:  r.str("assigned_to"),
		Quantity:    r.optDecimal("quantity"),
		Unit:        r.str("unit"),
		CostPerUnit: r.optDecimal("cost_per_unit"),
		Notes:       r.str("notes"),
		CreatedAt:   r.time("created_at"),
		UpdatedAt:   r.time("updated_at"),
	}
	return res, r.err
}

// resourceColumns leaves out type and project: both are fixed at creation.
func resourceColumns(res domain.Resource) datastore.Record {
	return datastore.Record{
		"name":          res.Name,
		"task_id":       nullStr(res.TaskID),
		"assigned_to":   nullStr(res.AssigneeID),
		"quantity":      nullDecimal(res.Quantity),
		"unit":          nullStr(res.Unit),
		"cost_per_unit": nullDecimal(res.CostPerUnit),
		"notes":         nullStr(res.Notes),
		"updated_at":    res.UpdatedAt,
	}
}

func (r *Resources) Create(ctx context.Context, res domain.Resource) (domain.Resource, error) {
	if res.ID == "" {
		res.ID = r.newID()
	}
	res.CreatedAt = r.now()
	res.UpdatedAt = res.CreatedAt

	rec := resourceColumns(res)
	rec["id"] = res.ID
	rec["type"] = string(res.Type)
	rec["project_id"] = res.ProjectID
	rec["created_at"] = res.CreatedAt

	out, err := r.store.Insert(ctx, tableResources, rec)
	if err != nil {
		return domain.Resource{}, wrap("create resource", err)
	}
	return resourceFromRecord(out)
}

func (r *Resources) Get(ctx context.Context, id string) (domain.Resource, error) {
	rec, err := r.store.First(ctx, tableResources, datastore.Query{Filter: byID(id)})
	if err != nil {
		return domain.Resource{}, wrap("get resource", err)
	}
	return resourceFromRecord(rec)
}

func (r *Resources) List(ctx context.Context, q ResourceQuery) ([]domain.Resource, error) {
	if q.ProjectIDs != nil && len(q.ProjectIDs) == 0 {
		return nil, nil
	}
	recs, err := r.store.Select(ctx, tableResources, datastore.Query{
		Filter: q.filter(),
		Order:  newestFirst(),
	})
	if err != nil {
		return nil, wrap("list resources", err)
	}
	return mapRows(recs, resourceFromRecord)
}

// Save rewrites the mutable columns. Type and project are never written.
func (r *Resources) Save(ctx context.Context, res domain.Resource) (domain.Resource, error) {
	res.UpdatedAt = r.now()
	n, err := r.store.Update(ctx, tableResources, resourceColumns(res), byID(res.ID))
	if err != nil {
		return domain.Resource{}, wrap("save resource", err)
	}
	if n == 0 {
		return domain.Resource{}, wrap("save resource", ErrNotFound)
	}
	return res, nil
}
