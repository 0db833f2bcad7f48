package repository

import (
	"context"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Projects persists domain.Project in the projects table.
type Projects struct{ base }

// ProjectQuery narrows List and Count. Zero fields match everything.
type ProjectQuery struct {
	OwnerID string
	Status  domain.ProjectStatus
	// Search is a case-insensitive substring of the name.
	Search string
	Limit  int
}

func (q ProjectQuery) filter() datastore.Filter {
	var f datastore.Filter
	if q.OwnerID != "" {
		f = append(f, datastore.Eq("created_by", q.OwnerID))
	}
	if q.Status != "" {
		f = append(f, datastore.Eq("status", string(q.Status)))
	}
	if q.Search != "" {
		f = append(f, datastore.Cond{Column: "name", Op: datastore.OpContains, Value: q.Search})
	}
	return f
}

func projectFromRecord(rec datastore.Record) (domain.Project, error) {
	r := row{rec: rec}
	p := domain.Project{
		ID:          r.str("id"),
		Name:        r.str("name"),
		Description: r.str("description"),
		Status:      domain.ProjectStatus(r.str("status")),
		TemplateID:  r.str("template_id"),
		Location:    r.str("location"),
		Latitude:    r.optFloat("latitude"),
		Longitude:   r.optFloat("longitude"),
		StartDate:   r.optTime("start_date"),
		EndDate:     r.optTime("end_date"),
		Budget:      r.optDecimal("budget"),
		Priority:    domain.Priority(r.int("priority")),
		OwnerID:     r.str("created_by"),
		CreatedAt:   r.time("created_at"),
		UpdatedAt:   r.time("updated_at"),
	}
	return p, r.err
}

// projectColumns holds the columns an update may rewrite.
func projectColumns(p domain.Project) datastore.Record {
	return datastore.Record{
		"name":        p.Name,
		"description": nullStr(p.Description),
		"status":      string(p.Status),
		"template_id": nullStr(p.TemplateID),
		"location":    nullStr(p.Location),
		"latitude":    nullFloat(p.Latitude),
		"longitude":   nullFloat(p.Longitude),
		"start_date":  nullTime(p.StartDate),
		"end_date":    nullTime(p.EndDate),
		"budget":      nullDecimal(p.Budget),
		"priority":    nullInt(int(p.Priority)),
		"updated_at":  p.UpdatedAt,
	}
}

// Create stores a new project, assigning its ID and timestamps.
func (r *Projects) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.ID == "" {
		p.ID = r.newID()
	}
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt

	rec := projectColumns(p)
	rec["id"] = p.ID
	rec["created_by"] = p.OwnerID
	rec["created_at"] = p.CreatedAt

	out, err := r.store.Insert(ctx, tableProjects, rec)
	if err != nil {
		return domain.Project{}, wrap("create project", err)
	}
	return projectFromRecord(out)
}

func (r *Projects) Get(ctx context.Context, id string) (domain.Project, error) {
	rec, err := r.store.First(ctx, tableProjects, datastore.Query{Filter: byID(id)})
	if err != nil {
		return domain.Project{}, wrap("get project", err)
	}
	return projectFromRecord(rec)
}

// List returns matching projects, newest first.
func (r *Projects) List(ctx context.Context, q ProjectQuery) ([]domain.Project, error) {
	recs, err := r.store.Select(ctx, tableProjects, datastore.Query{
		Filter: q.filter(),
		Order:  newestFirst(),
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, wrap("list projects", err)
	}
	return mapRows(recs, projectFromRecord)
}

// Save rewrites the mutable columns of an existing project.
func (r *Projects) Save(ctx context.Context, p domain.Project) (domain.Project, error) {
	p.UpdatedAt = r.now()
	n, err := r.store.Update(ctx, tableProjects, projectColumns(p), byID(p.ID))
	if err != nil {
		return domain.Project{}, wrap("save project", err)
	}
	if n == 0 {
		return domain.Project{}, wrap("save project", ErrNotFound)
	}
	return p, nil
}

func (r *Projects) Count(ctx context.Context, q ProjectQuery) (int, error) {
	n, err := r.store.Count(ctx, tableProjects, q.filter())
	if err != nil {
		return 0, wrap("count projects", err)
	}
	return int(n), nil
}
