package repository

import (
	"context"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Templates reads the project templates seeded by the migrations.
type Templates struct{ base }

func templateFromRecord(rec datastore.Record) (domain.ProjectTemplate, error) {
	r := row{rec: rec}
	t := domain.ProjectTemplate{
		ID:          r.str("id"),
		Name:        r.str("name"),
		Description: r.str("description"),
		Color:       r.str("color"),
		Icon:        r.str("icon"),
		CreatedAt:   r.time("created_at"),
	}
	r.json("phases", &t.Phases)
	return t, r.err
}

// List returns all templates by name.
func (r *Templates) List(ctx context.Context) ([]domain.ProjectTemplate, error) {
	recs, err := r.store.Select(ctx, tableTemplates, datastore.Query{
		Order: []datastore.Order{{Column: "name"}},
	})
	if err != nil {
		return nil, wrap("list templates", err)
	}
	return mapRows(recs, templateFromRecord)
}

func (r *Templates) Get(ctx context.Context, id string) (domain.ProjectTemplate, error) {
	rec, err := r.store.First(ctx, tableTemplates, datastore.Query{Filter: byID(id)})
	if err != nil {
		return domain.ProjectTemplate{}, wrap("get template", err)
	}
	return templateFromRecord(rec)
}
