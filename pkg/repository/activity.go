package repository

import (
	"context"
	"fmt"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Activity persists the activity log.
type Activity struct{ base }

// ActivityQuery narrows Recent. Limit defaults to 10.
type ActivityQuery struct {
	UserID    string
	ProjectID string
	Limit     int
}

func activityFromRecord(rec datastore.Record) (domain.ActivityEntry, error) {
	r := row{rec: rec}
	e := domain.ActivityEntry{
		ID:        r.str("id"),
		Action:    r.str("action"),
		UserID:    r.str("user_id"),
		ProjectID: r.str("project_id"),
		TaskID:    r.str("task_id"),
		CreatedAt: r.time("created_at"),
	}
	r.json("details", &e.Details)
	return e, r.err
}

// Append stores one entry. ID and CreatedAt are filled when zero.
func (r *Activity) Append(ctx context.Context, e domain.ActivityEntry) (domain.ActivityEntry, error) {
	if e.ID == "" {
		e.ID = r.newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	var details any
	if len(e.Details) > 0 {
		var err error
		if details, err = jsonArg(e.Details); err != nil {
			return domain.ActivityEntry{}, fmt.Errorf("append activity: %w", err)
		}
	}

	out, err := r.store.Insert(ctx, tableActivity, datastore.Record{
		"id":         e.ID,
		"action":     e.Action,
		"user_id":    nullStr(e.UserID),
		"project_id": nullStr(e.ProjectID),
		"task_id":    nullStr(e.TaskID),
		"details":    details,
		"created_at": e.CreatedAt,
	})
	if err != nil {
		return domain.ActivityEntry{}, wrap("append activity", err)
	}
	return activityFromRecord(out)
}

// Recent returns the newest entries first.
func (r *Activity) Recent(ctx context.Context, q ActivityQuery) ([]domain.ActivityEntry, error) {
	var f datastore.Filter
	if q.UserID != "" {
		f = append(f, datastore.Eq("user_id", q.UserID))
	}
	if q.ProjectID != "" {
		f = append(f, datastore.Eq("project_id", q.ProjectID))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	recs, err := r.store.Select(ctx, tableActivity, datastore.Query{
		Filter: f,
		Order:  newestFirst(),
		Limit:  limit,
	})
	if err != nil {
		return nil, wrap("recent activity", err)
	}
	return mapRows(recs, activityFromRecord)
}
