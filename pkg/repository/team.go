package repository

import (
	"context"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Teams persists teams and their members.
type Teams struct{ base }

// TeamQuery narrows List and Count.
type TeamQuery struct {
	OwnerID   string
	ProjectID string
}

func (q TeamQuery) filter() datastore.Filter {
	var f datastore.Filter
	if q.OwnerID != "" {
		f = append(f, datastore.Eq("created_by", q.OwnerID))
	}
	if q.ProjectID != "" {
		f = append(f, datastore.Eq("project_id", q.ProjectID))
	}
	return f
}

func teamFromRecord(rec datastore.Record) (domain.Team, error) {
	r := row{rec: rec}
	t := domain.Team{
		ID:          r.str("id"),
		Name:        r.str("name"),
		Description: r.str("description"),
		ProjectID:   r.str("project_id"),
		OwnerID:     r.str("created_by"),
		CreatedAt:   r.time("created_at"),
		UpdatedAt:   r.time("updated_at"),
	}
	return t, r.err
}

func teamColumns(t domain.Team) datastore.Record {
	return datastore.Record{
		"name":        t.Name,
		"description": nullStr(t.Description),
		"project_id":  nullStr(t.ProjectID),
		"updated_at":  t.UpdatedAt,
	}
}

func (r *Teams) Create(ctx context.Context, t domain.Team) (domain.Team, error) {
	if t.ID == "" {
		t.ID = r.newID()
	}
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt

	rec := teamColumns(t)
	rec["id"] = t.ID
	rec["created_by"] = t.OwnerID
	rec["created_at"] = t.CreatedAt

	out, err := r.store.Insert(ctx, tableTeams, rec)
	if err != nil {
		return domain.Team{}, wrap("create team", err)
	}
	return teamFromRecord(out)
}

func (r *Teams) Get(ctx context.Context, id string) (domain.Team, error) {
	rec, err := r.store.First(ctx, tableTeams, datastore.Query{Filter: byID(id)})
	if err != nil {
		return domain.Team{}, wrap("get team", err)
	}
	return teamFromRecord(rec)
}

func (r *Teams) List(ctx context.Context, q TeamQuery) ([]domain.Team, error) {
	recs, err := r.store.Select(ctx, tableTeams, datastore.Query{
		Filter: q.filter(),
		Order:  newestFirst(),
	})
	if err != nil {
		return nil, wrap("list teams", err)
	}
	return mapRows(recs, teamFromRecord)
}

func (r *Teams) Save(ctx context.Context, t domain.Team) (domain.Team, error) {
	t.UpdatedAt = r.now()
	n, err := r.store.Update(ctx, tableTeams, teamColumns(t), byID(t.ID))
	if err != nil {
		return domain.Team{}, wrap("save team", err)
	}
	if n == 0 {
		return domain.Team{}, wrap("save team", ErrNotFound)
	}
	return t, nil
}

func (r *Teams) Count(ctx context.Context, q TeamQuery) (int, error) {
	n, err := r.store.Count(ctx, tableTeams, q.filter())
	if err != nil {
		return 0, wrap("count teams", err)
	}
	return int(n), nil
}

func memberFromRecord(rec datastore.Record) (domain.TeamMember, error) {
	r := row{rec: rec}
	m := domain.TeamMember{
		ID:       r.str("id"),
		TeamID:   r.str("team_id"),
		Role:     domain.Role(r.str("role")),
		Name:     r.str("name"),
		Email:    r.str("email"),
		Phone:    r.str("phone"),
		Position: r.str("position"),
		UserID:   r.str("user_id"),
		JoinedAt: r.time("joined_at"),
	}
	return m, r.err
}

func memberColumns(m domain.TeamMember) datastore.Record {
	return datastore.Record{
		"role":     string(m.Role),
		"name":     nullStr(m.Name),
		"phone":    nullStr(m.Phone),
		"position": nullStr(m.Position),
	}
}

// AddMember stores a new member. A second member with the same email in one
// team is a conflict.
func (r *Teams) AddMember(ctx context.Context, m domain.TeamMember) (domain.TeamMember, error) {
	if m.ID == "" {
		m.ID = r.newID()
	}
	m.JoinedAt = r.now()

	rec := memberColumns(m)
	rec["id"] = m.ID
	rec["team_id"] = m.TeamID
	rec["email"] = nullStr(m.Email)
	rec["user_id"] = nullStr(m.UserID)
	rec["joined_at"] = m.JoinedAt

	out, err := r.store.Insert(ctx, tableMembers, rec)
	if err != nil {
		return domain.TeamMember{}, wrap("add team member", err)
	}
	return memberFromRecord(out)
}

func (r *Teams) GetMember(ctx context.Context, id string) (domain.TeamMember, error) {
	rec, err := r.store.First(ctx, tableMembers, datastore.Query{Filter: byID(id)})
	if err != nil {
		return domain.TeamMember{}, wrap("get team member", err)
	}
	return memberFromRecord(rec)
}

// Members lists the members of the given teams in joining order.
func (r *Teams) Members(ctx context.Context, teamIDs ...string) ([]domain.TeamMember, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	recs, err := r.store.Select(ctx, tableMembers, datastore.Query{
		Filter: datastore.Filter{{Column: "team_id", Op: datastore.OpIn, Value: teamIDs}},
		Order:  []datastore.Order{{Column: "joined_at"}, {Column: "id"}},
	})
	if err != nil {
		return nil, wrap("list team members", err)
	}
	return mapRows(recs, memberFromRecord)
}

func (r *Teams) CountMembers(ctx context.Context, teamIDs ...string) (int, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	n, err := r.store.Count(ctx, tableMembers,
		datastore.Filter{{Column: "team_id", Op: datastore.OpIn, Value: teamIDs}})
	if err != nil {
		return 0, wrap("count team members", err)
	}
	return int(n), nil
}

// SaveMember rewrites role, name, phone and position.
func (r *Teams) SaveMember(ctx context.Context, m domain.TeamMember) (domain.TeamMember, error) {
	n, err := r.store.Update(ctx, tableMembers, memberColumns(m), byID(m.ID))
	if err != nil {
		return domain.TeamMember{}, wrap("save team member", err)
	}
	if n == 0 {
		return domain.TeamMember{}, wrap("save team member", ErrNotFound)
	}
	return m, nil
}
