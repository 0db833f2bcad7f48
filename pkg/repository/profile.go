package repository

import (
	"context"
	"errors"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Profiles persists domain.Profile. A profile shares its ID with the user.
type Profiles struct{ base }

func profileFromRecord(rec datastore.Record) (domain.Profile, error) {
	r := row{rec: rec}
	p := domain.Profile{
		ID:          r.str("id"),
		Email:       r.str("email"),
		DisplayName: r.str("display_name"),
		Phone:       r.str("phone"),
		Department:  r.str("department"),
		AvatarURL:   r.str("avatar_url"),
		CreatedAt:   r.time("created_at"),
		UpdatedAt:   r.time("updated_at"),
	}
	return p, r.err
}

func profileColumns(p domain.Profile) datastore.Record {
	return datastore.Record{
		"email":        p.Email,
		"display_name": nullStr(p.DisplayName),
		"phone":        nullStr(p.Phone),
		"department":   nullStr(p.Department),
		"avatar_url":   nullStr(p.AvatarURL),
		"updated_at":   p.UpdatedAt,
	}
}

func (r *Profiles) Get(ctx context.Context, id string) (domain.Profile, error) {
	rec, err := r.store.First(ctx, tableProfiles, datastore.Query{Filter: byID(id)})
	if err != nil {
		return domain.Profile{}, wrap("get profile", err)
	}
	return profileFromRecord(rec)
}

// Save updates the profile or creates it when it does not exist yet.
func (r *Profiles) Save(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.Email = domain.NormalizeEmail(p.Email)
	p.UpdatedAt = r.now()

	n, err := r.store.Update(ctx, tableProfiles, profileColumns(p), byID(p.ID))
	if err != nil {
		return domain.Profile{}, wrap("save profile", err)
	}
	if n > 0 {
		return r.Get(ctx, p.ID)
	}

	rec := profileColumns(p)
	rec["id"] = p.ID
	rec["created_at"] = p.UpdatedAt
	out, err := r.store.Insert(ctx, tableProfiles, rec)
	if errors.Is(err, datastore.ErrConflict) {
		// Lost a race with a concurrent insert; the row exists now.
		if _, err := r.store.Update(ctx, tableProfiles, profileColumns(p), byID(p.ID)); err != nil {
			return domain.Profile{}, wrap("save profile", err)
		}
		return r.Get(ctx, p.ID)
	}
	if err != nil {
		return domain.Profile{}, wrap("save profile", err)
	}
	return profileFromRecord(out)
}
