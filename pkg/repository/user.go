package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ngolasuite/ngola/pkg/auth"
	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
)

// Users stores local accounts for auth.Service.
type Users struct{ base }

var _ auth.UserStore = (*Users)(nil)

func userFromRecord(rec datastore.Record) (*auth.User, error) {
	r := row{rec: rec}
	u := &auth.User{
		ID:           r.str("id"),
		Email:        r.str("email"),
		PasswordHash: r.bytes("password_hash"),
		CreatedAt:    r.time("created_at"),
		UpdatedAt:    r.time("updated_at"),
	}
	return u, r.err
}

func (r *Users) CreateUser(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = r.newID()
	}
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt

	_, err := r.store.Insert(ctx, tableUsers, datastore.Record{
		"id":            u.ID,
		"email":         domain.NormalizeEmail(u.Email),
		"password_hash": string(u.PasswordHash),
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	})
	if errors.Is(err, datastore.ErrConflict) {
		return errors.Join(auth.ErrEmailAlreadyExists, err)
	}
	return wrap("create user", err)
}

func (r *Users) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return r.first(ctx, datastore.Where("id", id))
}

func (r *Users) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.first(ctx, datastore.Where("email", domain.NormalizeEmail(email)))
}

func (r *Users) first(ctx context.Context, f datastore.Filter) (*auth.User, error) {
	rec, err := r.store.First(ctx, tableUsers, datastore.Query{Filter: f})
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, wrap("get user", err)
	}
	return userFromRecord(rec)
}

func (r *Users) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	n, err := r.store.Update(ctx, tableUsers, datastore.Record{
		"password_hash": string(hash),
		"updated_at":    r.now(),
	}, byID(id))
	if err != nil {
		return wrap("update password", err)
	}
	if n == 0 {
		return fmt.Errorf("update password: %w", auth.ErrUserNotFound)
	}
	return nil
}
