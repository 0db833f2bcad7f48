package datastore

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/ngolasuite/ngola/pkg/logger"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies the embedded migrations for the DB's dialect.
func (d *DB) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations/"+d.dialect.name)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	p, err := goose.NewProvider(d.dialect.goose, d.db, fsys)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := p.Up(ctx)
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		attrs := []any{
			slog.Int64("version", r.Source.Version),
			slog.String("source", r.Source.Path),
			logger.Duration(r.Duration),
		}
		if r.Error != nil {
			d.logger.ErrorContext(ctx, "migration failed", append(attrs, logger.Error(r.Error))...)
			continue
		}
		d.logger.InfoContext(ctx, "migration applied", attrs...)
	}
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// Version returns the current schema version.
func (d *DB) Version(ctx context.Context) (int64, error) {
	fsys, err := fs.Sub(migrations, "migrations/"+d.dialect.name)
	if err != nil {
		return 0, err
	}
	p, err := goose.NewProvider(d.dialect.goose, d.db, fsys)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
