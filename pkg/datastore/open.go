package datastore

import (
	"context"
	"errors"
	"fmt"
)

// Open connects the backend named by cfg.Driver and, when AutoMigrate is
// set, brings the schema up to date.
func Open(ctx context.Context, cfg Config, opts ...Option) (*DB, error) {
	var (
		d   *DB
		err error
	)
	switch cfg.Driver {
	case DriverPostgres:
		d, err = OpenPostgres(ctx, cfg.Postgres, opts...)
	case DriverSQLite, "":
		d, err = OpenSQLite(ctx, cfg.SQLitePath, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := d.Migrate(ctx); err != nil {
			return nil, errors.Join(err, d.Close())
		}
	}
	return d, nil
}

// Healthcheck returns a closure suitable for health endpoints.
func Healthcheck(s Store) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := s.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
