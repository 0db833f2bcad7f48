// Package datastore is the generic row store the repositories are built on.
//
// A Store reads and writes rows of one table at a time. Rows are
// map[string]any keyed by column name, and filters are lists of column
// conditions combined with AND. Two backends share one database/sql
// implementation:
//
//   - Postgres through a pgx pool bridged with pgx/v5/stdlib.
//   - SQLite through modernc.org/sqlite, used embedded and in tests.
//
// Schema changes ship as goose migrations embedded per dialect and are
// applied with DB.Migrate.
//
// Every error returned by a Store is a *Error carrying a Code, so callers can
// branch on errors.Is(err, datastore.ErrNotFound) without knowing the backend.
package datastore
