package datastore

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeLayout is how SQLite stores timestamps. It sorts lexically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type dialect struct {
	name        string
	goose       goose.Dialect
	like        string
	noLimit     string
	placeholder func(n int) string
	bind        func(v any) any
	classify    func(err error) Code
}

var postgresDialect = dialect{
	name:        "postgres",
	goose:       goose.DialectPostgres,
	like:        "ILIKE",
	noLimit:     "",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	bind:        func(v any) any { return v },
	classify:    classifyPostgres,
}

var sqliteDialect = dialect{
	name:        "sqlite",
	goose:       goose.DialectSQLite3,
	like:        "LIKE",
	noLimit:     "LIMIT -1",
	placeholder: func(int) string { return "?" },
	bind:        bindSQLite,
	classify:    classifySQLite,
}

// bindSQLite stores timestamps as fixed-width UTC text so they compare
// correctly with < and >, and JSON documents as text.
func bindSQLite(v any) any {
	switch t := v.(type) {
	case json.RawMessage:
		if t == nil {
			return nil
		}
		return string(t)
	case time.Time:
		return t.UTC().Format(TimeLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(TimeLayout)
	}
	return v
}

// Postgres SQLSTATE codes mapped to store codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

func classifyPostgres(err error) Code {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return CodeConflict
		case pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation, pgInvalidText:
			return CodeInvalid
		}
		return ""
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return CodeUnavailable
	}
	return ""
}

func classifySQLite(err error) Code {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return ""
	}
	switch sqErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return CodeConflict
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
		return CodeInvalid
	}
	switch sqErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return CodeInvalid
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
		return CodeUnavailable
	}
	return ""
}
