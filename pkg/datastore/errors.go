package datastore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record conflicts with an existing one")
	ErrInvalid     = errors.New("invalid request")
	ErrUnavailable = errors.New("data store unavailable")

	ErrUnknownDriver            = errors.New("unknown datastore driver")
	ErrEmptyConnectionString    = errors.New("empty postgres connection string, use PG_CONN_URL env var")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
)

// Code classifies a store failure independently of the backend.
type Code string

const (
	CodeNotFound    Code = "not_found"
	CodeConflict    Code = "conflict"
	CodeInvalid     Code = "invalid"
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal"
)

// Error is the error type returned by every Store method.
type Error struct {
	Code  Code
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("datastore: %s %s: %s", e.Op, e.Table, e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrConflict:
		return e.Code == CodeConflict
	case ErrInvalid:
		return e.Code == CodeInvalid
	case ErrUnavailable:
		return e.Code == CodeUnavailable
	}
	return false
}

// CodeOf returns the code of a datastore error, or "" for any other error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func invalid(op, table string, err error) *Error {
	return &Error{Code: CodeInvalid, Op: op, Table: table, Err: err}
}

func notFound(op, table string) *Error {
	return &Error{Code: CodeNotFound, Op: op, Table: table, Err: ErrNotFound}
}

// classify wraps a driver error, asking the dialect first for constraint
// violations.
func (d *DB) classify(op, table string, err error) error {
	if err == nil {
		return nil
	}
	code := d.dialect.classify(err)
	if code == "" {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			code = CodeNotFound
		case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone),
			errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			code = CodeUnavailable
		default:
			code = CodeInternal
		}
	}
	return &Error{Code: code, Op: op, Table: table, Err: err}
}
