package datastore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/logger"
)

func openStore(t *testing.T) *datastore.DB {
	t.Helper()

	db, err := datastore.Open(context.Background(), datastore.Config{
		Driver:      datastore.DriverSQLite,
		SQLitePath:  datastore.MemoryPath,
		AutoMigrate: true,
	}, datastore.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func project(id, name string, created time.Time) datastore.Record {
	return datastore.Record{
		"id":         id,
		"name":       name,
		"created_by": "owner-1",
		"created_at": created,
		"updated_at": created,
	}
}

var base = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func TestMigrateSeedsTemplates(t *testing.T) {
	t.Parallel()
	db := openStore(t)
	ctx := context.Background()

	n, err := db.Count(ctx, "project_templates", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	v, err := db.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	require.NoError(t, db.Migrate(ctx), "migrating twice is a no-op")
	assert.Equal(t, "sqlite", db.Dialect())
}

func TestInsertReturnsStoredRow(t *testing.T) {
	t.Parallel()
	db := openStore(t)
	ctx := context.Background()

	row, err := db.Insert(ctx, "projects", project("p1", "Ponte Kwanza", base))
	require.NoError(t, err)
	assert.Equal(t, "p1", row["id"])
	assert.Equal(t, "planning", row["status"], "column default filled in")
	assert.Nil(t, row["budget"])

	got, err := db.First(ctx, "projects", datastore.Query{Filter: datastore.Where("id", "p1")})
	require.NoError(t, err)
	assert.Equal(t, "Ponte Kwanza", got["name"])
	assert.Equal(t, base.Format(datastore.TimeLayout), got["created_at"])
}

func TestErrorCodes(t *testing.T) {
	t.Parallel()
	db := openStore(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, "projects", project("p1", "A", base))
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		want error
		code datastore.Code
	}{
		{
			name: "duplicate key",
			run: func() error {
				_, err := db.Insert(ctx, "projects", project("p1", "B", base))
				return err
			},
			want: datastore.ErrConflict,
			code: datastore.CodeConflict,
		},
		{
			name: "missing parent",
			run: func() error {
				_, err := db.Insert(ctx, "tasks", datastore.Record{
					"id": "t1", "title": "x", "project_id": "nope", "created_by": "u",
				})
				return err
			},
			want: datastore.ErrInvalid,
			code: datastore.CodeInvalid,
		},
		{
			name: "no rows",
			run: func() error {
				_, err := db.First(ctx, "projects", datastore.Query{Filter: datastore.Where("id", "missing")})
				return err
			},
			want: datastore.ErrNotFound,
			code: datastore.CodeNotFound,
		},
		{
			name: "update without filter",
			run: func() error {
				_, err := db.Update(ctx, "projects", datastore.Record{"name": "x"}, nil)
				return err
			},
			want: datastore.ErrInvalid,
			code: datastore.CodeInvalid,
		},
		{
			name: "delete without filter",
			run: func() error {
				_, err := db.Delete(ctx, "projects", nil)
				return err
			},
			want: datastore.ErrInvalid,
			code: datastore.CodeInvalid,
		},
		{
			name: "injected identifier",
			run: func() error {
				_, err := db.Select(ctx, "projects; drop table users", datastore.Query{})
				return err
			},
			want: datastore.ErrInvalid,
			code: datastore.CodeInvalid,
		},
		{
			name: "empty in list",
			run: func() error {
				_, err := db.Select(ctx, "projects", datastore.Query{
					Filter: datastore.Filter{{Column: "id", Op: datastore.OpIn, Value: []string{}}},
				})
				return err
			},
			want: datastore.ErrInvalid,
			code: datastore.CodeInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, datastore.CodeOf(err))

			var dsErr *datastore.Error
			require.ErrorAs(t, err, &dsErr)
			assert.NotEmpty(t, dsErr.Op)
		})
	}
}

func TestSelectFilterOrderLimit(t *testing.T) {
	t.Parallel()
	db := openStore(t)
	ctx := context.Background()

	names := []string{"Hospital Lubango", "Escola Huambo", "Estrada Benguela", "hospital Cabinda"}
	for i, n := range names {
		_, err := db.Insert(ctx, "projects", project(string(rune('a'+i)), n, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	rows, err := db.Select(ctx, "projects", datastore.Query{
		Columns: []string{"id", "name"},
		Filter:  datastore.Filter{{Column: "name", Op: datastore.OpContains, Value: "HOSPITAL"}},
		Order:   []datastore.Order{{Column: "created_at", Desc: true}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "d", rows[0]["id"])
	assert.Equal(t, "a", rows[1]["id"])
	assert.NotContains(t, rows[0], "created_by", "only requested columns")

	rows, err = db.Select(ctx, "projects", datastore.Query{
		Filter: datastore.Filter{{Column: "created_at", Op: datastore.OpGte, Value: base.Add(2 * time.Hour)}},
		Order:  []datastore.Order{{Column: "created_at"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0]["id"])

	rows, err = db.Select(ctx, "projects", datastore.Query{
		Filter: datastore.Filter{{Column: "id", Op: datastore.OpIn, Value: []string{"a", "b", "c"}}},
		Order:  []datastore.Order{{Column: "id"}},
		Offset: 1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0]["id"])

	rows, err = db.Select(ctx, "projects", datastore.Query{Order: []datastore.Order{{Column: "id"}}, Limit: 1, Offset: 3})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "d", rows[0]["id"])

	_, err = db.Select(ctx, "projects", datastore.Query{Limit: -1})
	assert.ErrorIs(t, err, datastore.ErrInvalid)
}

func TestContainsEscapesWildcards(t *testing.T) {
	t.Parallel()
	db := openStore(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, "projects", project("a", "Fase 100%", base))
	require.NoError(t, err)
	_, err = db.Insert(ctx, "projects", project("b", "Fase 1000", base))
	require.NoError(t, err)

	rows, err := db.Select(ctx, "projects", datastore.Query{
		Filter: datastore.Filter{{Column: "name", Op: datastore.OpContains, Value: "0%"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0]["id"])
}

func TestUpdateDeleteCount(t *testing.T) {
	t.Parallel()
	db := openStore(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, "projects", project("p1", "A", base))
	require.NoError(t, err)
	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := db.Insert(ctx, "tasks", datastore.Record{
			"id": id, "title": id, "project_id": "p1", "created_by": "u",
		})
		require.NoError(t, err)
	}

	n, err := db.Update(ctx, "tasks", datastore.Record{"status": "completed"},
		datastore.Filter{{Column: "id", Op: datastore.OpNeq, Value: "t3"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = db.Count(ctx, "tasks", datastore.Where("project_id", "p1", "status", "completed"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = db.Count(ctx, "tasks", datastore.Filter{{Column: "assignee_id", Op: datastore.OpIsNull, Value: true}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = db.Delete(ctx, "projects", datastore.Where("id", "p1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = db.Count(ctx, "tasks", nil)
	require.NoError(t, err)
	assert.Zero(t, n, "tasks cascade with their project")
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	db, err := datastore.OpenSQLite(context.Background(), datastore.MemoryPath)
	require.NoError(t, err)
	check := datastore.Healthcheck(db)
	require.NoError(t, check(context.Background()))

	require.NoError(t, db.Close())
	err = check(context.Background())
	assert.ErrorIs(t, err, datastore.ErrHealthcheckFailed)
	assert.ErrorIs(t, err, datastore.ErrUnavailable)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := datastore.Open(context.Background(), datastore.Config{Driver: "oracle"})
	assert.ErrorIs(t, err, datastore.ErrUnknownDriver)

	_, err = datastore.OpenPostgres(context.Background(), datastore.PostgresConfig{})
	assert.ErrorIs(t, err, datastore.ErrEmptyConnectionString)
}
