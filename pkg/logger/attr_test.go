package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	first, second := errors.New("first"), errors.New("second")
	attr := logger.Errors(first, nil, second)
	require.Equal(t, "errors", attr.Key)
	group := attr.Value.Group()
	require.Len(t, group, 2)
	assert.Equal(t, "0", group[0].Key)
	assert.Equal(t, "2", group[1].Key)

	assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
}

func TestIdentifierAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		key  string
	}{
		{"user", logger.UserID("u1"), "user_id"},
		{"project", logger.ProjectID("p1"), "project_id"},
		{"task", logger.TaskID("t1"), "task_id"},
		{"team", logger.TeamID("tm1"), "team_id"},
		{"plan", logger.PlanID("basic"), "plan_id"},
		{"product", logger.ProductRef("prod_1"), "product_ref"},
		{"role", logger.Role("admin"), "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.key, tt.attr.Key)
		})
	}

	t.Run("empty values are dropped", func(t *testing.T) {
		t.Parallel()
		assert.True(t, logger.UserID(nil).Equal(slog.Attr{}))
		assert.True(t, logger.ProjectID("").Equal(slog.Attr{}))
	})
}

func TestSeq(t *testing.T) {
	t.Parallel()

	attr := logger.Seq(7)
	assert.Equal(t, "seq", attr.Key)
	assert.Equal(t, uint64(7), attr.Value.Uint64())
}
