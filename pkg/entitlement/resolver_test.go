package entitlement_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
)

func TestResolveEffectivePlan(t *testing.T) {
	t.Parallel()

	catalog := plans.Default()
	professional, err := catalog.Get(plans.Professional)
	require.NoError(t, err)

	t.Run("not subscribed resolves to nothing", func(t *testing.T) {
		t.Parallel()
		r := entitlement.NewResolver(catalog, entitlement.WithLogger(logger.Discard()))
		for _, p := range catalog.Plans() {
			got := r.ResolveEffectivePlan(context.Background(), entitlement.Subscription{
				Subscribed: false,
				ProductRef: p.ProductRef,
			})
			assert.Nil(t, got, p.ID)
		}
	})

	t.Run("professional product", func(t *testing.T) {
		t.Parallel()
		r := entitlement.NewResolver(catalog)
		got := r.ResolveEffectivePlan(context.Background(), entitlement.Subscription{
			Subscribed: true,
			ProductRef: professional.ProductRef,
		})
		require.NotNil(t, got)
		assert.Equal(t, plans.Professional, got.ID)
		assert.True(t, got.Limits.Chat)
		assert.False(t, got.Limits.APIAccess)
	})

	t.Run("unknown product warns and degrades", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		r := entitlement.NewResolver(catalog, entitlement.WithLogger(logger.New(logger.WithOutput(buf))))

		got := r.ResolveEffectivePlan(context.Background(), entitlement.Subscription{
			Subscribed: true,
			ProductRef: "prod_retired",
		})
		assert.Nil(t, got)
		assert.Contains(t, buf.String(), "WARN")
		assert.Contains(t, buf.String(), "prod_retired")
	})

	t.Run("nil catalog panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { entitlement.NewResolver(nil) })
	})
}

func TestIsWithinLimit(t *testing.T) {
	t.Parallel()

	catalog := plans.Default()
	basic, _ := catalog.Get(plans.Basic)
	enterprise, _ := catalog.Get(plans.Enterprise)

	tests := []struct {
		name  string
		plan  *plans.Plan
		usage int64
		field plans.Field
		want  bool
	}{
		{"unlimited projects with huge usage", &enterprise, 10_000_000, plans.FieldMaxProjects, true},
		{"unlimited members", &enterprise, 1 << 40, plans.FieldMaxTeamMembers, true},
		{"below limit", &basic, 2, plans.FieldMaxProjects, true},
		{"at limit", &basic, 3, plans.FieldMaxProjects, true},
		{"above limit", &basic, 4, plans.FieldMaxProjects, false},
		{"members above limit", &basic, 6, plans.FieldMaxTeamMembers, false},
		{"nil plan", nil, 0, plans.FieldMaxProjects, false},
		{"unknown field", &basic, 0, plans.Field("max_widgets"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, entitlement.IsWithinLimit(tt.plan, tt.usage, tt.field))
		})
	}
}

func TestHasFeature(t *testing.T) {
	t.Parallel()

	catalog := plans.Default()
	basic, _ := catalog.Get(plans.Basic)
	enterprise, _ := catalog.Get(plans.Enterprise)

	assert.False(t, entitlement.HasFeature(nil, plans.FeatureChat))
	assert.False(t, entitlement.HasFeature(&basic, plans.FeatureAdvancedReports))
	assert.True(t, entitlement.HasFeature(&enterprise, plans.FeatureAPIAccess))

	assert.ErrorIs(t, entitlement.RequireFeature(&basic, plans.FeatureVideoCalls), entitlement.ErrFeatureNotAvailable)
	assert.NoError(t, entitlement.RequireFeature(&enterprise, plans.FeatureVideoCalls))
}
