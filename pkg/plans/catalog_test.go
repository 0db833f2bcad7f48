package plans_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/plans"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := plans.Default()
	require.Equal(t, 3, c.Len())

	all := c.Plans()
	assert.Equal(t, plans.Basic, all[0].ID)
	assert.Equal(t, plans.Professional, all[1].ID)
	assert.Equal(t, plans.Enterprise, all[2].ID)

	t.Run("basic", func(t *testing.T) {
		t.Parallel()
		p, err := c.Get(plans.Basic)
		require.NoError(t, err)
		assert.Equal(t, "Básico", p.Name)
		assert.True(t, decimal.NewFromInt(12000).Equal(p.Price.Amount))
		assert.Equal(t, "AOA", p.Price.Currency)
		assert.Equal(t, plans.Limit(3), p.Limits.MaxProjects)
		assert.Equal(t, plans.Limit(5), p.Limits.MaxTeamMembers)
		assert.False(t, p.Limits.Chat)
		assert.Len(t, p.Features, 5)
	})

	t.Run("professional", func(t *testing.T) {
		t.Parallel()
		p, err := c.Get(plans.Professional)
		require.NoError(t, err)
		assert.True(t, p.Popular)
		assert.True(t, p.Limits.MaxProjects.IsUnlimited())
		assert.Equal(t, plans.Limit(15), p.Limits.MaxTeamMembers)
		assert.True(t, p.Limits.Has(plans.FeatureChat))
		assert.True(t, p.Limits.Has(plans.FeatureVideoCalls))
		assert.False(t, p.Limits.Has(plans.FeatureAPIAccess))
	})

	t.Run("enterprise", func(t *testing.T) {
		t.Parallel()
		p, err := c.Get(plans.Enterprise)
		require.NoError(t, err)
		assert.True(t, p.Limits.MaxProjects.IsUnlimited())
		assert.True(t, p.Limits.MaxTeamMembers.IsUnlimited())
		assert.True(t, p.Limits.APIAccess)
		assert.True(t, decimal.NewFromInt(48000).Equal(p.Price.Amount))
	})

	popular, ok := c.Popular()
	require.True(t, ok)
	assert.Equal(t, plans.Professional, popular.ID)
}

func TestLookupRoundTrip(t *testing.T) {
	t.Parallel()

	c := plans.Default()
	for _, p := range c.Plans() {
		t.Run(string(p.ID), func(t *testing.T) {
			t.Parallel()

			byProduct, err := c.LookupByProductRef(p.ProductRef)
			require.NoError(t, err)
			assert.Equal(t, p, byProduct)

			byPrice, err := c.LookupByPriceRef(p.PriceRef)
			require.NoError(t, err)
			assert.Equal(t, p, byPrice)
		})
	}
}

func TestLookupNotFound(t *testing.T) {
	t.Parallel()

	c := plans.Default()

	_, err := c.LookupByProductRef("prod_unknown")
	assert.ErrorIs(t, err, plans.ErrPlanNotFound)

	_, err = c.LookupByPriceRef("")
	assert.ErrorIs(t, err, plans.ErrPlanNotFound)

	_, err = c.Get("gold")
	assert.ErrorIs(t, err, plans.ErrPlanNotFound)
}

func TestPlansReturnsCopies(t *testing.T) {
	t.Parallel()

	c := plans.Default()
	all := c.Plans()
	all[0].Features[0] = "changed"
	all[0].Name = "changed"

	p, err := c.Get(plans.Basic)
	require.NoError(t, err)
	assert.Equal(t, "Básico", p.Name)
	assert.Equal(t, "Até 3 projectos", p.Features[0])
}

func validPlan(id plans.ID, ref string) plans.Plan {
	return plans.Plan{
		ID:         id,
		Name:       string(id),
		Price:      plans.Price{Amount: decimal.NewFromInt(100), Currency: "AOA"},
		PriceRef:   "price_" + ref,
		ProductRef: "prod_" + ref,
		Limits:     plans.Limits{MaxProjects: 1, MaxTeamMembers: plans.Unlimited},
	}
}

func TestNewCatalogValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		plans []plans.Plan
	}{
		{name: "empty", plans: nil},
		{
			name:  "duplicate id",
			plans: []plans.Plan{validPlan(plans.Basic, "a"), validPlan(plans.Basic, "b")},
		},
		{
			name: "duplicate product ref",
			plans: func() []plans.Plan {
				a, b := validPlan(plans.Basic, "a"), validPlan(plans.Professional, "b")
				b.ProductRef = a.ProductRef
				return []plans.Plan{a, b}
			}(),
		},
		{
			name: "duplicate price ref",
			plans: func() []plans.Plan {
				a, b := validPlan(plans.Basic, "a"), validPlan(plans.Professional, "b")
				b.PriceRef = a.PriceRef
				return []plans.Plan{a, b}
			}(),
		},
		{
			name: "two popular plans",
			plans: func() []plans.Plan {
				a, b := validPlan(plans.Basic, "a"), validPlan(plans.Professional, "b")
				a.Popular, b.Popular = true, true
				return []plans.Plan{a, b}
			}(),
		},
		{
			name: "negative finite limit",
			plans: func() []plans.Plan {
				a := validPlan(plans.Basic, "a")
				a.Limits.MaxProjects = -5
				return []plans.Plan{a}
			}(),
		},
		{
			name:  "unknown id",
			plans: []plans.Plan{validPlan("gold", "a")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := plans.NewCatalog(tt.plans...)
			assert.ErrorIs(t, err, plans.ErrInvalidCatalog)
		})
	}
}

func TestMustCatalogPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		plans.MustCatalog(validPlan(plans.Basic, "a"), validPlan(plans.Basic, "a"))
	})
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	t.Run("unlimited keyword and contact us", func(t *testing.T) {
		t.Parallel()
		doc := `
plans:
  - id: basic
    name: Starter
    price: "500"
    currency: AOA
    product_ref: prod_a
    limits:
      max_projects: 2
      max_team_members: unlimited
  - id: enterprise
    name: Custom
    contact_us: true
    product_ref: prod_b
    limits:
      max_projects: UNLIMITED
      max_team_members: unlimited
      api_access: true
`
		c, err := plans.LoadYAML(strings.NewReader(doc))
		require.NoError(t, err)

		p, err := c.LookupByProductRef("prod_b")
		require.NoError(t, err)
		assert.True(t, p.Price.ContactUs)
		assert.True(t, p.Limits.MaxProjects.IsUnlimited())
		assert.True(t, p.Limits.APIAccess)

		basic, err := c.Get(plans.Basic)
		require.NoError(t, err)
		assert.Equal(t, plans.Limit(2), basic.Limits.MaxProjects)
		assert.True(t, basic.Limits.MaxTeamMembers.IsUnlimited())
	})

	t.Run("bad limit", func(t *testing.T) {
		t.Parallel()
		doc := `
plans:
  - id: basic
    name: Starter
    limits:
      max_projects: lots
`
		_, err := plans.LoadYAML(strings.NewReader(doc))
		assert.ErrorIs(t, err, plans.ErrFailedToLoadYAML)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := plans.LoadYAML(strings.NewReader("plans:\n  - id: basic\n    colour: red\n"))
		assert.ErrorIs(t, err, plans.ErrFailedToLoadYAML)
	})

	t.Run("invalid catalog", func(t *testing.T) {
		t.Parallel()
		doc := `
plans:
  - id: basic
    name: A
    popular: true
  - id: professional
    name: B
    popular: true
`
		_, err := plans.LoadYAML(strings.NewReader(doc))
		assert.ErrorIs(t, err, plans.ErrInvalidCatalog)
	})
}

func TestLimitString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "unlimited", plans.Unlimited.String())
	assert.Equal(t, "15", plans.Limit(15).String())
}
