package plans

import (
	"errors"
	"fmt"
	"slices"
)

// Catalog is an ordered, read-only set of plans.
type Catalog struct {
	plans []Plan
}

// NewCatalog validates plans and returns a catalog preserving their order.
// Duplicate identifiers or provider references, more than one popular plan,
// and negative finite limits are configuration errors.
func NewCatalog(plans ...Plan) (*Catalog, error) {
	if err := validate(plans); err != nil {
		return nil, err
	}
	cloned := make([]Plan, len(plans))
	for i, p := range plans {
		cloned[i] = clonePlan(p)
	}
	return &Catalog{plans: cloned}, nil
}

// MustCatalog is like NewCatalog but panics on a misconfigured catalog.
func MustCatalog(plans ...Plan) *Catalog {
	c, err := NewCatalog(plans...)
	if err != nil {
		panic(err)
	}
	return c
}

// Plans returns the plans in catalog order.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	for i, p := range c.plans {
		out[i] = clonePlan(p)
	}
	return out
}

// Len returns the number of plans.
func (c *Catalog) Len() int { return len(c.plans) }

// Get returns the plan with the given identifier.
func (c *Catalog) Get(id ID) (Plan, error) {
	return c.find(func(p Plan) bool { return p.ID == id })
}

// LookupByProductRef returns the plan whose product reference equals ref.
func (c *Catalog) LookupByProductRef(ref string) (Plan, error) {
	if ref == "" {
		return Plan{}, ErrPlanNotFound
	}
	return c.find(func(p Plan) bool { return p.ProductRef == ref })
}

// LookupByPriceRef returns the plan whose price reference equals ref.
func (c *Catalog) LookupByPriceRef(ref string) (Plan, error) {
	if ref == "" {
		return Plan{}, ErrPlanNotFound
	}
	return c.find(func(p Plan) bool { return p.PriceRef == ref })
}

// Popular returns the plan flagged for emphasis, if any.
func (c *Catalog) Popular() (Plan, bool) {
	p, err := c.find(func(p Plan) bool { return p.Popular })
	return p, err == nil
}

func (c *Catalog) find(match func(Plan) bool) (Plan, error) {
	i := slices.IndexFunc(c.plans, match)
	if i < 0 {
		return Plan{}, ErrPlanNotFound
	}
	return clonePlan(c.plans[i]), nil
}

func clonePlan(p Plan) Plan {
	p.Features = slices.Clone(p.Features)
	return p
}

func validate(plans []Plan) error {
	if len(plans) == 0 {
		return fmt.Errorf("%w: no plans defined", ErrInvalidCatalog)
	}

	var errs []error
	ids := make(map[ID]struct{}, len(plans))
	priceRefs := make(map[string]ID, len(plans))
	productRefs := make(map[string]ID, len(plans))
	popular := 0

	for _, p := range plans {
		if !p.ID.Valid() {
			errs = append(errs, fmt.Errorf("unknown plan id %q", p.ID))
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate plan id %q", p.ID))
		}
		ids[p.ID] = struct{}{}

		if p.Name == "" {
			errs = append(errs, fmt.Errorf("plan %q: name is required", p.ID))
		}
		if !p.Price.ContactUs && p.Price.Amount.IsNegative() {
			errs = append(errs, fmt.Errorf("plan %q: negative price", p.ID))
		}

		if p.PriceRef != "" {
			if other, dup := priceRefs[p.PriceRef]; dup {
				errs = append(errs, fmt.Errorf("plans %q and %q share price ref %q", other, p.ID, p.PriceRef))
			}
			priceRefs[p.PriceRef] = p.ID
		}
		if p.ProductRef != "" {
			if other, dup := productRefs[p.ProductRef]; dup {
				errs = append(errs, fmt.Errorf("plans %q and %q share product ref %q", other, p.ID, p.ProductRef))
			}
			productRefs[p.ProductRef] = p.ID
		}

		for _, f := range []Field{FieldMaxProjects, FieldMaxTeamMembers} {
			l, _ := p.Limits.Get(f)
			if l < 0 && !l.IsUnlimited() {
				errs = append(errs, fmt.Errorf("plan %q: %s must be non-negative or unlimited, got %d", p.ID, f, l))
			}
		}

		if p.Popular {
			popular++
		}
	}

	if popular > 1 {
		errs = append(errs, fmt.Errorf("%d plans marked popular, at most one allowed", popular))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidCatalog}, errs...)...)
	}
	return nil
}
