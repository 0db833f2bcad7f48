package entitlement

import (
	"context"
	"log/slog"

	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
)

// Subscription is the part of a subscription record the resolver needs.
type Subscription struct {
	Subscribed bool
	ProductRef string
}

// Resolver maps subscription records to catalog plans.
type Resolver struct {
	catalog *plans.Catalog
	logger  *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for consistency warnings.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver panics on a nil catalog.
func NewResolver(catalog *plans.Catalog, opts ...ResolverOption) *Resolver {
	if catalog == nil {
		panic("entitlement: plan catalog is required")
	}
	r := &Resolver{catalog: catalog, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog plans are resolved against.
func (r *Resolver) Catalog() *plans.Catalog { return r.catalog }

// ResolveEffectivePlan returns the plan the subscription entitles its owner to,
// or nil. An inactive subscription never resolves to a plan, whatever product
// reference it carries. An active subscription with a product reference the
// catalog does not know is logged and treated as having no plan.
func (r *Resolver) ResolveEffectivePlan(ctx context.Context, sub Subscription) *plans.Plan {
	if !sub.Subscribed {
		return nil
	}

	p, err := r.catalog.LookupByProductRef(sub.ProductRef)
	if err != nil {
		r.logger.WarnContext(ctx, "active subscription references unknown product",
			logger.Component("entitlement"),
			logger.ProductRef(sub.ProductRef),
			logger.Error(err),
		)
		return nil
	}
	return &p
}

// IsWithinLimit reports whether usage fits the plan's limit for field.
// Unlimited always fits. A nil plan or unknown field never fits.
func IsWithinLimit(plan *plans.Plan, usage int64, field plans.Field) bool {
	if plan == nil {
		return false
	}
	limit, ok := plan.Limits.Get(field)
	if !ok {
		return false
	}
	if limit.IsUnlimited() {
		return true
	}
	return usage <= int64(limit)
}

// HasFeature reports whether plan enables f. It fails closed: a nil plan has
// no features.
func HasFeature(plan *plans.Plan, f plans.Feature) bool {
	return plan != nil && plan.Limits.Has(f)
}

// RequireFeature is HasFeature returning ErrFeatureNotAvailable.
func RequireFeature(plan *plans.Plan, f plans.Feature) error {
	if !HasFeature(plan, f) {
		return ErrFeatureNotAvailable
	}
	return nil
}
