package entitlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/ngolasuite/ngola/pkg/plans"
)

// Counter returns the current usage of a limited resource within scope.
// Scope is whatever the limit is counted against: the owner for projects,
// the team for team members. Counters run on every create attempt, so keep
// them to a single aggregate query.
type Counter func(ctx context.Context, scope string) (int64, error)

// Usage pairs current consumption with the plan limit.
type Usage struct {
	Current int64
	Limit   plans.Limit
}

// Percentage returns usage as 0..100, or -1 for unlimited limits.
func (u Usage) Percentage() int {
	if u.Limit.IsUnlimited() {
		return -1
	}
	if u.Limit == 0 {
		return 100
	}
	return min(int(u.Current*100/int64(u.Limit)), 100)
}

// Enforcer checks plan limits against live usage counts.
type Enforcer struct {
	counters map[plans.Field]Counter
}

// EnforcerOption configures an Enforcer.
type EnforcerOption func(*Enforcer)

// WithCounter registers the usage counter for field.
// Registering twice for the same field panics.
func WithCounter(field plans.Field, fn Counter) EnforcerOption {
	return func(e *Enforcer) {
		if fn == nil {
			panic(fmt.Sprintf("entitlement: nil counter for %s", field))
		}
		if _, exists := e.counters[field]; exists {
			panic(fmt.Sprintf("entitlement: counter for %s already registered", field))
		}
		e.counters[field] = fn
	}
}

// NewEnforcer returns an Enforcer with the given counters registered.
func NewEnforcer(opts ...EnforcerOption) *Enforcer {
	e := &Enforcer{counters: make(map[plans.Field]Counter)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CanCreate returns nil when one more item fits under plan's limit for field.
func (e *Enforcer) CanCreate(ctx context.Context, plan *plans.Plan, field plans.Field, scope string) error {
	if plan == nil {
		return ErrNoActivePlan
	}
	limit, ok := plan.Limits.Get(field)
	if !ok {
		return ErrInvalidField
	}
	if limit.IsUnlimited() {
		return nil
	}

	current, err := e.count(ctx, field, scope)
	if err != nil {
		return err
	}

	if !IsWithinLimit(plan, current+1, field) {
		return ErrLimitExceeded
	}
	return nil
}

// Usage returns current usage and the limit for field.
func (e *Enforcer) Usage(ctx context.Context, plan *plans.Plan, field plans.Field, scope string) (Usage, error) {
	if plan == nil {
		return Usage{}, ErrNoActivePlan
	}
	limit, ok := plan.Limits.Get(field)
	if !ok {
		return Usage{}, ErrInvalidField
	}
	current, err := e.count(ctx, field, scope)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Current: current, Limit: limit}, nil
}

// CanDowngrade reports whether usage within scope fits the target plan.
// Only fields whose limit shrinks are counted.
func (e *Enforcer) CanDowngrade(ctx context.Context, current, target *plans.Plan, scope string) error {
	if current == nil || target == nil {
		return ErrNoActivePlan
	}

	for _, field := range []plans.Field{plans.FieldMaxProjects, plans.FieldMaxTeamMembers} {
		to, _ := target.Limits.Get(field)
		if to.IsUnlimited() {
			continue
		}
		from, _ := current.Limits.Get(field)
		if !from.IsUnlimited() && from <= to {
			continue
		}
		if _, ok := e.counters[field]; !ok {
			continue
		}
		used, err := e.count(ctx, field, scope)
		if err != nil {
			return err
		}
		if !IsWithinLimit(target, used, field) {
			return fmt.Errorf("%w: %s uses %d, target allows %s", ErrDowngradeNotPossible, field, used, to)
		}
	}
	return nil
}

func (e *Enforcer) count(ctx context.Context, field plans.Field, scope string) (int64, error) {
	counter, ok := e.counters[field]
	if !ok {
		return 0, ErrNoCounterRegistered
	}
	n, err := counter(ctx, scope)
	if err != nil {
		return 0, errors.Join(ErrFailedToCountUsage, err)
	}
	return n, nil
}
