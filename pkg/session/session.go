package session

import (
	"context"
	"sync"

	"github.com/ngolasuite/ngola/pkg/auth"
	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/subscription"
)

// Context is the state of one signed-in user.
type Context struct {
	auth         auth.Session
	subscription *subscription.Controller

	mu      sync.RWMutex
	profile domain.Profile
}

func (c *Context) Token() string         { return c.auth.Token }
func (c *Context) UserID() string        { return c.auth.UserID }
func (c *Context) Email() string         { return c.auth.Email }
func (c *Context) Session() auth.Session { return c.auth }

// Subscription returns the controller owning the user's subscription state.
func (c *Context) Subscription() *subscription.Controller { return c.subscription }

func (c *Context) Profile() domain.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// SetProfile replaces the cached profile after it was saved.
func (c *Context) SetProfile(p domain.Profile) {
	c.mu.Lock()
	c.profile = p
	c.mu.Unlock()
}

// Plan returns the plan of the current subscription, or nil.
func (c *Context) Plan() *plans.Plan {
	return c.subscription.State().Plan
}

// HasFeature reports whether the current plan includes f.
func (c *Context) HasFeature(f plans.Feature) bool {
	return entitlement.HasFeature(c.Plan(), f)
}

// RequireFeature returns entitlement.ErrFeatureNotAvailable unless the
// current plan includes f.
func (c *Context) RequireFeature(f plans.Feature) error {
	return entitlement.RequireFeature(c.Plan(), f)
}

// Refresh re-checks the subscription with the payment provider.
func (c *Context) Refresh(ctx context.Context) error {
	return c.subscription.Refresh(ctx)
}
