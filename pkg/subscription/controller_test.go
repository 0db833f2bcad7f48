package subscription_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/subscription"
)

type checkReply struct {
	status billing.Status
	err    error
}

type pendingCheck struct {
	reply chan checkReply
}

// fakeProvider answers checks immediately when auto is set, otherwise each
// check blocks until the test replies on pending.
type fakeProvider struct {
	mu      sync.Mutex
	auto    *checkReply
	checks  int
	pending chan pendingCheck

	checkoutURL string
	checkoutErr error
	checkouts   []int64
	portalURL   string
	portalErr   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		pending:     make(chan pendingCheck),
		checkoutURL: "https://pay.test/checkout",
		portalURL:   "https://pay.test/portal",
	}
}

func (f *fakeProvider) answer(status billing.Status, err error) {
	f.mu.Lock()
	f.auto = &checkReply{status: status, err: err}
	f.mu.Unlock()
}

func (f *fakeProvider) block() {
	f.mu.Lock()
	f.auto = nil
	f.mu.Unlock()
}

func (f *fakeProvider) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func (f *fakeProvider) CheckSubscriptionStatus(ctx context.Context, _ billing.Customer) (billing.Status, error) {
	f.mu.Lock()
	f.checks++
	auto := f.auto
	f.mu.Unlock()
	if auto != nil {
		return auto.status, auto.err
	}

	p := pendingCheck{reply: make(chan checkReply, 1)}
	select {
	case f.pending <- p:
	case <-ctx.Done():
		return billing.Status{}, ctx.Err()
	}
	select {
	case r := <-p.reply:
		return r.status, r.err
	case <-ctx.Done():
		return billing.Status{}, ctx.Err()
	}
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, _ billing.Customer, _ string, quantity int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, quantity)
	return f.checkoutURL, f.checkoutErr
}

func (f *fakeProvider) CreateCustomerPortalSession(context.Context, billing.Customer) (string, error) {
	return f.portalURL, f.portalErr
}

// manualScheduler runs jobs only when the test calls Tick.
type manualScheduler struct {
	mu       sync.Mutex
	next     subscription.JobID
	jobs     map[subscription.JobID]func()
	interval time.Duration
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{jobs: make(map[subscription.JobID]func())}
}

func (s *manualScheduler) Every(interval time.Duration, job func()) (subscription.JobID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.jobs[s.next] = job
	s.interval = interval
	return s.next, nil
}

func (s *manualScheduler) Remove(id subscription.JobID) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

func (s *manualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *manualScheduler) Tick() {
	s.mu.Lock()
	jobs := make([]func(), 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()
	for _, j := range jobs {
		j()
	}
}

var customer = billing.Customer{ID: "user-1", Email: "ana@ngola.ao"}

func plan(t *testing.T, id plans.ID) plans.Plan {
	t.Helper()
	p, err := plans.Default().Get(id)
	require.NoError(t, err)
	return p
}

func subscribedTo(t *testing.T, id plans.ID) billing.Status {
	end := time.Date(2026, 11, 16, 0, 0, 0, 0, time.UTC)
	return billing.Status{Subscribed: true, ProductRef: plan(t, id).ProductRef, SubscriptionEnd: &end}
}

func newController(t *testing.T, p billing.Provider, opts ...subscription.Option) (*subscription.Controller, *manualScheduler) {
	t.Helper()
	sched := newManualScheduler()
	resolver := entitlement.NewResolver(plans.Default(), entitlement.WithLogger(logger.Discard()))
	opts = append([]subscription.Option{
		subscription.WithScheduler(sched),
		subscription.WithLogger(logger.Discard()),
	}, opts...)
	c := subscription.NewController(p, resolver, opts...)
	t.Cleanup(c.Close)
	return c, sched
}

func TestNewController_Panics(t *testing.T) {
	t.Parallel()

	resolver := entitlement.NewResolver(plans.Default())
	assert.Panics(t, func() { subscription.NewController(nil, resolver) })
	assert.Panics(t, func() { subscription.NewController(newFakeProvider(), nil) })
}

func TestController_StartSubscribed(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(subscribedTo(t, plans.Professional), nil)
	c, sched := newController(t, p, subscription.WithRefreshInterval(30*time.Second))

	assert.Equal(t, subscription.PhaseUninitialized, c.Phase())
	require.NoError(t, c.Start(context.Background(), customer))

	st := c.State()
	assert.Equal(t, subscription.PhaseSubscribed, st.Phase)
	assert.True(t, st.Subscribed)
	require.NotNil(t, st.Plan)
	assert.Equal(t, plans.Professional, st.Plan.ID)
	assert.True(t, entitlement.HasFeature(st.Plan, plans.FeatureChat))
	assert.False(t, entitlement.HasFeature(st.Plan, plans.FeatureAPIAccess))
	require.NotNil(t, st.End)
	assert.NoError(t, st.Err)
	assert.True(t, c.Active())

	assert.Equal(t, 1, sched.Len())
	assert.Equal(t, 30*time.Second, sched.interval)

	assert.ErrorIs(t, c.Start(context.Background(), customer), subscription.ErrAlreadyStarted)
}

func TestController_StartUnsubscribed(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(billing.Status{Subscribed: false, ProductRef: plan(t, plans.Basic).ProductRef}, nil)
	c, _ := newController(t, p)

	require.NoError(t, c.Start(context.Background(), customer))

	st := c.State()
	assert.Equal(t, subscription.PhaseUnsubscribed, st.Phase)
	assert.False(t, st.Subscribed)
	assert.Nil(t, st.Plan, "unsubscribed never resolves a plan")
	assert.Empty(t, st.ProductRef)
}

func TestController_UnknownProductDegradesToNoPlan(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(billing.Status{Subscribed: true, ProductRef: "prod_retired"}, nil)
	c, _ := newController(t, p)

	require.NoError(t, c.Start(context.Background(), customer))

	st := c.State()
	assert.Equal(t, subscription.PhaseSubscribed, st.Phase)
	assert.Nil(t, st.Plan)
}

func TestController_FailureKeepsLastKnownState(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(subscribedTo(t, plans.Basic), nil)
	c, _ := newController(t, p)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, customer))

	boom := errors.New("edge function unavailable")
	p.answer(billing.Status{}, boom)
	err := c.Refresh(ctx)
	require.ErrorIs(t, err, subscription.ErrCheckFailed)
	require.ErrorIs(t, err, boom)

	st := c.State()
	assert.Equal(t, subscription.PhaseSubscribed, st.Phase)
	assert.True(t, st.Subscribed)
	require.NotNil(t, st.Plan)
	assert.Equal(t, plans.Basic, st.Plan.ID)
	assert.ErrorIs(t, st.Err, boom)

	// The next successful check clears the error.
	p.answer(subscribedTo(t, plans.Basic), nil)
	require.NoError(t, c.Refresh(ctx))
	assert.NoError(t, c.State().Err)
}

func TestController_FirstCheckFailure(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	boom := errors.New("timeout")
	p.answer(billing.Status{}, boom)
	c, sched := newController(t, p)

	err := c.Start(context.Background(), customer)
	require.ErrorIs(t, err, boom)

	st := c.State()
	assert.Equal(t, subscription.PhaseUnsubscribed, st.Phase)
	assert.False(t, st.Subscribed)
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, 1, sched.Len(), "the next tick retries")

	p.answer(subscribedTo(t, plans.Enterprise), nil)
	sched.Tick()
	assert.Equal(t, subscription.PhaseSubscribed, c.State().Phase)
}

func TestController_TimerRefresh(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(billing.Status{}, nil)
	c, sched := newController(t, p)

	require.NoError(t, c.Start(context.Background(), customer))
	assert.Equal(t, subscription.PhaseUnsubscribed, c.Phase())

	p.answer(subscribedTo(t, plans.Professional), nil)
	sched.Tick()

	st := c.State()
	assert.Equal(t, subscription.PhaseSubscribed, st.Phase)
	assert.Equal(t, plans.Professional, st.Plan.ID)
	assert.Equal(t, 2, p.checkCount())
}

func TestController_SignOutStopsTimer(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(subscribedTo(t, plans.Professional), nil)
	c, sched := newController(t, p)

	require.NoError(t, c.Start(context.Background(), customer))
	require.Equal(t, 1, sched.Len())

	c.SignOut()

	st := c.State()
	assert.Equal(t, subscription.PhaseUnsubscribed, st.Phase)
	assert.False(t, st.Subscribed)
	assert.Nil(t, st.Plan)
	assert.Nil(t, st.End)
	assert.NoError(t, st.Err)
	assert.False(t, c.Active())
	assert.Equal(t, 0, sched.Len())

	checks := p.checkCount()
	sched.Tick()
	assert.Equal(t, checks, p.checkCount(), "no timer-driven refresh after sign-out")
	assert.ErrorIs(t, c.Refresh(context.Background()), subscription.ErrNoSession)

	// A new session can start after sign-out.
	require.NoError(t, c.Start(context.Background(), customer))
	assert.Equal(t, subscription.PhaseSubscribed, c.Phase())
}

func TestController_SignOutDropsInFlightCheck(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(billing.Status{}, nil)
	c, _ := newController(t, p, subscription.WithStaleDiscard(false))
	ctx := context.Background()
	require.NoError(t, c.Start(ctx, customer))

	p.block()
	errs := make(chan error, 1)
	go func() { errs <- c.Refresh(ctx) }()
	pending := <-p.pending

	c.SignOut()
	pending.reply <- checkReply{status: subscribedTo(t, plans.Enterprise)}

	assert.ErrorIs(t, <-errs, subscription.ErrSignedOut)
	st := c.State()
	assert.Equal(t, subscription.PhaseUnsubscribed, st.Phase)
	assert.Nil(t, st.Plan)
}

// Two manual refreshes overlap and the second request's response arrives
// first. Without sequencing the slower, older answer overwrites the newer
// one; with sequencing it is discarded.
func TestController_OutOfOrderRefresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		staleDiscard bool
		want         plans.ID
	}{
		{"unsequenced last completed wins", false, plans.Basic},
		{"sequenced newest request wins", true, plans.Professional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newFakeProvider()
			p.answer(billing.Status{}, nil)
			c, _ := newController(t, p, subscription.WithStaleDiscard(tt.staleDiscard))
			ctx := context.Background()
			require.NoError(t, c.Start(ctx, customer))

			p.block()
			errs := make(chan error, 2)

			go func() { errs <- c.Refresh(ctx) }()
			older := <-p.pending
			go func() { errs <- c.Refresh(ctx) }()
			newer := <-p.pending

			newer.reply <- checkReply{status: subscribedTo(t, plans.Professional)}
			require.NoError(t, <-errs)
			older.reply <- checkReply{status: subscribedTo(t, plans.Basic)}
			require.NoError(t, <-errs)

			st := c.State()
			require.NotNil(t, st.Plan)
			assert.Equal(t, tt.want, st.Plan.ID)
			assert.Equal(t, subscription.PhaseSubscribed, st.Phase)
		})
	}
}

func TestController_Subscribe(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(subscribedTo(t, plans.Basic), nil)
	c, _ := newController(t, p)

	var (
		mu     sync.Mutex
		phases []subscription.Phase
	)
	c.Subscribe(func(s subscription.State) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	})

	require.NoError(t, c.Start(context.Background(), customer))
	c.SignOut()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []subscription.Phase{
		subscription.PhaseLoading,
		subscription.PhaseSubscribed,
		subscription.PhaseUnsubscribed,
	}, phases)
}

func TestController_StateIsACopy(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.answer(subscribedTo(t, plans.Basic), nil)
	c, _ := newController(t, p)
	require.NoError(t, c.Start(context.Background(), customer))

	st := c.State()
	st.Plan.Features[0] = "mutated"
	st.Plan.Name = "mutated"

	again := c.State()
	assert.NotEqual(t, "mutated", again.Plan.Features[0])
	assert.NotEqual(t, "mutated", again.Plan.Name)
}

func TestController_CreateCheckout(t *testing.T) {
	t.Parallel()

	basic := plan(t, plans.Basic)
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		t.Parallel()
		c, _ := newController(t, newFakeProvider())
		_, err := c.CreateCheckout(ctx, basic.PriceRef, 1)
		assert.ErrorIs(t, err, subscription.ErrNoSession)
	})

	t.Run("opens provider URL", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		p.answer(billing.Status{}, nil)
		var opened []string
		c, _ := newController(t, p, subscription.WithURLOpener(subscription.URLOpenerFunc(
			func(_ context.Context, url string) error {
				opened = append(opened, url)
				return nil
			})))
		require.NoError(t, c.Start(ctx, customer))

		url, err := c.CreateCheckout(ctx, basic.PriceRef, 5)
		require.NoError(t, err)
		assert.Equal(t, "https://pay.test/checkout", url)
		assert.Equal(t, []string{url}, opened)
		assert.Equal(t, []int64{5}, p.checkouts)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		p.answer(billing.Status{}, nil)
		c, _ := newController(t, p)
		require.NoError(t, c.Start(ctx, customer))

		_, err := c.CreateCheckout(ctx, basic.PriceRef, 0)
		assert.ErrorIs(t, err, subscription.ErrInvalidQuantity)

		_, err = c.CreateCheckout(ctx, "price_unknown", 1)
		assert.ErrorIs(t, err, subscription.ErrUnknownPriceRef)
		assert.ErrorIs(t, err, plans.ErrPlanNotFound)

		assert.Empty(t, p.checkouts)
	})

	t.Run("provider failure is not retried", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		p.answer(billing.Status{}, nil)
		p.checkoutErr = billing.ErrCheckoutFailed
		opened := 0
		c, _ := newController(t, p, subscription.WithURLOpener(subscription.URLOpenerFunc(
			func(context.Context, string) error {
				opened++
				return nil
			})))
		require.NoError(t, c.Start(ctx, customer))

		_, err := c.CreateCheckout(ctx, basic.PriceRef, 1)
		assert.ErrorIs(t, err, subscription.ErrCheckoutFailed)
		assert.Len(t, p.checkouts, 1)
		assert.Zero(t, opened)
	})
}

func TestController_OpenCustomerPortal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	p := newFakeProvider()
	p.answer(subscribedTo(t, plans.Basic), nil)
	var opened string
	c, _ := newController(t, p, subscription.WithURLOpener(subscription.URLOpenerFunc(
		func(_ context.Context, url string) error {
			opened = url
			return nil
		})))

	_, err := c.OpenCustomerPortal(ctx)
	assert.ErrorIs(t, err, subscription.ErrNoSession)

	require.NoError(t, c.Start(ctx, customer))
	url, err := c.OpenCustomerPortal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/portal", opened)
	assert.Equal(t, opened, url)

	p.portalErr = billing.ErrCustomerNotFound
	_, err = c.OpenCustomerPortal(ctx)
	assert.ErrorIs(t, err, subscription.ErrPortalFailed)
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestCronScheduler(t *testing.T) {
	t.Parallel()

	s := subscription.NewCronScheduler()
	t.Cleanup(s.Stop)

	_, err := s.Every(0, func() {})
	assert.ErrorIs(t, err, subscription.ErrInvalidInterval)

	var (
		mu    sync.Mutex
		ticks int
	)
	id, err := s.Every(500*time.Millisecond, func() {
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks > 0
	}, 3*time.Second, 50*time.Millisecond)

	s.Remove(id)
	mu.Lock()
	after := ticks
	mu.Unlock()
	time.Sleep(1200 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, ticks)
	mu.Unlock()
}
