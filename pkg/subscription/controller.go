package subscription

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/statemachine"
	"github.com/ngolasuite/ngola/pkg/viewstate"
)

type trigger string

const (
	evStart   trigger = "start"
	evChecked trigger = "checked"
	evFailed  trigger = "failed"
	evSignOut trigger = "sign_out"
)

var allPhases = []Phase{PhaseUninitialized, PhaseLoading, PhaseSubscribed, PhaseUnsubscribed}

type session struct {
	customer  billing.Customer
	ctx       context.Context
	cancel    context.CancelFunc
	job       JobID
	scheduled bool
}

// Controller owns the subscription state of one signed-in user at a time.
type Controller struct {
	provider  billing.Provider
	resolver  *entitlement.Resolver
	scheduler Scheduler
	owned     *CronScheduler
	opener    URLOpener
	cfg       Config
	now       func() time.Time
	logger    *slog.Logger

	machine *statemachine.Machine[Phase, trigger]
	state   *viewstate.Value[State]

	// lifecycle serializes Start and SignOut.
	lifecycle sync.Mutex
	mu        sync.Mutex
	sess      *session
}

// NewController creates a controller in the uninitialized phase.
// It panics if provider or resolver is nil.
func NewController(provider billing.Provider, resolver *entitlement.Resolver, opts ...Option) *Controller {
	if provider == nil {
		panic("subscription: billing provider is required")
	}
	if resolver == nil {
		panic("subscription: entitlement resolver is required")
	}

	c := &Controller{
		provider: provider,
		resolver: resolver,
		cfg:      DefaultConfig(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = componentLogger(c.logger)
	if c.cfg.RefreshInterval <= 0 {
		c.cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}
	if c.scheduler == nil {
		c.owned = NewCronScheduler()
		c.scheduler = c.owned
	}
	if c.opener == nil {
		c.opener = logOpener{logger: c.logger}
	}

	initial := State{Phase: PhaseUninitialized}
	if c.cfg.StaleDiscard {
		c.state = viewstate.New(initial)
	} else {
		c.state = viewstate.NewUnsequenced(initial)
	}
	c.machine = newMachine(c.logger)

	return c
}

func newMachine(log *slog.Logger) *statemachine.Machine[Phase, trigger] {
	subscribed := func(_ context.Context, _ Phase, _ trigger, data any) bool {
		st, ok := data.(billing.Status)
		return ok && st.Subscribed
	}
	known := []Phase{PhaseLoading, PhaseSubscribed, PhaseUnsubscribed}

	return statemachine.MustNew[Phase, trigger](PhaseUninitialized,
		statemachine.WithTransitionFromAny([]Phase{PhaseUninitialized, PhaseUnsubscribed}, PhaseLoading, evStart),
		statemachine.WithTransitionFromAny(known, PhaseSubscribed, evChecked,
			statemachine.WithGuard[Phase, trigger](subscribed)),
		statemachine.WithTransitionFromAny(known, PhaseUnsubscribed, evChecked),
		// A failed check keeps the last known answer.
		statemachine.WithTransition(PhaseSubscribed, PhaseSubscribed, evFailed),
		statemachine.WithTransitionFromAny([]Phase{PhaseLoading, PhaseUnsubscribed}, PhaseUnsubscribed, evFailed),
		statemachine.WithTransitionFromAny(allPhases, PhaseUnsubscribed, evSignOut),
		statemachine.WithObserver(func(ctx context.Context, from, to Phase, ev trigger) {
			if from != to {
				log.DebugContext(ctx, "subscription phase changed",
					slog.String("from", string(from)),
					logger.Phase(string(to)),
					logger.Event(string(ev)),
				)
			}
		}),
	)
}

// Start opens a session for customer: it enters the loading phase, runs the
// first check and schedules the periodic refresh. The returned error is the
// first check's error; the refresh is scheduled regardless.
func (c *Controller) Start(ctx context.Context, customer billing.Customer) error {
	c.lifecycle.Lock()
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		c.lifecycle.Unlock()
		return ErrAlreadyStarted
	}
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{customer: customer, ctx: sessCtx, cancel: cancel}
	c.sess = sess
	c.mu.Unlock()
	c.state.Reset(State{Phase: c.fire(ctx, evStart, nil, PhaseLoading)})
	c.lifecycle.Unlock()

	c.logger.InfoContext(ctx, "subscription session started", logger.UserID(customer.ID))

	checkErr := c.refresh(ctx, sess)
	if errors.Is(checkErr, ErrSignedOut) {
		return checkErr
	}

	id, err := c.scheduler.Every(c.cfg.RefreshInterval, func() { c.tick(sess) })
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to schedule subscription refresh", logger.Error(err))
		return errors.Join(ErrSchedulingFailed, err, checkErr)
	}

	c.mu.Lock()
	if c.sess != sess {
		c.mu.Unlock()
		c.scheduler.Remove(id)
		return ErrSignedOut
	}
	sess.job, sess.scheduled = id, true
	c.mu.Unlock()

	return checkErr
}

// Refresh checks the provider again and commits the answer unless a newer
// check has already committed.
func (c *Controller) Refresh(ctx context.Context) error {
	sess := c.session()
	if sess == nil {
		return ErrNoSession
	}
	return c.refresh(ctx, sess)
}

func (c *Controller) tick(sess *session) {
	// Errors are logged by refresh; the next tick is the retry.
	_ = c.refresh(sess.ctx, sess)
}

func (c *Controller) refresh(ctx context.Context, sess *session) error {
	seq := c.state.Begin()
	log := c.logger.With(logger.UserID(sess.customer.ID), logger.Seq(uint64(seq)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(sess.ctx, cancel)()
	if c.cfg.CheckTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, c.cfg.CheckTimeout)
		defer cancelTimeout()
	}

	status, err := c.provider.CheckSubscriptionStatus(ctx, sess.customer)
	if sess.ctx.Err() != nil {
		log.DebugContext(ctx, "subscription check dropped after sign-out")
		return ErrSignedOut
	}

	if err != nil {
		committed := c.state.Update(seq, func(prev State) State {
			if sess.ctx.Err() != nil {
				return prev
			}
			next := prev
			next.Phase = c.fire(ctx, evFailed, nil, prev.Phase)
			next.Err = err
			next.Seq = seq
			return next
		})
		log.WarnContext(ctx, "subscription check failed",
			logger.Error(err),
			slog.Bool("committed", committed),
		)
		return errors.Join(ErrCheckFailed, err)
	}

	plan := c.resolver.ResolveEffectivePlan(ctx, entitlement.Subscription{
		Subscribed: status.Subscribed,
		ProductRef: status.ProductRef,
	})

	committed := c.state.Update(seq, func(prev State) State {
		if sess.ctx.Err() != nil {
			return prev
		}
		next := State{
			Phase:      c.fire(ctx, evChecked, status, prev.Phase),
			Subscribed: status.Subscribed,
			CheckedAt:  c.now().UTC(),
			Seq:        seq,
		}
		if status.Subscribed {
			next.ProductRef = status.ProductRef
			next.Plan = plan
			next.End = status.SubscriptionEnd
		}
		return next
	})
	if !committed {
		log.DebugContext(ctx, "stale subscription check discarded")
		return nil
	}

	log.DebugContext(ctx, "subscription checked",
		slog.Bool("subscribed", status.Subscribed),
		logger.ProductRef(status.ProductRef),
	)
	return nil
}

// fire moves the phase machine and returns the new phase. An impossible
// transition is logged and fallback is returned.
func (c *Controller) fire(ctx context.Context, ev trigger, data any, fallback Phase) Phase {
	to, err := c.machine.Fire(ctx, ev, data)
	if err != nil {
		c.logger.WarnContext(ctx, "unexpected subscription phase transition",
			logger.Event(string(ev)),
			logger.Phase(string(c.machine.Current())),
			logger.Error(err),
		)
		return fallback
	}
	return to
}

// CreateCheckout asks the provider for a hosted checkout of priceRef with
// quantity seats and hands the URL to the opener. It is never retried.
func (c *Controller) CreateCheckout(ctx context.Context, priceRef string, quantity int64) (string, error) {
	sess := c.session()
	if sess == nil {
		return "", ErrNoSession
	}
	if quantity < 1 {
		return "", ErrInvalidQuantity
	}
	plan, err := c.resolver.Catalog().LookupByPriceRef(priceRef)
	if err != nil {
		return "", errors.Join(ErrUnknownPriceRef, err)
	}

	url, err := c.provider.CreateCheckoutSession(ctx, sess.customer, priceRef, quantity)
	if err != nil {
		c.logger.ErrorContext(ctx, "checkout failed",
			logger.UserID(sess.customer.ID),
			logger.PlanID(plan.ID),
			logger.Error(err),
		)
		return "", errors.Join(ErrCheckoutFailed, err)
	}

	return url, c.open(ctx, url)
}

// OpenCustomerPortal asks the provider for a portal session and hands the
// URL to the opener. It is never retried.
func (c *Controller) OpenCustomerPortal(ctx context.Context) (string, error) {
	sess := c.session()
	if sess == nil {
		return "", ErrNoSession
	}

	url, err := c.provider.CreateCustomerPortalSession(ctx, sess.customer)
	if err != nil {
		c.logger.ErrorContext(ctx, "customer portal failed",
			logger.UserID(sess.customer.ID),
			logger.Error(err),
		)
		return "", errors.Join(ErrPortalFailed, err)
	}

	return url, c.open(ctx, url)
}

func (c *Controller) open(ctx context.Context, url string) error {
	if err := c.opener.OpenURL(ctx, url); err != nil {
		c.logger.ErrorContext(ctx, "failed to open billing URL", logger.Error(err))
		return err
	}
	return nil
}

// SignOut ends the session synchronously and without network calls: the
// refresh job is removed, in-flight checks are cancelled and their answers
// dropped, and the state is reset to unsubscribed.
func (c *Controller) SignOut() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	sess := c.sess
	c.sess = nil
	var (
		job       JobID
		scheduled bool
	)
	if sess != nil {
		job, scheduled = sess.job, sess.scheduled
	}
	c.mu.Unlock()

	if sess != nil {
		sess.cancel()
		if scheduled {
			c.scheduler.Remove(job)
		}
		c.logger.Info("subscription session ended", logger.UserID(sess.customer.ID))
	}

	c.fire(context.Background(), evSignOut, nil, PhaseUnsubscribed)
	c.state.Reset(State{Phase: PhaseUnsubscribed})
}

// Close signs out and stops the scheduler if the controller created it.
func (c *Controller) Close() {
	c.SignOut()
	if c.owned != nil {
		c.owned.Stop()
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state.Get().clone()
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	return c.machine.Current()
}

// Active reports whether a session is open.
func (c *Controller) Active() bool {
	return c.session() != nil
}

// Subscribe registers fn to receive a copy of every committed state.
func (c *Controller) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	c.state.Subscribe(func(s State) { fn(s.clone()) })
}

func (c *Controller) session() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}
