package ngola

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/ngolasuite/ngola/pkg/activity"
	"github.com/ngolasuite/ngola/pkg/auth"
	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/config"
	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/diagnostics"
	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/email"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/httpserver"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/redis"
	"github.com/ngolasuite/ngola/pkg/repository"
	"github.com/ngolasuite/ngola/pkg/search"
	"github.com/ngolasuite/ngola/pkg/session"
	"github.com/ngolasuite/ngola/pkg/subscription"
	"github.com/ngolasuite/ngola/svc/workspace"
)

// App holds every long-lived component of the process.
type App struct {
	Config    Config
	Logger    *slog.Logger
	DB        *datastore.DB
	Repos     *repository.Repositories
	Catalog   *plans.Catalog
	Resolver  *entitlement.Resolver
	Auth      *auth.Service
	Sessions  *session.Manager
	Billing   billing.Provider
	Activity  *activity.Recorder
	Search    search.Index
	Workspace *workspace.Service

	// Webhooks is nil unless the provider delivers webhooks.
	Webhooks *billing.WebhookHandler

	scheduler *subscription.CronScheduler
	probes    map[string]diagnostics.Probe
	closers   []func() error
}

// Option configures New.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	catalog  *plans.Catalog
	provider billing.Provider
	opener   subscription.URLOpener
	mailer   auth.ResetMailer
}

// WithLogger replaces the environment based default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCatalog replaces the built-in plan catalog.
func WithCatalog(c *plans.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithBillingProvider skips provider construction from the configuration.
func WithBillingProvider(p billing.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithURLOpener sets where checkout and portal URLs are handed to.
func WithURLOpener(op subscription.URLOpener) Option {
	return func(o *options) { o.opener = op }
}

// WithResetMailer replaces the email based password reset mailer.
func WithResetMailer(m auth.ResetMailer) Option {
	return func(o *options) { o.mailer = m }
}

// New opens every backend named in cfg and builds the services. On failure
// whatever was already opened is closed again.
func New(ctx context.Context, cfg Config, opts ...Option) (_ *App, err error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = logger.New(
			logger.WithEnvironment(cfg.Environment, cfg.AppName),
			logger.WithContextExtractors(httpserver.RequestIDExtractor()),
		)
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		Catalog: o.catalog,
		probes:  make(map[string]diagnostics.Probe),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()
	if a.Catalog == nil {
		a.Catalog = plans.Default()
	}

	if a.DB, err = datastore.Open(ctx, cfg.Datastore, datastore.WithLogger(log)); err != nil {
		return nil, err
	}
	a.onClose(a.DB.Close)
	a.probes["database"] = datastore.Healthcheck(a.DB)
	a.Repos = repository.New(a.DB)
	a.Resolver = entitlement.NewResolver(a.Catalog, entitlement.WithLogger(log))

	if err = a.initAuth(ctx, o); err != nil {
		return nil, err
	}
	if err = a.initBilling(o); err != nil {
		return nil, err
	}
	a.initSessions(o)
	if err = a.initActivity(ctx); err != nil {
		return nil, err
	}
	if err = a.initSearch(ctx); err != nil {
		return nil, err
	}

	a.Workspace = workspace.NewService(a.Repos,
		workspace.WithLogger(log),
		workspace.WithActivity(a.Activity),
		workspace.WithIndex(a.Search),
	)

	log.InfoContext(ctx, "application ready",
		slog.String("datastore", a.DB.Dialect()),
		logger.Provider(cfg.BillingProvider),
		slog.Any("probes", slices.Sorted(maps.Keys(a.probes))),
	)
	return a, nil
}

func (a *App) initAuth(ctx context.Context, o options) error {
	cfg := a.Config.Auth
	if cfg.TokenSecret == "" {
		if a.Config.Environment == logger.EnvProduction {
			return ErrMissingSecret
		}
		cfg.TokenSecret = randomSecret()
		a.Logger.WarnContext(ctx, "AUTH_TOKEN_SECRET not set, reset links will not survive a restart")
	}

	var sessions auth.SessionStore
	if a.Config.Redis.Enabled() {
		client, err := redis.Connect(ctx, a.Config.Redis)
		if err != nil {
			return err
		}
		a.onClose(client.Close)
		a.probes["redis"] = redis.Healthcheck(client)
		sessions = auth.NewRedisSessionStore(client, a.Config.Redis.KeyPrefix)
	} else {
		sessions = auth.NewMemorySessionStore(nil)
	}

	mailer := o.mailer
	if mailer == nil {
		sender, err := email.NewSender(a.Config.Email, a.Logger)
		if err != nil {
			return err
		}
		mailer = email.NewPasswordResetMailer(sender, a.Config.AppName)
	}

	svc, err := auth.NewService(cfg, a.Repos.Users, sessions,
		auth.WithLogger(a.Logger),
		auth.WithResetMailer(mailer),
		auth.WithAfterSignUp(a.createProfile),
	)
	if err != nil {
		return err
	}
	a.Auth = svc
	return nil
}

// createProfile stores the public profile of a new account.
func (a *App) createProfile(ctx context.Context, u *auth.User, p auth.SignUpParams) error {
	_, err := a.Repos.Profiles.Save(ctx, domain.Profile{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: strings.TrimSpace(p.DisplayName),
	})
	return err
}

func (a *App) initBilling(o options) error {
	if o.provider != nil {
		a.Billing = o.provider
		return nil
	}

	switch a.Config.BillingProvider {
	case BillingStripe:
		var cfg billing.StripeConfig
		if err := config.Load(&cfg); err != nil {
			return err
		}
		p, err := billing.NewStripeProvider(cfg, billing.WithStripeLogger(a.Logger))
		if err != nil {
			return err
		}
		a.Billing = p
	case BillingPaddle:
		var cfg billing.PaddleConfig
		if err := config.Load(&cfg); err != nil {
			return err
		}
		p, err := billing.NewPaddleProvider(cfg, a.Repos.Billing, billing.WithPaddleLogger(a.Logger))
		if err != nil {
			return err
		}
		a.Billing = p
		a.Webhooks = billing.NewWebhookHandler(p, a.Repos.Billing,
			billing.WithWebhookLogger(a.Logger),
			billing.WithEventHook(a.onBillingEvent),
		)
	default:
		return ErrUnknownBillingProvider
	}
	return nil
}

// onBillingEvent pushes subscription changes into the open sessions of the
// customer so entitlements follow without waiting for the next refresh.
func (a *App) onBillingEvent(ctx context.Context, e billing.Event) {
	if !e.IsSubscription() || e.CustomerID == "" || a.Sessions == nil {
		return
	}
	n := a.Sessions.RefreshUser(ctx, e.CustomerID)
	a.Logger.InfoContext(ctx, "subscription changed by webhook",
		logger.UserID(e.CustomerID),
		logger.Event(string(e.Type)),
		slog.Int("sessions", n),
	)
}

func (a *App) initSessions(o options) {
	subCfg := a.Config.Subscription
	if subCfg.RefreshInterval <= 0 {
		subCfg = subscription.DefaultConfig()
	}
	a.scheduler = subscription.NewCronScheduler()

	factory := func() *subscription.Controller {
		opts := []subscription.Option{
			subscription.WithConfig(subCfg),
			subscription.WithScheduler(a.scheduler),
			subscription.WithLogger(a.Logger),
		}
		if o.opener != nil {
			opts = append(opts, subscription.WithURLOpener(o.opener))
		}
		return subscription.NewController(a.Billing, a.Resolver, opts...)
	}
	a.Sessions = session.NewManager(a.Auth, a.Repos.Profiles, factory, session.WithLogger(a.Logger))
}

func (a *App) initActivity(ctx context.Context) error {
	var opts []activity.Option
	if a.Config.Mongo.Enabled() {
		client, err := activity.ConnectMongo(ctx, a.Config.Mongo)
		if err != nil {
			return err
		}
		a.onClose(func() error { return client.Disconnect(context.Background()) })
		a.probes["mongodb"] = activity.MongoHealthcheck(client)

		sink := activity.NewMongoSink(client, a.Config.Mongo)
		if err := sink.EnsureIndexes(ctx); err != nil {
			return err
		}
		opts = append(opts, activity.WithMirror(sink))
	}
	opts = append(opts, activity.WithLogger(a.Logger))
	a.Activity = activity.NewRecorder(activity.NewStoreSink(a.Repos.Activity), opts...)
	return nil
}

func (a *App) initSearch(ctx context.Context) error {
	if !a.Config.Search.Enabled() {
		a.Search = search.NewMemoryIndex()
		return nil
	}
	client, err := search.Connect(ctx, a.Config.Search)
	if err != nil {
		return err
	}
	a.probes["opensearch"] = search.Healthcheck(client)

	idx := search.NewOpenSearchIndex(client, a.Config.Search)
	if err := idx.EnsureIndex(ctx); err != nil {
		return err
	}
	a.Search = idx
	return nil
}

// ResetPassword mails a reset link pointing at the configured reset page.
func (a *App) ResetPassword(ctx context.Context, emailAddr string) error {
	target, err := url.JoinPath(a.Config.BaseURL, a.Config.ResetPath)
	if err != nil {
		return errors.Join(auth.ErrTokenInvalid, err)
	}
	return a.Auth.ResetPasswordForEmail(ctx, emailAddr, target)
}

// Diagnose checks the data store, the session behind token and every
// configured backend.
func (a *App) Diagnose(ctx context.Context, token string) diagnostics.Report {
	rep := diagnostics.Run(ctx, diagnostics.Deps{
		Store:  a.DB,
		Auth:   a.Auth,
		Probes: a.probes,
	}, token)
	rep.Log(ctx, a.Logger)
	return rep
}

// Close signs every open session out of its subscription controller and
// releases the backends in reverse opening order.
func (a *App) Close() error {
	if a.Sessions != nil {
		a.Sessions.Shutdown()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	var errs []error
	for _, fn := range slices.Backward(a.closers) {
		errs = append(errs, fn())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) { a.closers = append(a.closers, fn) }

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
