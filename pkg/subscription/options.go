package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/ngolasuite/ngola/pkg/logger"
)

// Config holds lifecycle controller settings.
type Config struct {
	RefreshInterval time.Duration `env:"SUBSCRIPTION_REFRESH_INTERVAL" envDefault:"60s"`
	CheckTimeout    time.Duration `env:"SUBSCRIPTION_CHECK_TIMEOUT" envDefault:"15s"`
	// StaleDiscard drops responses older than the newest committed one.
	// Turning it off restores last-completed-wins ordering.
	StaleDiscard bool `env:"SUBSCRIPTION_STALE_DISCARD" envDefault:"true"`
}

// DefaultConfig returns the settings used when no Config is given.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: time.Minute,
		CheckTimeout:    15 * time.Second,
		StaleDiscard:    true,
	}
}

// URLOpener receives checkout and portal URLs, e.g. to open a browser tab or
// to hand the link to the client.
type URLOpener interface {
	OpenURL(ctx context.Context, url string) error
}

// URLOpenerFunc adapts a function to URLOpener.
type URLOpenerFunc func(ctx context.Context, url string) error

func (f URLOpenerFunc) OpenURL(ctx context.Context, url string) error { return f(ctx, url) }

// logOpener only logs the URL. It is the default when no opener is set.
type logOpener struct {
	logger *slog.Logger
}

func (o logOpener) OpenURL(ctx context.Context, url string) error {
	o.logger.InfoContext(ctx, "billing URL ready", slog.String("url", url))
	return nil
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithRefreshInterval sets how often the state is re-checked.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.cfg.RefreshInterval = d
	}
}

// WithStaleDiscard toggles sequence-based discarding of stale responses.
func WithStaleDiscard(on bool) Option {
	return func(c *Controller) {
		c.cfg.StaleDiscard = on
	}
}

// WithScheduler sets the scheduler for the periodic refresh. The controller
// does not stop a scheduler it did not create.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithURLOpener sets where checkout and portal URLs are sent.
func WithURLOpener(o URLOpener) Option {
	return func(c *Controller) {
		if o != nil {
			c.opener = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the clock used for CheckedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func componentLogger(l *slog.Logger) *slog.Logger {
	return l.With(logger.Component("subscription"))
}
