package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ngolasuite/ngola/pkg/auth"
	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/subscription"
)

// Authenticator is the part of auth.Service the manager uses.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (auth.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (auth.Session, error)
}

// ProfileStore loads profiles by user ID.
type ProfileStore interface {
	Get(ctx context.Context, id string) (domain.Profile, error)
}

// ControllerFactory builds a fresh subscription controller per session.
type ControllerFactory func() *subscription.Controller

// Manager tracks the open session contexts of this process by token.
type Manager struct {
	auth          Authenticator
	profiles      ProfileStore
	newController ControllerFactory
	logger        *slog.Logger

	mu     sync.Mutex
	open   map[string]*Context
	closed bool
	// opening counts Open calls per token that are still starting their
	// controller; revoked marks tokens closed while such a call was running.
	opening map[string]int
	revoked map[string]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager panics if any dependency is nil.
func NewManager(a Authenticator, profiles ProfileStore, newController ControllerFactory, opts ...Option) *Manager {
	if a == nil || profiles == nil || newController == nil {
		panic("session: authenticator, profile store and controller factory are required")
	}
	m := &Manager{
		auth:          a,
		profiles:      profiles,
		newController: newController,
		logger:        slog.Default(),
		open:          make(map[string]*Context),
		opening:       make(map[string]int),
		revoked:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("session"))
	return m
}

// SignIn authenticates and opens a context for the new session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Context, error) {
	sess, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sc, err := m.Open(ctx, sess)
	if err != nil {
		_ = m.auth.SignOut(ctx, sess.Token)
		return nil, err
	}
	return sc, nil
}

// Open builds the context for an authenticated session: it loads the profile
// and starts the subscription controller. A failing first subscription check
// is logged and leaves the user without a plan until the next refresh. If the
// token is signed out or closed while the controller starts, the controller is
// stopped again and Open returns ErrNotSignedIn.
func (m *Manager) Open(ctx context.Context, sess auth.Session) (*Context, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if sc, ok := m.open[sess.Token]; ok {
		m.mu.Unlock()
		return sc, nil
	}
	m.opening[sess.Token]++
	m.mu.Unlock()

	profile, err := m.profiles.Get(ctx, sess.UserID)
	if err != nil {
		m.logger.WarnContext(ctx, "profile unavailable, using account email",
			logger.UserID(sess.UserID),
			logger.Error(err),
		)
		profile = domain.Profile{ID: sess.UserID, Email: sess.Email}
	}

	sc := &Context{auth: sess, subscription: m.newController(), profile: profile}
	if err := sc.subscription.Start(ctx, billing.Customer{ID: sess.UserID, Email: sess.Email}); err != nil {
		m.logger.WarnContext(ctx, "first subscription check failed",
			logger.UserID(sess.UserID),
			logger.Error(err),
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, revoked := m.revoked[sess.Token]
	if m.opening[sess.Token]--; m.opening[sess.Token] == 0 {
		delete(m.opening, sess.Token)
		delete(m.revoked, sess.Token)
	}
	if m.closed {
		sc.subscription.Close()
		return nil, ErrClosed
	}
	if revoked {
		sc.subscription.Close()
		m.logger.InfoContext(ctx, "session closed while opening", logger.UserID(sess.UserID))
		return nil, ErrNotSignedIn
	}
	if existing, ok := m.open[sess.Token]; ok {
		sc.subscription.Close()
		return existing, nil
	}
	m.open[sess.Token] = sc
	m.logger.InfoContext(ctx, "session opened", logger.UserID(sess.UserID))
	return sc, nil
}

// Resume returns the context for token, opening it when the auth session is
// still valid but this process has not seen it yet.
func (m *Manager) Resume(ctx context.Context, token string) (*Context, error) {
	sess, err := m.auth.CurrentSession(ctx, token)
	if errors.Is(err, auth.ErrSessionNotFound) {
		m.drop(token)
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	return m.Open(ctx, sess)
}

// Get returns an already open context without touching the auth store.
func (m *Manager) Get(token string) (*Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.open[token]
	return sc, ok
}

// SignOut closes the context and ends the auth session.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	m.Close(token)
	return m.auth.SignOut(ctx, token)
}

// Close drops the context for token and stops its subscription controller.
// The auth session stays valid.
func (m *Manager) Close(token string) {
	if sc := m.drop(token); sc != nil {
		m.logger.Info("session closed", logger.UserID(sc.UserID()))
	}
}

func (m *Manager) drop(token string) *Context {
	m.mu.Lock()
	sc, ok := m.open[token]
	delete(m.open, token)
	if m.opening[token] > 0 {
		m.revoked[token] = struct{}{}
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	sc.subscription.Close()
	return sc
}

// RefreshUser re-checks the subscription of every open context of userID,
// e.g. after a billing webhook changed it. It returns how many contexts were
// refreshed successfully.
func (m *Manager) RefreshUser(ctx context.Context, userID string) int {
	m.mu.Lock()
	var targets []*Context
	for _, sc := range m.open {
		if sc.UserID() == userID {
			targets = append(targets, sc)
		}
	}
	m.mu.Unlock()

	n := 0
	for _, sc := range targets {
		if err := sc.Refresh(ctx); err != nil {
			m.logger.WarnContext(ctx, "subscription refresh failed",
				logger.UserID(userID),
				logger.Error(err),
			)
			continue
		}
		n++
	}
	return n
}

// Len returns the number of open contexts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

// Shutdown closes every context. Later calls to Open fail with ErrClosed.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	open := m.open
	m.open = make(map[string]*Context)
	m.mu.Unlock()

	for _, sc := range open {
		sc.subscription.Close()
	}
}
