package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/validator"
)

// AfterSignUpFunc runs once a new account is stored, e.g. to create its
// profile. A failing hook is logged and does not undo the registration.
type AfterSignUpFunc func(ctx context.Context, user *User, params SignUpParams) error

// Service authenticates users against a UserStore and keeps their sessions in
// a SessionStore.
type Service struct {
	users    UserStore
	sessions SessionStore
	mailer   ResetMailer
	logger   *slog.Logger
	now      func() time.Time

	secret        []byte
	sessionTTL    time.Duration
	resetTokenTTL time.Duration
	bcryptCost    int
	policy        validator.PasswordPolicy

	afterSignUp AfterSignUpFunc
}

type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResetMailer sets the mailer used by ResetPasswordForEmail. Without one
// the reset link is only logged.
func WithResetMailer(m ResetMailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithAfterSignUp sets a hook that runs after a successful registration.
func WithAfterSignUp(fn AfterSignUpFunc) Option {
	return func(s *Service) { s.afterSignUp = fn }
}

// WithPasswordPolicy overrides validator.DefaultPasswordPolicy.
func WithPasswordPolicy(p validator.PasswordPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithClock replaces time.Now for session and token timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService returns a Service. It fails with ErrEmptySecret when cfg has no
// token secret.
func NewService(cfg Config, users UserStore, sessions SessionStore, opts ...Option) (*Service, error) {
	if cfg.TokenSecret == "" {
		return nil, ErrEmptySecret
	}
	s := &Service{
		users:         users,
		sessions:      sessions,
		logger:        slog.Default(),
		now:           time.Now,
		secret:        []byte(cfg.TokenSecret),
		sessionTTL:    orDefault(cfg.SessionTTL, 30*24*time.Hour),
		resetTokenTTL: orDefault(cfg.ResetTokenTTL, time.Hour),
		bcryptCost:    cfg.BcryptCost,
		policy:        validator.DefaultPasswordPolicy(),
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("auth"))
	return s, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// SignUp validates the form, stores a new account and runs the after sign-up
// hook. Password rule failures are joined with ErrWeakPassword, a differing
// confirmation with ErrPasswordMismatch.
func (s *Service) SignUp(ctx context.Context, p SignUpParams) (*User, error) {
	p.Email = domain.NormalizeEmail(p.Email)

	if err := validator.Apply(
		validator.Required("email", p.Email),
		validator.Email("email", p.Email),
	); err != nil {
		return nil, err
	}
	if err := s.checkPassword(p.Password); err != nil {
		return nil, err
	}
	if err := validator.Apply(
		validator.PasswordConfirmation("password_confirmation", p.Password, p.PasswordConfirmation),
	); err != nil {
		return nil, errors.Join(ErrPasswordMismatch, err)
	}

	_, err := s.users.GetUserByEmail(ctx, p.Email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{ID: uuid.NewString(), Email: p.Email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed up", logger.UserID(user.ID))

	if s.afterSignUp != nil {
		s.runHook(ctx, user, p)
	}
	return user, nil
}

func (s *Service) runHook(ctx context.Context, user *User, p SignUpParams) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "after sign-up hook panicked",
				logger.UserID(user.ID),
				slog.Any("panic", r),
			)
		}
	}()
	if err := s.afterSignUp(ctx, user, p); err != nil {
		s.logger.ErrorContext(ctx, "after sign-up hook failed",
			logger.UserID(user.ID),
			logger.Error(err),
		)
	}
}

func (s *Service) checkPassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if err := validator.Apply(validator.Password("password", password, s.policy)...); err != nil {
		return errors.Join(ErrWeakPassword, err)
	}
	return nil
}

// SignIn checks the credentials and opens a new session. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "sign in rejected", logger.UserID(user.ID))
		return Session{}, ErrInvalidCredentials
	}

	now := s.now()
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed in", logger.UserID(user.ID))
	return sess, nil
}

// SignOut ends the session. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CurrentSession returns the live session for token or ErrSessionNotFound.
func (s *Service) CurrentSession(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionNotFound
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// User returns the account behind a session.
func (s *Service) User(ctx context.Context, id string) (*User, error) {
	return s.users.GetUserByID(ctx, id)
}
