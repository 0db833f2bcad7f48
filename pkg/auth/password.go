package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/token"
	"github.com/ngolasuite/ngola/pkg/validator"
)

// ResetTokenParam is the query parameter carrying the reset token.
const ResetTokenParam = "token"

// resetClaims is the payload of a password reset token. Stamp fingerprints
// the password hash at issue time, so a token is spent once the password
// changes.
type resetClaims struct {
	token.Claims
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Stamp  string `json:"stamp"`
}

func passwordStamp(hash []byte) string {
	sum := sha256.Sum256(hash)
	return hex.EncodeToString(sum[:8])
}

// ResetPasswordForEmail sends a reset link pointing at redirectTo. It
// succeeds for unknown emails too so callers cannot probe for accounts.
func (s *Service) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	email = domain.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.Email("email", email),
	); err != nil {
		return err
	}
	target, err := url.Parse(redirectTo)
	if err != nil || redirectTo == "" {
		return errors.Join(ErrTokenInvalid, fmt.Errorf("bad redirect target %q", redirectTo))
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		s.logger.DebugContext(ctx, "password reset for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	claims := resetClaims{
		Claims: token.Claims{
			Subject:   SubjectPasswordReset,
			ExpiresAt: s.now().Add(s.resetTokenTTL).Unix(),
		},
		UserID: user.ID,
		Email:  user.Email,
		Stamp:  passwordStamp(user.PasswordHash),
	}
	tok, err := token.Sign(claims, s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign reset token: %w", err)
	}

	q := target.Query()
	q.Set(ResetTokenParam, tok)
	target.RawQuery = q.Encode()
	link := target.String()

	if s.mailer == nil {
		s.logger.WarnContext(ctx, "no reset mailer configured",
			logger.UserID(user.ID),
			logger.Event("password_reset.link"),
		)
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	s.logger.InfoContext(ctx, "password reset requested", logger.UserID(user.ID))
	return nil
}

// UpdatePassword sets a new password using a reset token and revokes every
// session of the user.
func (s *Service) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := token.Parse[resetClaims](resetToken, s.secret)
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case err != nil:
		return errors.Join(ErrTokenInvalid, err)
	case claims.Subject != SubjectPasswordReset || claims.Claims.Expired(s.now()):
		return ErrTokenInvalid
	}

	if err := s.checkPassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return ErrTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if passwordStamp(user.PasswordHash) != claims.Stamp {
		return ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}
	if err := s.sessions.DeleteUser(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions after password change",
			logger.UserID(user.ID),
			logger.Error(err),
		)
	}
	s.logger.InfoContext(ctx, "password updated", logger.UserID(user.ID))
	return nil
}
