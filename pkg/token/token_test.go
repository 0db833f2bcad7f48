package token_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/token"
)

type reset struct {
	token.Claims
	UserID string `json:"uid"`
}

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestSignParse(t *testing.T) {
	t.Parallel()

	tok, err := token.Sign(reset{Claims: token.NewClaims("password_reset", time.Hour), UserID: "u1"}, secret)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(tok, "."))

	got, err := token.Parse[reset](tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "password_reset", got.Subject)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	valid, err := token.Sign(reset{Claims: token.NewClaims("s", time.Hour), UserID: "u1"}, secret)
	require.NoError(t, err)
	expired, err := token.Sign(reset{Claims: token.Claims{Subject: "s", ExpiresAt: time.Now().Add(-time.Minute).Unix()}}, secret)
	require.NoError(t, err)
	_, sig, _ := strings.Cut(valid, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"s","exp":0,"uid":"admin"}`)) + "." + sig

	tests := []struct {
		name   string
		tok    string
		secret []byte
		want   error
	}{
		{"no separator", "abc", secret, token.ErrInvalidToken},
		{"bad base64", "!!.!!", secret, token.ErrInvalidToken},
		{"other secret", valid, []byte("another-secret"), token.ErrSignatureInvalid},
		{"forged body", forged, secret, token.ErrSignatureInvalid},
		{"expired", expired, secret, token.ErrExpired},
		{"empty secret", valid, nil, token.ErrEmptySecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := token.Parse[reset](tt.tok, tt.secret)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := token.Sign(reset{}, nil)
	assert.ErrorIs(t, err, token.ErrEmptySecret)
}

func TestZeroExpiryNeverExpires(t *testing.T) {
	t.Parallel()

	assert.False(t, token.Claims{}.Expired(time.Now().Add(100*365*24*time.Hour)))
}
