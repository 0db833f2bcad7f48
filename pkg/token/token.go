package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Claims are the standard fields of an expiring token.
type Claims struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

// NewClaims returns claims for subject that expire after ttl.
func NewClaims(subject string, ttl time.Duration) Claims {
	return Claims{Subject: subject, ExpiresAt: time.Now().Add(ttl).Unix()}
}

// Expired reports whether the claims are past their expiry. Zero never expires.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != 0 && now.Unix() > c.ExpiresAt
}

type expirer interface {
	Expired(now time.Time) bool
}

// Sign encodes payload as JSON and appends its signature.
func Sign[T any](payload T, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(data) + "." + enc.EncodeToString(sign(data, secret)), nil
}

// Parse verifies the signature and decodes the payload. Payloads with an
// Expired method are rejected with ErrExpired when it reports true.
func Parse[T any](tok string, secret []byte) (T, error) {
	var payload T
	if len(secret) == 0 {
		return payload, ErrEmptySecret
	}

	body, sig, ok := strings.Cut(tok, ".")
	if !ok || body == "" || sig == "" {
		return payload, ErrInvalidToken
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}
	if !hmac.Equal(mac, sign(data, secret)) {
		return payload, ErrSignatureInvalid
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}
	if e, ok := any(payload).(expirer); ok && e.Expired(time.Now()) {
		return payload, ErrExpired
	}
	return payload, nil
}

func sign(data, secret []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(data)
	return h.Sum(nil)
}
