// Package token signs small JSON payloads for links sent by email, such as
// password resets.
//
// A token is base64url(payload) "." base64url(HMAC-SHA256(secret, payload)).
// Payloads that embed Claims carry a subject and an expiry, and Parse rejects
// them once expired:
//
//	type reset struct {
//		token.Claims
//		UserID string `json:"uid"`
//	}
//
//	tok, err := token.Sign(reset{Claims: token.NewClaims("password_reset", time.Hour), UserID: id}, secret)
//	p, err := token.Parse[reset](tok, secret)
package token
