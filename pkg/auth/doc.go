// Package auth implements local email and password authentication.
//
// Service covers the account lifecycle used by the application: SignUp,
// SignIn, SignOut, CurrentSession, ResetPasswordForEmail and UpdatePassword.
// Passwords are hashed with bcrypt. Sessions are opaque random tokens kept in
// a SessionStore; MemorySessionStore serves single-process deployments and
// tests, RedisSessionStore shares sessions between processes. Password reset
// links carry a signed token (see pkg/token) that stops working once the
// password changes.
//
//	svc, err := auth.NewService(cfg, users, auth.NewRedisSessionStore(client, "ngola:"),
//		auth.WithResetMailer(mailer),
//		auth.WithAfterSignUp(createProfile),
//	)
//	sess, err := svc.SignIn(ctx, "ana@example.ao", "Segredo123")
package auth
