// Package email sends transactional email.
//
// EmailSender is the transport. PostmarkSender delivers through Postmark,
// DevSender writes each message to disk as HTML plus JSON metadata, and
// LogSender only logs. NewSender picks one from Config. Message bodies are templ
// components rendered with templates.Render.
//
// PasswordResetMailer composes the reset message and satisfies
// auth.ResetMailer:
//
//	sender, err := email.NewSender(cfg, log)
//	mailer := email.NewPasswordResetMailer(sender, "Ngola Suite")
package email
