package email

import (
	"context"
	"fmt"

	"github.com/ngolasuite/ngola/pkg/email/templates"
)

// TagPasswordReset tags password reset messages.
const TagPasswordReset = "password-reset"

// PasswordResetMailer renders and sends password reset links.
type PasswordResetMailer struct {
	sender  EmailSender
	appName string
}

func NewPasswordResetMailer(sender EmailSender, appName string) *PasswordResetMailer {
	return &PasswordResetMailer{sender: sender, appName: appName}
}

func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	body, err := templates.Render(ctx, templates.PasswordReset(templates.PasswordResetData{
		AppName: m.appName,
		Email:   to,
		Link:    link,
	}))
	if err != nil {
		return fmt.Errorf("%w: render: %v", ErrFailedToSendEmail, err)
	}
	return m.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  "Redefinição da palavra-passe · " + m.appName,
		BodyHTML: body,
		Tag:      TagPasswordReset,
	})
}
