package email

import (
	"context"
	"errors"

	"github.com/ngolasuite/ngola/pkg/validator"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks the recipient, subject and body. Failures are validator
// errors joined with ErrInvalidParams.
func (p SendEmailParams) Validate() error {
	err := validator.Apply(
		validator.Required("send_to", p.SendTo),
		validator.When(p.SendTo != "", validator.Email("send_to", p.SendTo)),
		validator.Required("subject", p.Subject),
		validator.MaxLen("subject", p.Subject, 200),
		validator.Required("body_html", p.BodyHTML),
		validator.MaxLen("tag", p.Tag, 1000),
	)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}
