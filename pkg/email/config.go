package email

// Config holds email service configuration. Without Postmark tokens the
// module falls back to DevSender when DevDir is set and to LogSender
// otherwise.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@ngolasuite.ao"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"suporte@ngolasuite.ao"`
	DevDir               string `env:"EMAIL_DEV_DIR"`
}

func (c Config) postmarkEnabled() bool {
	return c.PostmarkServerToken != "" || c.PostmarkAccountToken != ""
}
