package ngola

import (
	"github.com/ngolasuite/ngola/pkg/activity"
	"github.com/ngolasuite/ngola/pkg/auth"
	"github.com/ngolasuite/ngola/pkg/config"
	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/email"
	"github.com/ngolasuite/ngola/pkg/httpserver"
	"github.com/ngolasuite/ngola/pkg/redis"
	"github.com/ngolasuite/ngola/pkg/search"
	"github.com/ngolasuite/ngola/pkg/subscription"
)

// Billing providers accepted by Config.BillingProvider.
const (
	BillingStripe = "stripe"
	BillingPaddle = "paddle"
)

// Config is the whole process configuration. Provider credentials are
// loaded separately, only for the provider that is selected.
type Config struct {
	AppName         string `env:"APP_NAME" envDefault:"Ngola Suite"`
	Environment     string `env:"APP_ENV" envDefault:"development"`
	BaseURL         string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	ResetPath       string `env:"APP_RESET_PATH" envDefault:"/redefinir-senha"`
	BillingProvider string `env:"BILLING_PROVIDER" envDefault:"stripe"`

	Datastore    datastore.Config
	Redis        redis.Config
	Auth         auth.Config
	Email        email.Config
	Search       search.Config
	Mongo        activity.MongoConfig
	Subscription subscription.Config
	HTTP         httpserver.Config
}

// LoadConfig reads Config from the environment and an optional .env file.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
