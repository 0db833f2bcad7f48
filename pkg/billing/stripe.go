package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/ngolasuite/ngola/pkg/logger"
)

// StripeConfig holds configuration for the Stripe billing provider.
type StripeConfig struct {
	SecretKey       string `env:"STRIPE_SECRET_KEY,required"`
	SuccessURL      string `env:"STRIPE_SUCCESS_URL" envDefault:"http://localhost:8080/settings?checkout=success"`
	CancelURL       string `env:"STRIPE_CANCEL_URL" envDefault:"http://localhost:8080/settings?checkout=cancelled"`
	PortalReturnURL string `env:"STRIPE_PORTAL_RETURN_URL" envDefault:"http://localhost:8080/settings"`
	// APIBase overrides the Stripe API endpoint, e.g. for stripe-mock.
	APIBase string `env:"STRIPE_API_BASE"`
}

// StripeProvider implements Provider on top of the Stripe API.
type StripeProvider struct {
	api    *client.API
	config StripeConfig
	logger *slog.Logger
}

// StripeOption configures a StripeProvider.
type StripeOption func(*stripeOptions)

type stripeOptions struct {
	logger  *slog.Logger
	backend stripe.Backend
}

// WithStripeLogger sets the logger used for provider and SDK messages.
func WithStripeLogger(l *slog.Logger) StripeOption {
	return func(o *stripeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStripeBackend replaces the SDK backend. Mostly useful in tests.
func WithStripeBackend(b stripe.Backend) StripeOption {
	return func(o *stripeOptions) {
		o.backend = b
	}
}

// NewStripeProvider creates a Stripe billing provider.
func NewStripeProvider(cfg StripeConfig, opts ...StripeOption) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}

	o := stripeOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With(logger.Component("billing"), logger.Provider("stripe"))

	backend := o.backend
	if backend == nil {
		bc := &stripe.BackendConfig{
			LeveledLogger: stripeLogger{log: log},
		}
		if cfg.APIBase != "" {
			bc.URL = stripe.String(cfg.APIBase)
		}
		backend = stripe.GetBackendWithConfig(stripe.APIBackend, bc)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &StripeProvider{api: api, config: cfg, logger: log}, nil
}

// CheckSubscriptionStatus looks up the customer by email and reports the
// product of its first active subscription.
func (p *StripeProvider) CheckSubscriptionStatus(ctx context.Context, customer Customer) (Status, error) {
	if err := customer.validate(); err != nil {
		return Status{}, err
	}

	cus, err := p.findCustomer(ctx, customer.Email)
	if errors.Is(err, ErrCustomerNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, errors.Join(ErrStatusCheckFailed, err)
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(cus.ID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := p.api.Subscriptions.List(params)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return Status{}, errors.Join(ErrStatusCheckFailed, err)
		}
		return Status{}, nil
	}

	sub := iter.Subscription()
	status := Status{Subscribed: true}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		if price := sub.Items.Data[0].Price; price != nil && price.Product != nil {
			status.ProductRef = price.Product.ID
		}
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		status.SubscriptionEnd = &end
	}

	p.logger.DebugContext(ctx, "stripe subscription found",
		logger.UserID(customer.ID),
		logger.ProductRef(status.ProductRef),
	)

	return status, nil
}

// CreateCheckoutSession creates a hosted subscription checkout. An existing
// Stripe customer is reused; otherwise Stripe creates one from the email.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customer Customer, priceRef string, quantity int64) (string, error) {
	if err := validateCheckout(customer, priceRef, quantity); err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(priceRef),
			Quantity: stripe.Int64(quantity),
		}},
		SuccessURL: stripe.String(p.config.SuccessURL),
		CancelURL:  stripe.String(p.config.CancelURL),
	}
	params.Context = ctx
	if customer.ID != "" {
		params.ClientReferenceID = stripe.String(customer.ID)
	}

	cus, err := p.findCustomer(ctx, customer.Email)
	switch {
	case err == nil:
		params.Customer = stripe.String(cus.ID)
	case errors.Is(err, ErrCustomerNotFound):
		params.CustomerEmail = stripe.String(customer.Email)
	default:
		return "", errors.Join(ErrCheckoutFailed, err)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", errors.Join(ErrCheckoutFailed, err)
	}
	if sess.URL == "" {
		return "", ErrNoCheckoutURL
	}

	return sess.URL, nil
}

// CreateCustomerPortalSession opens the Stripe billing portal for an
// existing customer.
func (p *StripeProvider) CreateCustomerPortalSession(ctx context.Context, customer Customer) (string, error) {
	if err := customer.validate(); err != nil {
		return "", err
	}

	cus, err := p.findCustomer(ctx, customer.Email)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return "", err
		}
		return "", errors.Join(ErrPortalFailed, err)
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(cus.ID),
		ReturnURL: stripe.String(p.config.PortalReturnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", errors.Join(ErrPortalFailed, err)
	}
	if sess.URL == "" {
		return "", ErrNoPortalURL
	}

	return sess.URL, nil
}

func (p *StripeProvider) findCustomer(ctx context.Context, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := p.api.Customers.List(params)
	if iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return nil, ErrCustomerNotFound
}

// stripeLogger routes SDK log lines into slog.
type stripeLogger struct {
	log *slog.Logger
}

func (l stripeLogger) Debugf(format string, v ...any) { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l stripeLogger) Infof(format string, v ...any)  { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l stripeLogger) Warnf(format string, v ...any)  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l stripeLogger) Errorf(format string, v ...any) { l.log.Error(fmt.Sprintf(format, v...)) }
