package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/ngolasuite/ngola/pkg/logger"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
	SuccessURL    string `env:"PADDLE_SUCCESS_URL"`
}

// maxWebhookBody caps the size of an accepted webhook payload.
const maxWebhookBody = 1 << 20

// PaddleProvider implements Provider for Paddle. Subscription status comes
// from the RecordStore, which WebhookHandler fills from Paddle events.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
	records  RecordStore
	config   PaddleConfig
	logger   *slog.Logger
}

// PaddleOption configures a PaddleProvider.
type PaddleOption func(*paddleOptions)

type paddleOptions struct {
	logger  *slog.Logger
	sdkOpts []paddle.Option
}

// WithPaddleLogger sets the provider logger.
func WithPaddleLogger(l *slog.Logger) PaddleOption {
	return func(o *paddleOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPaddleSDKOptions passes options through to the Paddle SDK client.
func WithPaddleSDKOptions(opts ...paddle.Option) PaddleOption {
	return func(o *paddleOptions) {
		o.sdkOpts = append(o.sdkOpts, opts...)
	}
}

// NewPaddleProvider creates a Paddle billing provider backed by records.
func NewPaddleProvider(config PaddleConfig, records RecordStore, opts ...PaddleOption) (*PaddleProvider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	if records == nil {
		panic("billing: paddle provider requires a record store")
	}

	o := paddleOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey, o.sdkOpts...)
	case "production", "":
		client, err = paddle.New(config.APIKey, o.sdkOpts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderEnvironment, config.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(config.WebhookSecret),
		records:  records,
		config:   config,
		logger:   o.logger.With(logger.Component("billing"), logger.Provider("paddle")),
	}, nil
}

// CheckSubscriptionStatus reads the customer's local billing record.
func (p *PaddleProvider) CheckSubscriptionStatus(ctx context.Context, customer Customer) (Status, error) {
	if customer.ID == "" {
		return Status{}, ErrMissingCustomer
	}

	rec, err := p.records.Get(ctx, customer.ID)
	if errors.Is(err, ErrRecordNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, errors.Join(ErrStatusCheckFailed, err)
	}

	return rec.SubscriptionStatus(), nil
}

// CreateCheckoutSession creates a Paddle transaction and returns its
// hosted checkout URL. The local customer ID travels in custom data so that
// webhooks can be matched back to the user.
func (p *PaddleProvider) CreateCheckoutSession(ctx context.Context, customer Customer, priceRef string, quantity int64) (string, error) {
	if err := validateCheckout(customer, priceRef, quantity); err != nil {
		return "", err
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  priceRef,
		Quantity: int(quantity),
	})

	req := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"customer_id": customer.ID,
			"email":       customer.Email,
		},
	}
	if p.config.SuccessURL != "" {
		req.Checkout = &paddle.TransactionCheckout{URL: paddle.PtrTo(p.config.SuccessURL)}
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, req)
	if err != nil {
		return "", errors.Join(ErrCheckoutFailed, err)
	}
	if txn.Checkout == nil || txn.Checkout.URL == nil || *txn.Checkout.URL == "" {
		return "", ErrNoCheckoutURL
	}

	return *txn.Checkout.URL, nil
}

// CreateCustomerPortalSession opens Paddle's customer portal. It needs the
// Paddle customer ID, which is learned from webhooks.
func (p *PaddleProvider) CreateCustomerPortalSession(ctx context.Context, customer Customer) (string, error) {
	if customer.ID == "" {
		return "", ErrMissingCustomer
	}

	rec, err := p.records.Get(ctx, customer.ID)
	if errors.Is(err, ErrRecordNotFound) || (err == nil && rec.ProviderCustomerID == "") {
		return "", ErrCustomerNotFound
	}
	if err != nil {
		return "", errors.Join(ErrPortalFailed, err)
	}

	req := &paddle.CreateCustomerPortalSessionRequest{CustomerID: rec.ProviderCustomerID}
	if rec.SubscriptionID != "" {
		req.SubscriptionIDs = []string{rec.SubscriptionID}
	}

	sess, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, req)
	if err != nil {
		return "", errors.Join(ErrPortalFailed, err)
	}
	if sess.URLs.General.Overview == "" {
		return "", ErrNoPortalURL
	}

	return sess.URLs.General.Overview, nil
}

// ParseWebhookRequest verifies the Paddle-Signature header and normalizes
// the event payload.
func (p *PaddleProvider) ParseWebhookRequest(r *http.Request) (*Event, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, errors.Join(ErrInvalidWebhookPayload, err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	valid, err := p.verifier.Verify(r)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}
	if !valid {
		return nil, ErrWebhookVerificationFailed
	}

	return parsePaddleEvent(body)
}

type paddleEnvelope struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

func parsePaddleEvent(body []byte) (*Event, error) {
	var env paddleEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Join(ErrInvalidWebhookPayload, err)
	}
	if env.EventType == "" {
		return nil, ErrInvalidWebhookPayload
	}

	data := env.Data
	event := &Event{
		ID:                 env.EventID,
		Type:               mapPaddleEventType(env.EventType),
		ProviderEvent:      env.EventType,
		Status:             str(data, "status"),
		ProviderCustomerID: str(data, "customer_id"),
		OccurredAt:         env.OccurredAt.UTC(),
	}
	if custom, ok := data["custom_data"].(map[string]any); ok {
		event.CustomerID = str(custom, "customer_id")
	}

	switch {
	case strings.HasPrefix(env.EventType, "subscription."):
		event.SubscriptionID = str(data, "id")
		if price := firstItem(data, "price"); price != nil {
			event.PriceRef = str(price, "id")
			event.ProductRef = str(price, "product_id")
		}
		if period, ok := data["current_billing_period"].(map[string]any); ok {
			if ends, err := time.Parse(time.RFC3339, str(period, "ends_at")); err == nil {
				ends = ends.UTC()
				event.PeriodEnd = &ends
			}
		}
	case strings.HasPrefix(env.EventType, "transaction."):
		event.SubscriptionID = str(data, "subscription_id")
		if item := firstItem(data, ""); item != nil {
			event.PriceRef = str(item, "price_id")
		}
	}

	return event, nil
}

// firstItem returns data.items[0], or data.items[0][field] when field is set.
func firstItem(data map[string]any, field string) map[string]any {
	items, ok := data["items"].([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	item, ok := items[0].(map[string]any)
	if !ok || field == "" {
		return item
	}
	nested, _ := item[field].(map[string]any)
	return nested
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mapPaddleEventType(name string) EventType {
	switch name {
	case "subscription.created", "subscription.activated":
		return EventSubscriptionCreated
	case "subscription.updated", "subscription.trialing", "subscription.past_due", "subscription.paused":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionCancelled
	case "subscription.resumed":
		return EventSubscriptionResumed
	case "transaction.completed":
		return EventPaymentSucceeded
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		return EventType(name)
	}
}
