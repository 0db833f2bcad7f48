package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ngolasuite/ngola/pkg/logger"
)

// EventType is the normalized billing event type.
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription_created"
	EventSubscriptionUpdated   EventType = "subscription_updated"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventSubscriptionResumed   EventType = "subscription_resumed"

	EventPaymentSucceeded EventType = "payment_succeeded"
	EventPaymentFailed    EventType = "payment_failed"
)

// Event is a verified and normalized provider webhook.
type Event struct {
	ID                 string
	Type               EventType
	ProviderEvent      string
	CustomerID         string // local user ID from custom data
	ProviderCustomerID string
	SubscriptionID     string
	Status             string
	PriceRef           string
	ProductRef         string
	PeriodEnd          *time.Time
	OccurredAt         time.Time // zero when the provider did not say
}

// IsSubscription reports whether the event carries subscription state.
func (e Event) IsSubscription() bool {
	switch e.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionCancelled, EventSubscriptionResumed:
		return true
	}
	return false
}

// WebhookParser verifies and parses a provider webhook request.
type WebhookParser interface {
	ParseWebhookRequest(r *http.Request) (*Event, error)
}

// WebhookHandler applies verified provider events to the record store.
type WebhookHandler struct {
	parser  WebhookParser
	records RecordStore
	onEvent func(ctx context.Context, event Event)
	now     func() time.Time
	logger  *slog.Logger
}

// WebhookOption configures a WebhookHandler.
type WebhookOption func(*WebhookHandler)

// WithWebhookLogger sets the handler logger.
func WithWebhookLogger(l *slog.Logger) WebhookOption {
	return func(h *WebhookHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithEventHook registers a callback invoked after an event is applied.
func WithEventHook(fn func(ctx context.Context, event Event)) WebhookOption {
	return func(h *WebhookHandler) {
		h.onEvent = fn
	}
}

// WithWebhookClock overrides the clock used for UpdatedAt.
func WithWebhookClock(now func() time.Time) WebhookOption {
	return func(h *WebhookHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewWebhookHandler creates an http.Handler for provider webhooks.
func NewWebhookHandler(parser WebhookParser, records RecordStore, opts ...WebhookOption) *WebhookHandler {
	if parser == nil || records == nil {
		panic("billing: webhook handler requires a parser and a record store")
	}

	h := &WebhookHandler{
		parser:  parser,
		records: records,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("billing.webhook"))

	return h
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	event, err := h.parser.ParseWebhookRequest(r)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected billing webhook", logger.Error(err))
		if errors.Is(err, ErrWebhookVerificationFailed) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.Apply(ctx, *event); err != nil {
		h.logger.ErrorContext(ctx, "failed to apply billing webhook",
			logger.Event(event.ProviderEvent),
			logger.UserID(event.CustomerID),
			logger.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Apply merges the event into the customer's record. Events without a local
// customer ID are acknowledged and ignored, and so are subscription events
// older than the last one applied.
func (h *WebhookHandler) Apply(ctx context.Context, event Event) error {
	if event.CustomerID == "" {
		h.logger.DebugContext(ctx, "billing webhook without customer", logger.Event(event.ProviderEvent))
		return nil
	}

	rec, err := h.records.Get(ctx, event.CustomerID)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		rec = &Record{CustomerID: event.CustomerID}
	case err != nil:
		return err
	}

	if event.ProviderCustomerID != "" {
		rec.ProviderCustomerID = event.ProviderCustomerID
	}
	if event.IsSubscription() && rec.Outdates(event) {
		h.logger.InfoContext(ctx, "skipped out-of-order billing webhook",
			logger.Event(event.ProviderEvent),
			logger.UserID(event.CustomerID),
		)
		return nil
	}

	if event.IsSubscription() {
		rec.SubscriptionID = event.SubscriptionID
		rec.Status = RecordStatus(event.Status)
		if event.Type == EventSubscriptionCancelled {
			rec.Status = RecordCancelled
		}
		if event.PriceRef != "" {
			rec.PriceRef = event.PriceRef
		}
		if event.ProductRef != "" {
			rec.ProductRef = event.ProductRef
		}
		rec.PeriodEnd = event.PeriodEnd
		if !event.OccurredAt.IsZero() {
			at := event.OccurredAt.UTC()
			rec.EventAt = &at
		}
	} else if rec.SubscriptionID == "" && event.SubscriptionID != "" {
		rec.SubscriptionID = event.SubscriptionID
	}
	rec.UpdatedAt = h.now().UTC()

	if err := h.records.Save(ctx, rec); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "billing webhook applied",
		logger.Event(event.ProviderEvent),
		logger.UserID(event.CustomerID),
		slog.String("status", string(rec.Status)),
	)

	if h.onEvent != nil {
		h.onEvent(ctx, event)
	}

	return nil
}
