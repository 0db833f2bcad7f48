package billing_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/logger"
)

type mockParser struct {
	mock.Mock
}

func (m *mockParser) ParseWebhookRequest(r *http.Request) (*billing.Event, error) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Event), args.Error(1)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*billing.Record, error) {
	return nil, errors.New("store down")
}

func (failingStore) Save(context.Context, *billing.Record) error { return errors.New("store down") }

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func post(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks", strings.NewReader("{}")))
	return rec
}

func TestWebhookHandler_StatusCodes(t *testing.T) {
	t.Parallel()

	event := &billing.Event{Type: billing.EventSubscriptionCreated, CustomerID: "u1", Status: "active"}

	tests := []struct {
		name    string
		records billing.RecordStore
		event   *billing.Event
		err     error
		want    int
	}{
		{"applied", billing.NewMemoryRecordStore(), event, nil, http.StatusOK},
		{"bad signature", billing.NewMemoryRecordStore(), nil, billing.ErrWebhookVerificationFailed, http.StatusUnauthorized},
		{"bad payload", billing.NewMemoryRecordStore(), nil, billing.ErrInvalidWebhookPayload, http.StatusBadRequest},
		{"store failure", failingStore{}, event, nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parser := &mockParser{}
			parser.On("ParseWebhookRequest", mock.Anything).Return(tt.event, tt.err)

			h := billing.NewWebhookHandler(parser, tt.records, billing.WithWebhookLogger(logger.Discard()))
			assert.Equal(t, tt.want, post(h).Code)
			parser.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_RejectsNonPost(t *testing.T) {
	t.Parallel()

	h := billing.NewWebhookHandler(&mockParser{}, billing.NewMemoryRecordStore())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhooks", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestWebhookHandler_Apply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	records := billing.NewMemoryRecordStore()
	var seen []billing.EventType
	h := billing.NewWebhookHandler(&mockParser{}, records,
		billing.WithWebhookLogger(logger.Discard()),
		billing.WithWebhookClock(func() time.Time { return fixedNow }),
		billing.WithEventHook(func(_ context.Context, e billing.Event) { seen = append(seen, e.Type) }),
	)

	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	// Transaction first: only the provider customer is learned.
	require.NoError(t, h.Apply(ctx, billing.Event{
		Type:               billing.EventPaymentSucceeded,
		CustomerID:         "u1",
		ProviderCustomerID: "ctm_01",
		SubscriptionID:     "sub_01",
		Status:             "completed",
	}))
	rec, err := records.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ctm_01", rec.ProviderCustomerID)
	assert.Equal(t, "sub_01", rec.SubscriptionID)
	assert.False(t, rec.Active())

	require.NoError(t, h.Apply(ctx, billing.Event{
		Type:           billing.EventSubscriptionCreated,
		CustomerID:     "u1",
		SubscriptionID: "sub_01",
		Status:         "active",
		PriceRef:       "pri_basic",
		ProductRef:     "pro_basic",
		PeriodEnd:      &end,
	}))
	rec, err = records.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, rec.Active())
	assert.Equal(t, "ctm_01", rec.ProviderCustomerID, "provider customer kept")
	assert.Equal(t, billing.Status{Subscribed: true, ProductRef: "pro_basic", SubscriptionEnd: &end}, rec.SubscriptionStatus())
	assert.Equal(t, fixedNow, rec.UpdatedAt)

	require.NoError(t, h.Apply(ctx, billing.Event{
		Type:           billing.EventSubscriptionCancelled,
		CustomerID:     "u1",
		SubscriptionID: "sub_01",
		Status:         "canceled",
	}))
	rec, err = records.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, billing.RecordCancelled, rec.Status)
	assert.Equal(t, "pro_basic", rec.ProductRef)
	assert.Equal(t, billing.Status{}, rec.SubscriptionStatus())

	// No local customer: acknowledged, nothing stored, no hook.
	require.NoError(t, h.Apply(ctx, billing.Event{Type: billing.EventSubscriptionCreated, Status: "active"}))

	assert.Equal(t, []billing.EventType{
		billing.EventPaymentSucceeded,
		billing.EventSubscriptionCreated,
		billing.EventSubscriptionCancelled,
	}, seen)
}

func TestWebhookHandler_PaddleEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	records := billing.NewMemoryRecordStore()
	p := newPaddleProvider(t, records)
	h := billing.NewWebhookHandler(p, records, billing.WithWebhookLogger(logger.Discard()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, subscriptionCreated, webhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)

	status, err := p.CheckSubscriptionStatus(ctx, billing.Customer{ID: "user-1"})
	require.NoError(t, err)
	assert.True(t, status.Subscribed)
	assert.Equal(t, "pro_professional", status.ProductRef)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, subscriptionCreated, "forged"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMemoryRecordStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := billing.NewMemoryRecordStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, billing.ErrRecordNotFound)
	assert.ErrorIs(t, s.Save(ctx, &billing.Record{}), billing.ErrRecordInvalid)
	assert.ErrorIs(t, s.Save(ctx, nil), billing.ErrRecordInvalid)

	r := &billing.Record{CustomerID: "u1", Status: billing.RecordTrialing}
	require.NoError(t, s.Save(ctx, r))
	r.Status = billing.RecordCancelled

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, billing.RecordTrialing, got.Status, "store keeps its own copy")
	assert.True(t, got.Active())
}

func TestWebhookHandler_SkipsOlderSubscriptionEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	records := billing.NewMemoryRecordStore()
	var hooked int
	h := billing.NewWebhookHandler(&mockParser{}, records,
		billing.WithWebhookLogger(logger.Discard()),
		billing.WithEventHook(func(context.Context, billing.Event) { hooked++ }),
	)

	created := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	cancelled := created.Add(2 * time.Hour)

	apply := func(typ billing.EventType, status string, at time.Time) {
		t.Helper()
		require.NoError(t, h.Apply(ctx, billing.Event{
			Type:           typ,
			CustomerID:     "u1",
			SubscriptionID: "sub_01",
			Status:         status,
			ProductRef:     "pro_basic",
			OccurredAt:     at,
		}))
	}

	apply(billing.EventSubscriptionCreated, "active", created)
	apply(billing.EventSubscriptionCancelled, "canceled", cancelled)
	// Delivered late: occurred before the cancellation.
	apply(billing.EventSubscriptionUpdated, "active", updated)

	rec, err := records.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, billing.RecordCancelled, rec.Status)
	assert.False(t, rec.Active())
	require.NotNil(t, rec.EventAt)
	assert.Equal(t, cancelled, *rec.EventAt)
	assert.Equal(t, 2, hooked, "skipped events do not reach the hook")

	// Events without a time are applied as before.
	apply(billing.EventSubscriptionResumed, "active", time.Time{})
	rec, err = records.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, rec.Active())
}
