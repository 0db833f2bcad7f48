package billing_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/logger"
)

// fakeStripe serves the handful of Stripe endpoints the provider calls.
type fakeStripe struct {
	mu            sync.Mutex
	customers     map[string]string // email -> customer ID
	subscriptions map[string]string // customer ID -> product ID
	periodEnd     int64
	lastCheckout  map[string]string
	lastPortal    map[string]string
}

func newFakeStripe() *fakeStripe {
	return &fakeStripe{
		customers:     map[string]string{},
		subscriptions: map[string]string{},
		periodEnd:     1767225600, // 2026-01-01T00:00:00Z
	}
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = r.ParseForm()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/customers":
		id, ok := f.customers[r.Form.Get("email")]
		if !ok {
			fmt.Fprint(w, `{"object":"list","url":"/v1/customers","has_more":false,"data":[]}`)
			return
		}
		fmt.Fprintf(w, `{"object":"list","url":"/v1/customers","has_more":false,"data":[{"id":%q,"object":"customer","email":%q}]}`,
			id, r.Form.Get("email"))

	case r.Method == http.MethodGet && r.URL.Path == "/v1/subscriptions":
		product, ok := f.subscriptions[r.Form.Get("customer")]
		if !ok || r.Form.Get("status") != "active" {
			fmt.Fprint(w, `{"object":"list","url":"/v1/subscriptions","has_more":false,"data":[]}`)
			return
		}
		fmt.Fprintf(w, `{"object":"list","url":"/v1/subscriptions","has_more":false,"data":[{"id":"sub_1","object":"subscription","status":"active","current_period_end":%d,"items":{"object":"list","has_more":false,"url":"/v1/subscription_items","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_x","object":"price","product":%q}}]}}]}`,
			f.periodEnd, product)

	case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
		f.lastCheckout = flatten(r)
		if r.Form.Get("line_items[0][price]") == "price_missing" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"No such price"}}`)
			return
		}
		fmt.Fprint(w, `{"id":"cs_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_1"}`)

	case r.Method == http.MethodPost && r.URL.Path == "/v1/billing_portal/sessions":
		f.lastPortal = flatten(r)
		fmt.Fprint(w, `{"id":"bps_1","object":"billing_portal.session","url":"https://billing.stripe.test/bps_1"}`)

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"unknown endpoint"}}`)
	}
}

func flatten(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Form))
	for k := range r.Form {
		out[k] = r.Form.Get(k)
	}
	return out
}

func newStripeProvider(t *testing.T, fake *fakeStripe) *billing.StripeProvider {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	p, err := billing.NewStripeProvider(billing.StripeConfig{
		SecretKey:       "sk_test_123",
		SuccessURL:      "https://app.test/ok",
		CancelURL:       "https://app.test/cancel",
		PortalReturnURL: "https://app.test/settings",
		APIBase:         srv.URL,
	}, billing.WithStripeLogger(logger.Discard()))
	require.NoError(t, err)
	return p
}

func TestNewStripeProvider_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := billing.NewStripeProvider(billing.StripeConfig{})
	assert.ErrorIs(t, err, billing.ErrMissingAPIKey)
}

func TestStripeProvider_CheckSubscriptionStatus(t *testing.T) {
	t.Parallel()

	fake := newFakeStripe()
	fake.customers["ana@ngola.ao"] = "cus_ana"
	fake.subscriptions["cus_ana"] = "prod_professional"
	fake.customers["rui@ngola.ao"] = "cus_rui"
	p := newStripeProvider(t, fake)
	ctx := context.Background()

	t.Run("active subscription", func(t *testing.T) {
		status, err := p.CheckSubscriptionStatus(ctx, billing.Customer{ID: "u1", Email: "ana@ngola.ao"})
		require.NoError(t, err)
		assert.True(t, status.Subscribed)
		assert.Equal(t, "prod_professional", status.ProductRef)
		require.NotNil(t, status.SubscriptionEnd)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *status.SubscriptionEnd)
	})

	t.Run("customer without subscription", func(t *testing.T) {
		status, err := p.CheckSubscriptionStatus(ctx, billing.Customer{ID: "u2", Email: "rui@ngola.ao"})
		require.NoError(t, err)
		assert.Equal(t, billing.Status{}, status)
	})

	t.Run("unknown customer", func(t *testing.T) {
		status, err := p.CheckSubscriptionStatus(ctx, billing.Customer{ID: "u3", Email: "nobody@ngola.ao"})
		require.NoError(t, err)
		assert.False(t, status.Subscribed)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := p.CheckSubscriptionStatus(ctx, billing.Customer{ID: "u4"})
		assert.ErrorIs(t, err, billing.ErrMissingCustomer)
	})
}

func TestStripeProvider_CreateCheckoutSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("existing customer is reused", func(t *testing.T) {
		t.Parallel()
		fake := newFakeStripe()
		fake.customers["ana@ngola.ao"] = "cus_ana"
		p := newStripeProvider(t, fake)

		url, err := p.CreateCheckoutSession(ctx, billing.Customer{ID: "u1", Email: "ana@ngola.ao"}, "price_basic", 3)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.test/cs_1", url)

		fake.mu.Lock()
		defer fake.mu.Unlock()
		assert.Equal(t, "cus_ana", fake.lastCheckout["customer"])
		assert.Equal(t, "price_basic", fake.lastCheckout["line_items[0][price]"])
		assert.Equal(t, "3", fake.lastCheckout["line_items[0][quantity]"])
		assert.Equal(t, "subscription", fake.lastCheckout["mode"])
		assert.Equal(t, "https://app.test/ok", fake.lastCheckout["success_url"])
	})

	t.Run("new customer by email", func(t *testing.T) {
		t.Parallel()
		fake := newFakeStripe()
		p := newStripeProvider(t, fake)

		_, err := p.CreateCheckoutSession(ctx, billing.Customer{ID: "u2", Email: "new@ngola.ao"}, "price_basic", 1)
		require.NoError(t, err)

		fake.mu.Lock()
		defer fake.mu.Unlock()
		assert.Empty(t, fake.lastCheckout["customer"])
		assert.Equal(t, "new@ngola.ao", fake.lastCheckout["customer_email"])
	})

	t.Run("provider rejection", func(t *testing.T) {
		t.Parallel()
		p := newStripeProvider(t, newFakeStripe())

		_, err := p.CreateCheckoutSession(ctx, billing.Customer{Email: "a@ngola.ao"}, "price_missing", 1)
		assert.ErrorIs(t, err, billing.ErrCheckoutFailed)
	})

	t.Run("input validation", func(t *testing.T) {
		t.Parallel()
		p := newStripeProvider(t, newFakeStripe())

		tests := []struct {
			name     string
			customer billing.Customer
			price    string
			qty      int64
			want     error
		}{
			{"no email", billing.Customer{ID: "u"}, "price_basic", 1, billing.ErrMissingCustomer},
			{"no price", billing.Customer{Email: "a@ngola.ao"}, " ", 1, billing.ErrMissingPriceRef},
			{"zero quantity", billing.Customer{Email: "a@ngola.ao"}, "price_basic", 0, billing.ErrInvalidQuantity},
		}
		for _, tt := range tests {
			_, err := p.CreateCheckoutSession(ctx, tt.customer, tt.price, tt.qty)
			assert.ErrorIs(t, err, tt.want, tt.name)
		}
	})
}

func TestStripeProvider_CreateCustomerPortalSession(t *testing.T) {
	t.Parallel()

	fake := newFakeStripe()
	fake.customers["ana@ngola.ao"] = "cus_ana"
	p := newStripeProvider(t, fake)
	ctx := context.Background()

	url, err := p.CreateCustomerPortalSession(ctx, billing.Customer{Email: "ana@ngola.ao"})
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.test/bps_1", url)

	fake.mu.Lock()
	assert.Equal(t, "cus_ana", fake.lastPortal["customer"])
	assert.Equal(t, "https://app.test/settings", fake.lastPortal["return_url"])
	fake.mu.Unlock()

	_, err = p.CreateCustomerPortalSession(ctx, billing.Customer{Email: "ghost@ngola.ao"})
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}
