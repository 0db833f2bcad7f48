package billing

import (
	"context"
	"strings"
	"time"
)

// Provider is the narrow payment interface the lifecycle controller depends on.
// Payment details never pass through this module: checkout and portal are
// hosted pages the customer is sent to.
type Provider interface {
	// CheckSubscriptionStatus reports whether the customer currently holds an
	// active subscription and which product it is for.
	CheckSubscriptionStatus(ctx context.Context, customer Customer) (Status, error)

	// CreateCheckoutSession returns the URL of a hosted checkout for the given
	// price and seat count.
	CreateCheckoutSession(ctx context.Context, customer Customer, priceRef string, quantity int64) (string, error)

	// CreateCustomerPortalSession returns the URL of the hosted portal where
	// the customer can change payment methods, plans or cancel.
	CreateCustomerPortalSession(ctx context.Context, customer Customer) (string, error)
}

// Customer identifies the signed-in user towards the payment provider.
type Customer struct {
	ID    string // local user ID
	Email string
}

func (c Customer) validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingCustomer
	}
	return nil
}

// Status is the provider's answer to a subscription check.
type Status struct {
	Subscribed      bool
	ProductRef      string
	SubscriptionEnd *time.Time
}

func validateCheckout(customer Customer, priceRef string, quantity int64) error {
	if err := customer.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(priceRef) == "" {
		return ErrMissingPriceRef
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
