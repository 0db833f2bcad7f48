package billing

import "errors"

var (
	ErrMissingAPIKey              = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret       = errors.New("billing provider webhook secret is required")
	ErrInvalidProviderEnvironment = errors.New("invalid billing provider environment")

	ErrMissingCustomer  = errors.New("customer email is required")
	ErrMissingPriceRef  = errors.New("price reference is required")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrCustomerNotFound = errors.New("billing customer not found")

	ErrStatusCheckFailed = errors.New("failed to check subscription status")
	ErrCheckoutFailed    = errors.New("failed to create checkout session")
	ErrPortalFailed      = errors.New("failed to create customer portal session")
	ErrNoCheckoutURL     = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL       = errors.New("no portal URL returned from provider")

	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrInvalidWebhookPayload     = errors.New("invalid webhook payload")

	ErrRecordNotFound = errors.New("billing record not found")
	ErrRecordInvalid  = errors.New("billing record requires a customer ID")
)
