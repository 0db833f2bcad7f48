// Package billing is the payment collaborator used by the subscription
// lifecycle controller.
//
// A Provider answers three questions for a Customer: is there an active
// subscription (and for which product), where can the customer pay for a
// plan, and where can the customer manage an existing subscription. Two
// implementations ship with the package:
//
//   - StripeProvider talks to Stripe directly. Status is read live: the
//     customer is found by email and the first active subscription decides
//     the product.
//   - PaddleProvider creates Paddle transactions and portal sessions. Paddle
//     status is read from local records that WebhookHandler keeps up to date
//     from verified webhooks.
//
// Records are persisted through a RecordStore. MemoryRecordStore is provided
// for tests and single-process setups; pkg/repository provides a datastore
// backed one.
package billing
