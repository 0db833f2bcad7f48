// Package repository maps datastore rows to domain entities.
//
// It is the only package that sees datastore.Record values. Each repository
// converts rows eagerly into domain types on the way out and domain types
// into column maps on the way in, so a schema mismatch surfaces here as
// ErrCorruptRow instead of as a zero value further up.
//
// Users and BillingRecords additionally satisfy auth.UserStore and
// billing.RecordStore, so authentication and Paddle webhooks persist through
// the same store as the workspace.
package repository
