// Package subscription keeps the signed-in user's subscription state current.
//
// A Controller owns one session at a time. Start enters the loading phase,
// checks the payment provider once and schedules a periodic refresh (every
// 60 seconds by default) on a cron Scheduler. Every check takes a sequence
// ticket from a viewstate.Value, so a slow response can never overwrite a
// newer one, and a successful check replaces the whole State record.
// A failed check keeps the last known record and only sets Err.
//
// Phases follow a small state machine:
//
//	uninitialized --start--> loading --checked--> subscribed | unsubscribed
//	subscribed | unsubscribed --checked/failed--> subscribed | unsubscribed
//	any --sign out--> unsubscribed
//
// SignOut is synchronous and makes no network call: it removes the refresh
// job, cancels in-flight checks and resets the record.
//
// Checkout and portal requests are single attempts. The URL returned by the
// provider is handed to the configured URLOpener.
package subscription
