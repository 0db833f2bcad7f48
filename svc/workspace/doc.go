// Package workspace implements the user actions of the application: projects,
// tasks, resources, teams, profile, search, the dashboard and reports.
//
// Every operation runs on behalf of an Actor, usually a *session.Context.
// Writes are validated, checked against the actor's plan limits, stored,
// recorded in the activity log and pushed to the search index, in that order.
// Activity and index failures after a successful write are logged and do not
// fail the operation.
package workspace
