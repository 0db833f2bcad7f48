// Package ngola wires the Ngola Suite backend together.
//
// Ngola Suite is a project management workspace for Angolan teams: projects,
// tasks, resources and teams, gated by a per-seat subscription plan. This
// package is the composition root. It reads Config from the environment,
// opens the data store and the optional Redis, MongoDB and OpenSearch
// backends, and builds the services:
//
//   - Auth: accounts, sessions and password reset (pkg/auth)
//   - Sessions: per-user contexts with a live subscription controller (pkg/session)
//   - Workspace: every user action on workspace data (svc/workspace)
//   - Billing: the payment provider, Stripe or Paddle (pkg/billing)
//
// A typical process:
//
//	cfg, err := ngola.LoadConfig()
//	if err != nil {
//		return err
//	}
//	app, err := ngola.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	sc, err := app.Sessions.SignIn(ctx, email, password)
//	...
//	project, err := app.Workspace.CreateProject(ctx, sc, domain.Project{Name: "Hospital"})
//
// Serve runs the HTTP surface: liveness and readiness probes and, with
// Paddle, the billing webhook.
package ngola
