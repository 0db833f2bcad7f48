// Package diagnostics reports whether the application's collaborators are
// reachable: the data store, the authentication session and any optional
// services such as Redis, MongoDB or OpenSearch.
//
//	report := diagnostics.Run(ctx, diagnostics.Deps{
//		Store:  db,
//		Auth:   authService,
//		Probes: map[string]diagnostics.Probe{"redis": redis.Healthcheck(client)},
//	}, sessionToken)
//	report.Log(ctx, log)
package diagnostics
