// Package session holds the signed-in user's context explicitly.
//
// A Context bundles what the rest of the application needs about the current
// user: the auth session, the profile, the subscription controller and the
// plan it resolves to. Manager creates a Context on sign-in (Open), finds it
// again from a token (Resume) and tears it down on sign-out (Close), which
// stops the subscription refresh job before the Context is dropped.
//
// Contexts travel through call chains in a context.Context:
//
//	sc, err := manager.SignIn(ctx, email, password)
//	ctx = session.WithContext(ctx, sc)
//	...
//	sc := session.MustFromContext(ctx)
//	if !sc.HasFeature(plans.FeatureAdvancedReports) { ... }
package session
