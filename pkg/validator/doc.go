// Package validator builds field validation out of small Rule values.
//
// Each rule constructor returns a Rule; Apply runs a list of them and returns
// ValidationErrors holding every failure, so callers can report all bad
// fields at once:
//
//	err := validator.Apply(
//		validator.Required("name", p.Name),
//		validator.NonNegative("budget", budget),
//	)
//	if validator.IsValidationError(err) {
//		// show field messages, do not call the store
//	}
//
// Optional fields wrap their rule in When.
package validator
