// Package logger builds *slog.Logger values for the rest of the module.
//
// New takes functional options for format, level, output and static
// attributes, and wraps the handler in a decorator that copies request-scoped
// values out of the context on every record:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "ngola"),
//		logger.WithContextExtractors(session.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "checkout created",
//		logger.Component("subscription"),
//		logger.PlanID(plan.ID),
//	)
//
// The attribute helpers in attr.go keep key names consistent. Helpers taking
// an identifier return an empty attribute for nil or empty values, so callers
// do not need nil checks before logging.
package logger
