package ngola

import (
	"context"
	"net/http"

	"github.com/ngolasuite/ngola/pkg/httpserver"
)

// Handler serves the probes and, when the billing provider sends them, the
// billing webhooks. Every request gets a request ID and an access log line.
func (a *App) Handler() http.Handler {
	checks := make(map[string]httpserver.Check, len(a.probes))
	for name, p := range a.probes {
		checks[name] = httpserver.Check(p)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", httpserver.Liveness())
	mux.Handle("GET /readyz", httpserver.Readiness(a.Logger, checks))
	if a.Webhooks != nil {
		mux.Handle("POST /webhooks/billing", a.Webhooks)
	}
	return httpserver.RequestID(httpserver.AccessLog(a.Logger)(mux))
}

// Serve runs the HTTP listener until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := httpserver.New(a.Config.HTTP, httpserver.WithLogger(a.Logger))
	return srv.Run(ctx, a.Handler())
}
