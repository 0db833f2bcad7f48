// Package httpserver runs the inbound HTTP surface of the application: the
// billing webhook endpoint and the health probes.
//
// Server wraps net/http with graceful shutdown on context cancellation or
// SIGINT/SIGTERM. Liveness and Readiness build the probe handlers; readiness
// runs every named check concurrently and answers with a JSON summary.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	mux := http.NewServeMux()
//	mux.Handle("GET /healthz", httpserver.Liveness())
//	mux.Handle("GET /readyz", httpserver.Readiness(log, checks))
//	err := srv.Run(ctx, mux)
package httpserver
