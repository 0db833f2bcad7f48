package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/ngolasuite/ngola/pkg/async"
	"github.com/ngolasuite/ngola/pkg/logger"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// ReadinessReport is the body written by Readiness.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	statusOK       = "ok"
	statusNotReady = "not_ready"
)

// Liveness answers 200 as long as the process serves requests.
func Liveness() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ReadinessReport{Status: statusOK})
	})
}

// Readiness runs every check concurrently with the request context. It
// answers 200 when all pass and 503 otherwise; failures are logged.
func Readiness(log *slog.Logger, checks map[string]Check) http.Handler {
	names := slices.Sorted(maps.Keys(checks))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		futures := make([]*async.Future[string], 0, len(names))
		for _, name := range names {
			futures = append(futures, async.Go(ctx, func(ctx context.Context) (string, error) {
				if err := checks[name](ctx); err != nil {
					log.WarnContext(ctx, "readiness check failed", logger.Component(name), logger.Error(err))
					return err.Error(), nil
				}
				return statusOK, nil
			}))
		}

		rep := ReadinessReport{Status: statusOK, Checks: make(map[string]string, len(names))}
		for i, f := range futures {
			res, err := f.Await()
			if err != nil {
				res = err.Error()
			}
			if res != statusOK {
				rep.Status = statusNotReady
			}
			rep.Checks[names[i]] = res
		}

		code := http.StatusOK
		if rep.Status != statusOK {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, rep)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
