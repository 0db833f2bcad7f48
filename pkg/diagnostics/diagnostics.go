package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/ngolasuite/ngola/pkg/async"
	"github.com/ngolasuite/ngola/pkg/auth"
	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/logger"
)

// probeTable is read to prove the schema is in place.
const probeTable = "profiles"

// Probe checks one optional service.
type Probe func(ctx context.Context) error

// SessionSource is the part of auth.Service the auth check uses.
type SessionSource interface {
	CurrentSession(ctx context.Context, token string) (auth.Session, error)
}

// Deps are the collaborators to check. Nil members are reported as not
// configured.
type Deps struct {
	Store  datastore.Store
	Auth   SessionSource
	Probes map[string]Probe
}

type DatabaseStatus struct {
	Connected bool
	Code      datastore.Code
	RowsFound int
	Message   string
}

type AuthStatus struct {
	Configured    bool
	Authenticated bool
	Email         string
	Message       string
}

type ServiceStatus struct {
	Name    string
	OK      bool
	Message string
}

// Report is the outcome of Run.
type Report struct {
	Database DatabaseStatus
	Auth     AuthStatus
	Services []ServiceStatus
	Duration time.Duration
}

// OK reports whether the database is connected, auth is configured and every
// probe passed.
func (r Report) OK() bool {
	if !r.Database.Connected || !r.Auth.Configured {
		return false
	}
	for _, s := range r.Services {
		if !s.OK {
			return false
		}
	}
	return true
}

// Log writes one record per check.
func (r Report) Log(ctx context.Context, log *slog.Logger) {
	log = log.With(logger.Component("diagnostics"))
	level := func(ok bool) slog.Level {
		if ok {
			return slog.LevelInfo
		}
		return slog.LevelError
	}
	log.Log(ctx, level(r.Database.Connected), r.Database.Message,
		slog.String("check", "database"),
		slog.String("code", string(r.Database.Code)),
		slog.Int("rows_found", r.Database.RowsFound),
	)
	log.Log(ctx, level(r.Auth.Configured), r.Auth.Message,
		slog.String("check", "auth"),
		slog.Bool("authenticated", r.Auth.Authenticated),
	)
	for _, s := range r.Services {
		log.Log(ctx, level(s.OK), s.Message, slog.String("check", s.Name))
	}
	log.InfoContext(ctx, "diagnostics finished", slog.Bool("ok", r.OK()), logger.Duration(r.Duration))
}

// Run performs every check concurrently. token is the current session token
// and may be empty.
func Run(ctx context.Context, deps Deps, token string) Report {
	start := time.Now()

	db := async.Go(ctx, func(ctx context.Context) (DatabaseStatus, error) {
		return CheckDatabase(ctx, deps.Store), nil
	})
	au := async.Go(ctx, func(ctx context.Context) (AuthStatus, error) {
		return CheckAuth(ctx, deps.Auth, token), nil
	})

	names := slices.Sorted(maps.Keys(deps.Probes))
	probes := make([]*async.Future[ServiceStatus], len(names))
	for i, name := range names {
		probes[i] = async.Async(ctx, name, func(ctx context.Context, name string) (ServiceStatus, error) {
			return checkService(ctx, name, deps.Probes[name]), nil
		})
	}

	var r Report
	r.Database, _ = db.Await()
	r.Auth, _ = au.Await()
	r.Services, _ = async.WaitAll(probes...)
	r.Duration = time.Since(start)
	return r
}

// CheckDatabase reads one row of the profiles table.
func CheckDatabase(ctx context.Context, store datastore.Store) DatabaseStatus {
	if store == nil {
		return DatabaseStatus{Message: "base de dados não configurada"}
	}
	rows, err := store.Select(ctx, probeTable, datastore.Query{Columns: []string{"id"}, Limit: 1})
	if err == nil {
		return DatabaseStatus{
			Connected: true,
			RowsFound: len(rows),
			Message:   "conexão com a base de dados estabelecida",
		}
	}

	st := DatabaseStatus{Code: datastore.CodeOf(err)}
	switch st.Code {
	case datastore.CodeUnavailable:
		st.Message = fmt.Sprintf("base de dados inacessível: %v", err)
	case datastore.CodeInvalid:
		st.Message = fmt.Sprintf("esquema da base de dados incompleto: %v", err)
	default:
		st.Message = fmt.Sprintf("erro ao consultar a base de dados: %v", err)
	}
	return st
}

// CheckAuth looks up the session for token. A missing session is a healthy
// configuration without a signed-in user.
func CheckAuth(ctx context.Context, src SessionSource, token string) AuthStatus {
	if src == nil {
		return AuthStatus{Message: "autenticação não configurada"}
	}
	if token == "" {
		return AuthStatus{Configured: true, Message: "autenticação configurada (sem utilizador activo)"}
	}

	sess, err := src.CurrentSession(ctx, token)
	switch {
	case err == nil:
		return AuthStatus{Configured: true, Authenticated: true, Email: sess.Email, Message: "utilizador autenticado"}
	case errors.Is(err, auth.ErrSessionNotFound):
		return AuthStatus{Configured: true, Message: "autenticação configurada (sessão expirada ou inexistente)"}
	default:
		return AuthStatus{Message: fmt.Sprintf("erro ao verificar a sessão: %v", err)}
	}
}

func checkService(ctx context.Context, name string, p Probe) ServiceStatus {
	if p == nil {
		return ServiceStatus{Name: name, Message: "sem verificação configurada"}
	}
	if err := p(ctx); err != nil {
		return ServiceStatus{Name: name, Message: err.Error()}
	}
	return ServiceStatus{Name: name, OK: true, Message: "disponível"}
}
