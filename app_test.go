package ngola_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ngolasuite/ngola"
	"github.com/ngolasuite/ngola/pkg/auth"
	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/datastore"
	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/entitlement"
	"github.com/ngolasuite/ngola/pkg/httpserver"
	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/plans"
	"github.com/ngolasuite/ngola/pkg/subscription"
)

type provider struct {
	mu       sync.Mutex
	statuses map[string]billing.Status
}

func (p *provider) set(email string, st billing.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[email] = st
}

func (p *provider) CheckSubscriptionStatus(_ context.Context, c billing.Customer) (billing.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statuses[c.Email], nil
}

func (p *provider) CreateCheckoutSession(context.Context, billing.Customer, string, int64) (string, error) {
	return "https://pay.test/checkout", nil
}

func (p *provider) CreateCustomerPortalSession(context.Context, billing.Customer) (string, error) {
	return "https://pay.test/portal", nil
}

type mailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *mailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[email] = link
	return nil
}

func testConfig() ngola.Config {
	return ngola.Config{
		AppName:         "Ngola Suite",
		Environment:     "test",
		BaseURL:         "https://app.ngolasuite.ao",
		ResetPath:       "/redefinir-senha",
		BillingProvider: ngola.BillingStripe,
		Datastore: datastore.Config{
			Driver:      datastore.DriverSQLite,
			SQLitePath:  datastore.MemoryPath,
			AutoMigrate: true,
		},
		Auth: auth.Config{TokenSecret: "segredo", BcryptCost: bcrypt.MinCost},
	}
}

func newApp(t *testing.T, cfg ngola.Config, opts ...ngola.Option) (*ngola.App, *provider, *mailer) {
	t.Helper()

	p := &provider{statuses: map[string]billing.Status{}}
	m := &mailer{links: map[string]string{}}
	opts = append([]ngola.Option{
		ngola.WithLogger(logger.Discard()),
		ngola.WithBillingProvider(p),
		ngola.WithResetMailer(m),
		ngola.WithURLOpener(subscription.URLOpenerFunc(func(context.Context, string) error { return nil })),
	}, opts...)

	app, err := ngola.New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })
	return app, p, m
}

func TestAppWorkspaceFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	app, p, _ := newApp(t, testConfig())

	u, err := app.Auth.SignUp(ctx, auth.SignUpParams{
		Email: "ana@example.ao", Password: "Segredo123", PasswordConfirmation: "Segredo123",
		DisplayName: "  Ana Lima ",
	})
	require.NoError(t, err)

	profile, err := app.Repos.Profiles.Get(ctx, u.ID)
	require.NoError(t, err, "sign-up stores a profile")
	assert.Equal(t, "Ana Lima", profile.DisplayName)

	p.set("ana@example.ao", billing.Status{Subscribed: true, ProductRef: "prod_Tv0tsFmy8S2qyY"})
	sc, err := app.Sessions.SignIn(ctx, "ana@example.ao", "Segredo123")
	require.NoError(t, err)
	require.NotNil(t, sc.Plan())
	assert.Equal(t, plans.Basic, sc.Plan().ID)

	for i := range 3 {
		_, err := app.Workspace.CreateProject(ctx, sc, domain.Project{Name: "Obra " + string(rune('A'+i))})
		require.NoError(t, err)
	}
	_, err = app.Workspace.CreateProject(ctx, sc, domain.Project{Name: "Obra D"})
	require.ErrorIs(t, err, entitlement.ErrLimitExceeded)

	usage, err := app.Workspace.ProjectUsage(ctx, sc)
	require.NoError(t, err)
	assert.Equal(t, int64(3), usage.Current)
	assert.Equal(t, 100, usage.Percentage())

	hits, err := app.Workspace.Search(ctx, sc, "obra")
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	dash, err := app.Workspace.Dashboard(ctx, sc)
	require.NoError(t, err)
	assert.Equal(t, 3, dash.ProjectCount)

	rep := app.Diagnose(ctx, sc.Token())
	assert.True(t, rep.Database.Connected)
	assert.True(t, rep.Auth.Authenticated)
	assert.Equal(t, "ana@example.ao", rep.Auth.Email)
	assert.True(t, rep.OK())

	require.NoError(t, app.Sessions.SignOut(ctx, sc.Token()))
	assert.False(t, app.Diagnose(ctx, sc.Token()).Auth.Authenticated)
}

func TestAppRefreshOnBillingChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	app, p, _ := newApp(t, testConfig())

	u, err := app.Auth.SignUp(ctx, auth.SignUpParams{
		Email: "rui@example.ao", Password: "Segredo123", PasswordConfirmation: "Segredo123",
	})
	require.NoError(t, err)

	sc, err := app.Sessions.SignIn(ctx, "rui@example.ao", "Segredo123")
	require.NoError(t, err)
	assert.Nil(t, sc.Plan())

	p.set("rui@example.ao", billing.Status{Subscribed: true, ProductRef: "prod_Tv0vGzZXyKzPmq"})
	assert.Equal(t, 1, app.Sessions.RefreshUser(ctx, u.ID))
	require.NotNil(t, sc.Plan())
	assert.Equal(t, plans.Professional, sc.Plan().ID)
}

func TestAppResetPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	app, _, m := newApp(t, testConfig())

	_, err := app.Auth.SignUp(ctx, auth.SignUpParams{
		Email: "ze@example.ao", Password: "Segredo123", PasswordConfirmation: "Segredo123",
	})
	require.NoError(t, err)

	require.NoError(t, app.ResetPassword(ctx, "ze@example.ao"))
	link := m.links["ze@example.ao"]
	assert.True(t, strings.HasPrefix(link, "https://app.ngolasuite.ao/redefinir-senha?"), link)
	assert.Contains(t, link, auth.ResetTokenParam+"=")
}

func TestAppHandler(t *testing.T) {
	t.Parallel()
	app, _, _ := newApp(t, testConfig())
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	tests := []struct {
		name   string
		method string
		path   string
		code   int
		checks map[string]string
	}{
		{"liveness", http.MethodGet, "/healthz", http.StatusOK, nil},
		{"readiness", http.MethodGet, "/readyz", http.StatusOK, map[string]string{"database": "ok"}},
		{"no webhooks for stripe", http.MethodPost, "/webhooks/billing", http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.code, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(httpserver.RequestIDHeader))
			if tt.code != http.StatusOK {
				return
			}
			var rep httpserver.ReadinessReport
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
			assert.Equal(t, "ok", rep.Status)
			assert.Equal(t, tt.checks, rep.Checks)
		})
	}
}

func TestAppConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ngola.Config)
		opts   []ngola.Option
		err    error
	}{
		{
			name:   "unknown billing provider",
			mutate: func(c *ngola.Config) { c.BillingProvider = "multicaixa" },
			err:    ngola.ErrUnknownBillingProvider,
		},
		{
			name: "production without secret",
			mutate: func(c *ngola.Config) {
				c.Environment = logger.EnvProduction
				c.Auth.TokenSecret = ""
			},
			opts: []ngola.Option{ngola.WithBillingProvider(&provider{})},
			err:  ngola.ErrMissingSecret,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)
			opts := append([]ngola.Option{ngola.WithLogger(logger.Discard())}, tt.opts...)

			app, err := ngola.New(context.Background(), cfg, opts...)
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, app)
		})
	}
}

func TestAppGeneratesSecretOutsideProduction(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Auth.TokenSecret = ""
	app, _, _ := newApp(t, cfg)
	assert.NotNil(t, app.Auth)
}
