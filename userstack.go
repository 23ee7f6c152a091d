package userstack

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/userstack/userstack-go/pkg/api"
	"github.com/userstack/userstack-go/pkg/logger"
	"github.com/userstack/userstack-go/pkg/session"
	"github.com/userstack/userstack-go/pkg/store"
)

// Config holds everything needed to wire the SDK. Load it with
// pkg/config or populate it directly.
type Config struct {
	BaseURL string `env:"USERSTACK_BASE_URL" envDefault:"https://api.userstack.dev/v1"`
	AppID   string `env:"USERSTACK_APP_ID,required"`

	// APIKey enables privileged server-side operations (Verify,
	// privileged Summary). Leave empty in client-side deployments.
	APIKey string `env:"USERSTACK_API_KEY" envDefault:""`

	// TierField overrides the response field carrying the tier label
	// for deployments that name it "plan" or "package".
	TierField string `env:"USERSTACK_TIER_FIELD" envDefault:""`

	RequestTimeout  time.Duration `env:"USERSTACK_REQUEST_TIMEOUT" envDefault:"10s"`
	StorageKey      string        `env:"USERSTACK_STORAGE_KEY" envDefault:"_us_session"`
	StalenessWindow time.Duration `env:"USERSTACK_STALENESS_WINDOW" envDefault:"90s"`
}

// App is the embedding application's entry point: a configured remote
// client plus the session cache manager behind one thin surface.
type App struct {
	client  *api.Client
	manager *session.Manager
	log     *slog.Logger
}

// Option is a functional option for configuring the App
type Option func(*appOptions)

type appOptions struct {
	store      store.Store
	logger     *slog.Logger
	httpClient *http.Client
}

// WithStore sets the persistence store. Defaults to a FileStore under
// the user cache directory, falling back to memory when no cache
// directory is available.
func WithStore(s store.Store) Option {
	return func(o *appOptions) {
		if s != nil {
			o.store = s
		}
	}
}

// WithLogger sets the structured logger. Defaults to JSON output at
// info level via pkg/logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *appOptions) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithHTTPClient sets a custom HTTP client for the remote calls
func WithHTTPClient(client *http.Client) Option {
	return func(o *appOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// New wires the SDK from configuration. Call Bootstrap afterwards to
// adopt a previously persisted session.
func New(cfg Config, opts ...Option) (*App, error) {
	options := &appOptions{
		logger: logger.New(logger.WithProduction("userstack")),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.store == nil {
		options.store = defaultStore()
	}

	clientOpts := []api.Option{
		api.WithTimeout(cfg.RequestTimeout),
	}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, api.WithAPIKey(cfg.APIKey))
	}
	if cfg.TierField != "" {
		clientOpts = append(clientOpts, api.WithTierField(cfg.TierField))
	}
	if options.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(options.httpClient))
	}

	client, err := api.New(cfg.BaseURL, cfg.AppID, clientOpts...)
	if err != nil {
		return nil, err
	}

	manager, err := session.New(client, options.store,
		session.WithConfig(session.Config{
			StorageKey:      cfg.StorageKey,
			StalenessWindow: cfg.StalenessWindow,
		}),
		session.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		client:  client,
		manager: manager,
		log:     options.logger,
	}, nil
}

// defaultStore prefers durable file storage so the session survives
// process restarts, the way a browser embedder keeps it in a cookie.
func defaultStore() store.Store {
	dir, err := os.UserCacheDir()
	if err != nil {
		return store.NewMemoryStore(0)
	}
	fs, err := store.NewFileStore(filepath.Join(dir, "userstack"))
	if err != nil {
		return store.NewMemoryStore(0)
	}
	return fs
}

// Bootstrap adopts the persisted session record: directly when fresh,
// via one server refresh when stale.
func (a *App) Bootstrap(ctx context.Context) session.Record {
	return a.manager.Bootstrap(ctx)
}

// Identify exchanges a credential for a fresh session. The one
// operation whose remote failure is returned to the caller.
func (a *App) Identify(ctx context.Context, credential string, cfg session.IdentifyConfig) (session.Record, error) {
	return a.manager.Identify(ctx, credential, cfg)
}

// Refresh opportunistically re-fetches the current session's record;
// failures are absorbed.
func (a *App) Refresh(ctx context.Context) session.Record {
	return a.manager.Refresh(ctx)
}

// SetGroup assigns the session to a group; a missing session is a
// logged no-op.
func (a *App) SetGroup(ctx context.Context, groupID string) session.Record {
	return a.manager.SetGroup(ctx, groupID)
}

// Upgrade starts a plan upgrade and returns the checkout redirect URL
// the embedder should navigate to ("" when nothing to do).
func (a *App) Upgrade(ctx context.Context, planID, successURL, cancelURL string) string {
	return a.manager.Upgrade(ctx, planID, successURL, cancelURL)
}

// Forget clears the session locally. Never a network call.
func (a *App) Forget(ctx context.Context) {
	a.manager.Forget(ctx)
}

// Summary fetches the application's usage summary payload.
func (a *App) Summary(ctx context.Context) (map[string]any, error) {
	return a.client.Summary(ctx)
}

// Subscribe registers an observer invoked synchronously after every
// state change. The returned function removes the subscription.
func (a *App) Subscribe(fn func(session.Record)) func() {
	return a.manager.Subscribe(fn)
}

// Current returns a copy of the cached session record.
func (a *App) Current() session.Record { return a.manager.Current() }

// SessionID returns the cached session identifier ("" when anonymous).
func (a *App) SessionID() string { return a.manager.SessionID() }

// Tier returns the cached entitlement tier.
func (a *App) Tier() string { return a.manager.Tier() }

// Flags returns a copy of the cached feature flags.
func (a *App) Flags() map[string]any { return a.manager.Flags() }

// Client exposes the underlying remote client for advanced use.
func (a *App) Client() *api.Client { return a.client }
