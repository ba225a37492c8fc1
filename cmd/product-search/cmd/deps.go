package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/product-search/internal/catalog"
	"github.com/donaldgifford/product-search/internal/config"
	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/store"
)

// loadConfig reads the config file. A missing file is only an error when
// --config was given explicitly.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

// openStore opens the snapshot store selected by snapshots.backend. It
// returns nil when snapshots are disabled.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.SnapshotStore, error) {
	var (
		st  store.SnapshotStore
		err error
	)
	switch cfg.Snapshots.Backend {
	case config.BackendPostgres:
		var pg *store.PostgresStore
		pg, err = store.NewPostgresStore(ctx, cfg.Database.DSN(), int32(cfg.Database.PoolSize)) //nolint:gosec // validated pool size
		if err == nil {
			st = pg
		}
	case config.BackendSQLite:
		var lite *store.SQLiteStore
		lite, err = store.NewSQLiteStore(ctx, cfg.Snapshots.SQLitePath)
		if err == nil {
			st = lite
		}
	default:
		log.Info("snapshots disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s snapshot store: %w", cfg.Snapshots.Backend, err)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrating snapshot store: %w", err)
	}
	log.Info("snapshot store ready", "backend", cfg.Snapshots.Backend)
	return st, nil
}

// newCatalogClient builds the rate-limited catalog client with the
// configured authorization.
func newCatalogClient(cfg *config.CatalogConfig) *catalog.HTTPClient {
	var auth catalog.Authorizer
	switch cfg.Auth() {
	case config.AuthAPIKey:
		auth = catalog.APIKeyAuth{Key: cfg.APIKey}
	case config.AuthOAuth:
		var opts []catalog.OAuthOption
		if cfg.Scope != "" {
			opts = append(opts, catalog.WithScope(cfg.Scope))
		}
		auth = catalog.NewOAuthTokenProvider(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, opts...)
	}

	rl := cfg.RateLimit
	return catalog.NewHTTPClient(auth,
		catalog.WithSearchURL(cfg.SearchURL),
		catalog.WithPageSize(cfg.PageSize),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		catalog.WithRateLimiter(catalog.NewRateLimiter(rl.PerSecond, rl.Burst, rl.DailyLimit)),
	)
}

func newFetcher(client catalog.Client, cfg *config.CatalogConfig) *catalog.Fetcher {
	return catalog.NewFetcher(client,
		catalog.WithFetchLimit(cfg.PageSize),
		catalog.WithSort(cfg.Sort),
	)
}

func runnerOptions(cfg *config.SessionConfig) []session.RunnerOption {
	return []session.RunnerOption{
		session.WithTrigger(
			session.WithLookAhead(cfg.LookAhead),
			session.WithMinBatch(cfg.MinBatch),
		),
		session.WithUpdateBuffer(cfg.UpdateBuffer),
	}
}
