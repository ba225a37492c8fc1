package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/product-search/api/openapi"
	"github.com/donaldgifford/product-search/internal/api/handlers"
	"github.com/donaldgifford/product-search/internal/api/middleware"
	"github.com/donaldgifford/product-search/internal/engine"
	"github.com/donaldgifford/product-search/internal/notify"
	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/telemetry"
	"github.com/donaldgifford/product-search/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, Version, log)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	client := newCatalogClient(&cfg.Catalog)

	var shared notify.Multi
	shared = append(shared, notify.NewLogNotifier(log))
	var webhook *notify.WebhookNotifier
	if wh := cfg.Notifications.Webhook; wh.Enabled {
		opts := []notify.WebhookOption{notify.WithWebhookLogger(log)}
		if wh.AllNotices {
			opts = append(opts, notify.WithAllNotices())
		}
		webhook = notify.NewWebhookNotifier(wh.URL, opts...)
		shared = append(shared, webhook)
	}

	engOpts := []engine.EngineOption{
		engine.WithLogger(log),
		engine.WithNotifier(shared),
		engine.WithRunnerOptions(runnerOptions(&cfg.Session)...),
		engine.WithNoticeBuffer(cfg.Session.NoticeBuffer),
		engine.WithIdleTTL(cfg.Session.IdleTTL),
		engine.WithRetention(cfg.Snapshots.Retention),
	}
	if st != nil {
		engOpts = append(engOpts, engine.WithStore(st))
	}
	eng := engine.NewEngine(
		session.NewRegistry(session.WithMaxSessions(cfg.Session.MaxSessions)),
		newFetcher(client, &cfg.Catalog),
		engOpts...,
	)

	sched, err := engine.NewScheduler(eng, cfg.Session.EvictInterval, cfg.Snapshots.PruneInterval, log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	sched.Start()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(eng)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaCfg := huma.DefaultConfig("Product Search API", Version)
	humaCfg.Info.Description = "Paged product search sessions with snapshot and restore."
	api := humaecho.New(e, humaCfg)

	handlers.RegisterSessionRoutes(api, handlers.NewSessionsHandler(eng))
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(eng))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(client))
	openapi.RegisterRoutes(e, api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	errc := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		log.Error("server error", "err", err)
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := e.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down server: %w", err))
	}
	<-sched.Stop().Done()
	eng.Shutdown(shutdownCtx)
	if webhook != nil {
		webhook.Wait()
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down telemetry: %w", err))
	}

	log.Info("server stopped")
	return errors.Join(errs...)
}
