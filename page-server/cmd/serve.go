package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anams/page-server/page-server/internal/host"
	"github.com/anams/page-server/pkg/config"
	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/predict"
	"github.com/anams/page-server/pkg/render"
	"github.com/anams/page-server/pkg/telemetry"
	"github.com/anams/page-server/pkg/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the page server",
	Long:  `Start the page server and its health endpoint on the configured ports.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("watch", false, "Push change events when the asset directory changes (file backend only)")
	serveCmd.Flags().Bool("models", false, "Load the classifier models and enable /api/predict")
	serveCmd.Flags().String("title", "Pages", "Title of the sidebar page")
	v.BindPFlag("assets.watch", serveCmd.Flags().Lookup("watch"))
	v.BindPFlag("models.enabled", serveCmd.Flags().Lookup("models"))
	v.BindPFlag("title", serveCmd.Flags().Lookup("title"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize OpenTelemetry
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	otelShutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:       "page-server",
		Enabled:           cfg.OTel.Enabled,
		CollectorEndpoint: cfg.OTel.CollectorEndpoint,
		SampleRatio:       cfg.OTel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}
	defer otelShutdown(context.Background())

	log := logger.New(logger.ComponentServer)

	store, hint, err := newStore(ctx, cfg, logger.New(logger.ComponentStorage))
	if err != nil {
		return err
	}
	reg, err := newRegistry(cfg, store)
	if err != nil {
		return err
	}
	renderer, err := render.New(hint)
	if err != nil {
		return err
	}

	opts := host.Options{
		Title:    v.GetString("title"),
		Registry: reg,
		Resolver: document.NewResolver(store, logger.New(logger.ComponentResolver)),
		Renderer: renderer,
		Store:    store,
		Routes:   routesFrom(cfg.Documents),
		Log:      log,
	}

	if cfg.Models.Enabled {
		modelDir, err := document.BaseDir(cfg.Models.Dir)
		if err != nil {
			return fmt.Errorf("failed to resolve model directory: %w", err)
		}
		models := predict.NewCache(ctx, modelDir, predict.DefaultModels, logger.New(logger.ComponentPredict))
		if !models.Ready() {
			log.Warn("No classifier model could be loaded; predictions will report unavailable models", "dir", modelDir)
		}
		opts.Predictor = models
	}

	srv := host.New(opts)

	var handler http.Handler = srv.Handler()
	if cfg.OTel.Enabled {
		handler = telemetry.WrapHandler(handler, "page-server")
	}

	server := &http.Server{
		Addr:        cfg.Service.Addr(),
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: /events streams for the life of the client
	}

	if cfg.Assets.Watch {
		if cfg.Assets.Backend != config.BackendFile {
			log.Warn("Asset watching needs the file backend, disabled", "backend", cfg.Assets.Backend)
		} else {
			w, err := watcher.New(watcher.DefaultConfig(hint, cfg.Assets.Suffix), logger.New(logger.ComponentWatcher))
			if err != nil {
				return err
			}
			changes, err := w.Start()
			if err != nil {
				return fmt.Errorf("failed to watch asset directory: %w", err)
			}
			defer w.Stop()
			go srv.WatchChanges(ctx, changes)
		}
	}

	healthServer := &http.Server{
		Addr:         cfg.Service.HealthAddr(),
		Handler:      srv.HealthHandler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down page server...")
		cancel()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Shutdown error", "error", err)
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Health server shutdown error", "error", err)
		}
		close(done)
	}()

	entries := reg.List(ctx)
	log.Section("STARTING PAGE SERVER")
	log.Info("Page server starting", "addr", cfg.Service.Addr())
	log.Info("Health server starting", "addr", cfg.Service.HealthAddr())
	log.Info("Assets", "backend", store.Backend(), "location", hint, "registry", reg.Mode())
	log.Info("Loaded documents", "count", len(entries))
	for _, e := range entries {
		log.Document(string(e.ID), "Registered", "name", e.Name, "location", store.Location(string(e.ID)))
	}
	if len(entries) == 0 {
		log.Warn(render.EmptyRegistryWarning)
	}
	for path, id := range srv.Routes() {
		log.Info("Route", "path", path, "document", id)
	}

	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health server error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	log.Info("Page server stopped")
	return nil
}
