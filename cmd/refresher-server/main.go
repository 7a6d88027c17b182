package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/refresher/internal/bootstrap"
	"github.com/at-ishikawa/refresher/internal/config"
	"github.com/at-ishikawa/refresher/internal/metrics"
	"github.com/at-ishikawa/refresher/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("godotenv.Load() > %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	ctx := context.Background()
	app := bootstrap.New()
	components, err := bootstrap.Build(ctx, app, cfg, logger)
	if err != nil {
		_ = app.Close(ctx)
		return fmt.Errorf("bootstrap.Build() > %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	handler, m, err := newHTTPHandler(components, reg, logger)
	if err != nil {
		_ = app.Close(ctx)
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	runErr := app.Run(ctx, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("starting server", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("srv.ListenAndServe() > %w", err)
			}
			return nil
		})
		g.Go(func() error {
			if err := components.LoadModel(gctx); err != nil {
				logger.Warn("the model is not available, the assistant uses offline responses", slog.Any("error", err))
			}
			m.SetModelReady(components.Model.Status().Ready)
			return nil
		})
		return g.Wait()
	})
	return errors.Join(runErr, app.Close(ctx))
}

func loadConfig() (*config.Config, error) {
	configFile := os.Getenv("REFRESHER_CONFIG")
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// newHTTPHandler builds the API router. The quiz session records through the metrics so answers are counted.
func newHTTPHandler(components *bootstrap.Components, reg *prometheus.Registry, logger *slog.Logger) (http.Handler, *metrics.Metrics, error) {
	m := metrics.New(reg)
	h, err := server.NewHandler(server.Dependencies{
		Catalog:      components.Catalog,
		Store:        components.Store,
		Analytics:    components.Analytics,
		Assistant:    components.Assistant,
		Session:      components.NewSession(m.Recorder(components.Store)),
		QuizDefaults: components.QuizConfig(),
		Metrics:      m,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("server.NewHandler() > %w", err)
	}
	return server.NewRouter(h, reg, components.Config.Server.CORS.AllowedOrigins), m, nil
}
