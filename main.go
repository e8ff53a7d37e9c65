package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/tourney-bot/app/eventbus"
	"github.com/Black-And-White-Club/tourney-bot/app/modules/tournament"
	tournamentdomain "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/challonge"
	tournamentmetrics "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/metrics"
	"github.com/Black-And-White-Club/tourney-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Observability)
	slog.SetDefault(logger)
	tracer := otel.Tracer(cfg.Observability.ServiceName)

	// Database
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	// Event bus
	var bus eventbus.EventBus
	if cfg.NATS.URL == "" {
		logger.WarnContext(ctx, "NATS url not set, running the event bus in memory")
		bus = eventbus.NewInMemoryEventBus(logger)
	} else {
		bus, err = eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create event bus", slog.Any("error", err))
			os.Exit(1)
		}
	}
	defer bus.Close()

	if err := eventbus.InitializeStreams(ctx, bus, logger); err != nil {
		logger.ErrorContext(ctx, "Failed to initialize streams", slog.Any("error", err))
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := tournamentmetrics.NewPrometheus(registry)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// Watermill router
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 15 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create router", slog.Any("error", err))
		os.Exit(1)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(logger),
		}.Middleware,
	)

	module, err := tournament.NewTournamentModule(ctx, tournament.Dependencies{
		Logger:   logger,
		Tracer:   tracer,
		Metrics:  metrics,
		EventBus: bus,
		Router:   router,
		Registry: registry,
		DB:       db,
		Bracket:  newBracketClient(ctx, cfg.Challonge, logger, metrics),
	}, ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create tournament module", slog.Any("error", err))
		os.Exit(1)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go module.Run(ctx, &wg)

	go func() {
		if err := router.Run(ctx); err != nil {
			logger.ErrorContext(ctx, "Watermill router stopped", slog.Any("error", err))
			cancel()
		}
	}()

	var server *http.Server
	if cfg.Observability.MetricsAddress != "" {
		server = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           opsHandler(registry, db),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.InfoContext(ctx, "Serving metrics", slog.String("address", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "Metrics server failed", slog.Any("error", err))
			}
		}()
	}

	logger.InfoContext(ctx, "tourney-bot started")
	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to stop metrics server", slog.Any("error", err))
		}
	}
	if err := module.Close(); err != nil {
		logger.Error("Failed to stop tournament module", slog.Any("error", err))
	}
	wg.Wait()

	logger.Info("Application shut down gracefully")
}

func newLogger(cfg config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
}

// newBracketClient returns nil when no api key is configured. A failed
// credential check is logged but does not stop the bot.
func newBracketClient(ctx context.Context, cfg config.ChallongeConfig, logger *slog.Logger, metrics tournamentmetrics.TournamentMetrics) tournamentdomain.BracketClient {
	if cfg.APIKey == "" {
		logger.InfoContext(ctx, "Challonge api key not set, remote brackets disabled")
		return nil
	}

	client, err := challonge.NewClient(challonge.Config{
		APIKey:            cfg.APIKey,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}, logger, metrics)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid Challonge configuration, remote brackets disabled", slog.Any("error", err))
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := client.ListTournaments(checkCtx); err != nil {
		logger.WarnContext(ctx, "Challonge credential check failed", slog.Any("error", err))
	}
	return client
}

func opsHandler(registry *prometheus.Registry, db *bun.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
