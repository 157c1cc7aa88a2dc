package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jjenkins/agencydash/internal/auth"
	"github.com/jjenkins/agencydash/internal/config"
	"github.com/jjenkins/agencydash/internal/handlers"
	"github.com/jjenkins/agencydash/internal/logging"
	"github.com/jjenkins/agencydash/internal/quota"
	"github.com/jjenkins/agencydash/internal/reveal"
	"github.com/jjenkins/agencydash/internal/service"
	"github.com/jjenkins/agencydash/internal/store"
	"github.com/jjenkins/agencydash/internal/templates"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agency directory web server",
	Long:  `Start the web server for browsing agencies and revealing contact details.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to run the server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, logger, closer := setup()
	defer closer.Close()
	serverLog := logging.Component(logger, "server")

	if port != "" {
		cfg.Server.Port = port
	}
	loc, _ := cfg.Location()
	sessionTTL, _ := cfg.SessionTTL()
	shutdownTimeout, _ := cfg.ShutdownTimeout()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection
	db, err := store.NewDB(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		serverLog.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		serverLog.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize stores
	agencyStore := store.NewAgencyStore(db)
	contactStore := store.NewContactStore(db)

	usageStore, reveals, cleanup, err := newQuotaStore(ctx, cfg, db, serverLog)
	if err != nil {
		serverLog.Fatalf("Failed to initialize quota store: %v", err)
	}
	defer cleanup()

	ledger, err := quota.New(usageStore,
		quota.WithLimit(cfg.Quota.DailyLimit),
		quota.WithLocation(loc),
		quota.WithLogger(logging.Component(logger, "quota")),
	)
	if err != nil {
		serverLog.Fatalf("Failed to create quota ledger: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	revealService := reveal.NewService(ledger, contactStore,
		reveal.WithMetrics(reveal.NewMetrics(registry)),
		reveal.WithLogger(logging.Component(logger, "reveal")),
	)
	metricsService := service.NewMetricsService(db, ledger, reveals)

	verifier := auth.NewVerifier(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.Audience)
	requireUser := auth.RequireUser(verifier)
	templates.AppName = cfg.Server.AppName

	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: logger.Out,
	}))

	// Routes
	app.Get("/", requireUser, handlers.HomeHandler(metricsService))

	// Session routes
	app.Get("/sign-in", handlers.SignInPageHandler(verifier))
	app.Post("/sign-in", handlers.SignInHandler(verifier, handlers.SessionOptions{
		TTL:    sessionTTL,
		Secure: !cfg.IsDevelopment(),
	}))
	app.Post("/sign-out", handlers.SignOutHandler())

	// Directory routes
	app.Get("/agencies", requireUser, handlers.AgenciesHandler(agencyStore))
	app.Get("/contacts", requireUser, handlers.ContactsHandler(contactStore))
	app.Post("/contacts/:id/reveal", handlers.RevealHandler(revealService, verifier))
	app.Get("/usage", requireUser, handlers.UsageHandler(ledger))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		<-ctx.Done()
		serverLog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			serverLog.WithError(err).Error("Server shutdown failed")
		}
	}()

	serverLog.WithFields(log.Fields{
		"quota_backend": cfg.Quota.Backend,
		"daily_limit":   cfg.Quota.DailyLimit,
		"timezone":      loc.String(),
	}).Infof("Starting server on :%s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		serverLog.Fatalf("Failed to start server: %v", err)
	}
}

// newQuotaStore builds the configured usage backend. reveals is nil unless
// the backend can total reveals across users.
func newQuotaStore(ctx context.Context, cfg *config.Config, db *sql.DB, logger *log.Entry) (quota.Store, service.RevealCounter, func(), error) {
	switch cfg.Quota.Backend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}

		logger.Info("Using redis quota backend")
		return quota.NewRedisStore(client), nil, func() { _ = client.Close() }, nil

	case config.BackendMemory:
		logger.Warn("Using in-memory quota backend; counts are lost on restart and not shared between instances")
		return quota.NewMemoryStore(), nil, func() {}, nil

	case config.BackendPostgres:
		usage := store.NewUsageStore(db)
		return usage, usage, func() {}, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown quota backend %q", cfg.Quota.Backend)
}
