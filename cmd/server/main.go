package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/infrastructure/httpapi"
	"github.com/destinyy00/skillswap/infrastructure/storage"
	"github.com/destinyy00/skillswap/internal"
	"github.com/destinyy00/skillswap/observability"
	"github.com/destinyy00/skillswap/relay"
	"github.com/destinyy00/skillswap/runtime/workers"
	"github.com/destinyy00/skillswap/services"
	"github.com/destinyy00/skillswap/transport/ws"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	options := buildBadgerOpts(config, logger, ctx)

	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeCfg := bluge.DefaultConfig(config.BlugeFilepath)
	blugeWriter, err := bluge.OpenWriter(blugeCfg)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Relay core & monitoring
	registry := relay.NewRegistry()
	core := relay.NewRelay(logger, registry)
	monitoring := observability.NewMonitoringManager(logger, registry)
	core.Instrument(monitoring)

	// 4. Repositories & services
	userRepository := storage.NewUserRepository(db)
	sessionRepository := storage.NewSessionRepository(db, logger)
	skillRepository := storage.NewSkillRepository(db, logger)
	skillIndex := storage.NewSkillIndex(blugeWriter, logger)

	issuer := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	verifier := auth.NewJWTVerifier(config.AuthSecret)

	notificationService := services.NewNotificationService(logger, core)
	authService := services.NewAuthService(userRepository, issuer)
	sessionService := services.NewSessionService(logger, sessionRepository, notificationService)
	skillService := services.NewSkillService(logger, skillRepository, skillIndex)

	// 5. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewMonitoringWorker(monitoring, config.MetricInterval),
		workers.NewHeartbeatWorker(logger, config.MetricInterval, monitoring),
		workers.NewReporterWorker(logger, monitoring, config.MetricInterval*6),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 7. HTTP server (REST + websocket upgrade endpoint)
	router := httpapi.NewRouter(httpapi.Deps{
		Log:           logger,
		Verifier:      verifier,
		Auth:          httpapi.NewAuthHandler(logger, authService),
		Users:         httpapi.NewUserHandler(logger, userRepository),
		Skills:        httpapi.NewSkillHandler(logger, skillService, config.SearchResultLimit),
		Sessions:      httpapi.NewSessionHandler(logger, sessionService),
		Notifications: httpapi.NewNotificationHandler(logger, notificationService),
		Stats:         httpapi.NewStatsHandler(monitoring),
		WebSocket:     ws.NewHandler(logger, verifier, registry, core, config.HandshakeTimeout, config.ConnectionBufferSize),
	})

	server := &http.Server{
		Addr:    config.Addr(),
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", config.Addr(), "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup (Graceful Shutdown)
	// Shutdown drains plain HTTP requests; hijacked websocket connections
	// are not tracked by it, so Close follows to tear them down. Each
	// connection leaves its routing group on the way out.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Forced shutdown", "error", err)
	}
	_ = server.Close()
	sup.Stop()
	<-supDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
