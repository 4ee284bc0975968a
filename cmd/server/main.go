// Package main starts the basetutor local API: it opens the store, wires
// repositories, services and handlers, and serves them on a loopback address
// until interrupted.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/basetutor/internal/config"
	"github.com/atinyakov/basetutor/internal/db"
	"github.com/atinyakov/basetutor/internal/logger"
	"github.com/atinyakov/basetutor/internal/passwordhash"
	"github.com/atinyakov/basetutor/internal/prefs"
	"github.com/atinyakov/basetutor/internal/repository"
	"github.com/atinyakov/basetutor/internal/server/handler/http"
	"github.com/atinyakov/basetutor/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Parse config file, environment and command-line flags.
	options, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	if err := run(options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(options *config.Options, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, _, err := net.SplitHostPort(options.Addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", options.Addr, err)
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return fmt.Errorf("address %q is not a loopback address", options.Addr)
	}

	hasher, err := passwordhash.New(options.PasswordHasher)
	if err != nil {
		return err
	}

	// Open the store; the schema is created or migrated on open.
	conn, err := db.Open(ctx, options.DatabaseDriver, options.DatabaseDSN, zapLogger)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer conn.Close()

	// Initialize repositories.
	authRepo := repository.NewSQLAuthRepository(conn)
	historyRepo := repository.NewSQLHistoryRepository(conn)
	tutoringRepo := repository.NewSQLTutoringRepository(conn)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, hasher, zapLogger)
	historyService := service.NewHistoryService(historyRepo, zapLogger)
	tutoringService := service.NewTutoringService(tutoringRepo, authRepo, zapLogger)

	// Create HTTP handlers and the router.
	router := http.NewRouter(
		&http.AuthHandler{AuthService: authService},
		&http.HistoryHandler{
			HistoryService: historyService,
			Cache:          prefs.NewHistoryCache(options.HistoryCachePath),
		},
		&http.TutoringHandler{TutoringService: tutoringService},
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if options.HistoryRetention > 0 {
		db.StartHistoryCleaner(gctx, conn, options.CleanerInterval, options.HistoryRetention, zapLogger)
	}

	g.Go(func() error {
		zapLogger.Info("starting local API", zap.String("addr", options.Addr),
			zap.String("driver", options.DatabaseDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zapLogger.Info("shutting down local API")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
