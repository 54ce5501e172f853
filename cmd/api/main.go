package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-facilitator/config"
	httpHandler "payment-facilitator/internal/adapter/http/handler"
	"payment-facilitator/internal/adapter/processor"
	"payment-facilitator/internal/adapter/storage/memory"
	pgStorage "payment-facilitator/internal/adapter/storage/postgres"
	redisStorage "payment-facilitator/internal/adapter/storage/redis"
	"payment-facilitator/internal/core/ports"
	"payment-facilitator/internal/service"
	"payment-facilitator/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("base_currency", cfg.Settlement.BaseCurrency).
		Msg("Starting Merchant Payment Facilitator")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var healthCheckers []ports.HealthChecker

	// Optional PostgreSQL audit store
	var auditRepo ports.AuditRepository
	if cfg.Database.Enabled {
		if cfg.Database.AutoMigrate {
			if err := pgStorage.RunMigrations(cfg.Database.DSN(), log); err != nil {
				log.Fatal().Err(err).Msg("Failed to run migrations")
			}
		}
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")

		auditRepo = pgStorage.NewAuditRepository(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	}

	// Optional Redis rate limiting
	var rateLimitStore ports.RateLimitStore
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	// Ledger and processor
	ledger := memory.NewLedger(cfg.Settlement.BaseCurrency, logger.Component(log, "ledger"))
	signer := service.NewHMACRequestSigner(cfg.Processor.AccessKey, cfg.Processor.SecretKey)
	gateway := processor.NewHTTPGateway(
		cfg.Processor,
		signer,
		&http.Client{Timeout: cfg.Processor.Timeout},
		logger.Component(log, "processor"),
	)

	// Business services
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))
	merchantSvc := service.NewMerchantService(ledger, auditSvc, log)
	settlementSvc := service.NewSettlementService(ledger, gateway, auditSvc, cfg.Settlement, logger.Component(log, "settlement"))

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		MerchantSvc:    merchantSvc,
		SettlementSvc:  settlementSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		BaseCurrency:   cfg.Settlement.BaseCurrency,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		if err := auditSvc.Wait(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Audit log drain timed out")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}

	log.Info().Msg("Server exited")
}
