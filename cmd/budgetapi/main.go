package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"budgetapi/internal/auth"
	"budgetapi/internal/backend"
	"budgetapi/internal/cache"
	"budgetapi/internal/cli"
	"budgetapi/internal/config"
	"budgetapi/internal/core"
	apphttp "budgetapi/internal/http"
	"budgetapi/internal/log"
	"budgetapi/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	accounts, err := auth.NewAccounts(bcrypt.DefaultCost, auth.Credential{
		Username:     cfg.AppUsername,
		Password:     cfg.AppPassword,
		PasswordHash: cfg.AppPasswordHash,
	})
	if err != nil {
		return err
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET_KEY is not set; tokens will not survive a restart")
	}
	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	overviews := cache.NewLRUCache[core.AnnualOverview](cfg.OverviewCacheSize, cfg.OverviewCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(overviews)
	caches.StartCleanup(max(cfg.OverviewCacheTTL, time.Minute))
	defer caches.Stop()

	opts := services.Options{OverviewCache: overviews, Logger: logger}
	if res.Publisher != nil {
		opts.Publisher = res.Publisher
	}
	ledger := services.NewLedgerService(res.Store, opts)
	defer ledger.Close()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:            ledger,
		Accounts:          accounts,
		Tokens:            tokens,
		Logger:            logger,
		CORSOrigins:       cfg.CORSOrigins,
		TrustedProxies:    cfg.TrustedProxies,
		LoginRateLimit:    cfg.LoginRateLimit,
		LoginFailureDelay: cfg.LoginFailureDelay,
		CacheStats:        overviews.Stats,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budget API server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
