package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/healthcover-api/config"
	"github.com/ErlanBelekov/healthcover-api/internal/abha"
	"github.com/ErlanBelekov/healthcover-api/internal/email"
	"github.com/ErlanBelekov/healthcover-api/internal/health"
	"github.com/ErlanBelekov/healthcover-api/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/healthcover-api/internal/log"
	"github.com/ErlanBelekov/healthcover-api/internal/metrics"
	"github.com/ErlanBelekov/healthcover-api/internal/password"
	"github.com/ErlanBelekov/healthcover-api/internal/token"
	httptransport "github.com/ErlanBelekov/healthcover-api/internal/transport/http"
	"github.com/ErlanBelekov/healthcover-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/healthcover-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(cfg.Env, cfg.SlogLevel(), os.Stdout)

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("db connected and migrated")

	hasher, err := password.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		pool.Close()
		log.Fatalf("hasher: %v", err)
	}
	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, hasher, issuer,
		email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger), logger)

	// Insurance
	policyUsecase := usecase.NewPolicyUsecase(postgres.NewPolicyRepository(pool))

	// ABHA
	abhaUsecase := usecase.NewABHAUsecase(abha.NewClient(cfg.ABHABaseURL, cfg.ABHAAPIKey, cfg.ABHATimeout))

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer,
		health.Dependency{Name: "postgres", Ping: pool})

	router := httptransport.NewRouter(logger, httptransport.Handlers{
		Auth:   handler.NewAuthHandler(authUsecase, logger),
		Policy: handler.NewPolicyHandler(policyUsecase, logger),
		ABHA:   handler.NewABHAHandler(abhaUsecase, logger),
	}, authUsecase, userRepo, httptransport.RouterConfig{RequestTimeout: cfg.RequestTimeout})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "port", cfg.Port)
		return listen(srv)
	})
	g.Go(func() error {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		return listen(metricsSrv)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		pool.Close()
		os.Exit(1)
	}
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
