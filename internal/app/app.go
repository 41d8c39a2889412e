package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	auditrepo "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/audit"
	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/entitystore"
	staffrepo "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/staff"
	jwtauth "github.com/ayodelan/schoolbase-backend/internal/auth"
	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/config"
	"github.com/ayodelan/schoolbase-backend/internal/export"
	"github.com/ayodelan/schoolbase-backend/internal/lifecycle"
	authsvc "github.com/ayodelan/schoolbase-backend/internal/service/auth"
	"github.com/ayodelan/schoolbase-backend/internal/translate"
	"github.com/ayodelan/schoolbase-backend/internal/transport/middleware"
	"github.com/ayodelan/schoolbase-backend/internal/transport/rest"
	"github.com/ayodelan/schoolbase-backend/internal/validate"
)

// Run is the application entry point. It loads configuration, connects to
// the database, runs migrations, wires the lifecycle engine and HTTP
// transport, and serves until the context is canceled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	cat := catalog.Default()

	store := entitystore.New(pool, cat)
	auditRepo := auditrepo.New(pool)
	staffRepo := staffrepo.New(pool)
	txManager := postgres.NewTxManager(pool)
	translator := translate.New(cat)

	engine := lifecycle.New(logger, cat, store, auditRepo, txManager, translator)
	validate.Register(engine)

	gatherer := export.New(logger, cat, store)

	jwtManager := jwtauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	authService := authsvc.NewService(logger, staffRepo, jwtManager)

	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	authHandler := rest.NewAuthHandler(authService, logger)
	entityHandler := rest.NewEntityHandler(logger, cat, engine, gatherer, auditRepo)

	mux := rest.NewRouter(healthHandler, authHandler, entityHandler)

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtManager),
		limiter.Limit(600),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown waits for in-flight requests, so the deferred pool close
	// only ever runs on a drained server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped")
	return nil
}
