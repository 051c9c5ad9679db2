// Package main is the entry point for the auth server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/carelink/auth-server/docs"
	"github.com/carelink/auth-server/internal/api"
	"github.com/carelink/auth-server/internal/core/service"
	"github.com/carelink/auth-server/internal/infrastructure/config"
	mongodb "github.com/carelink/auth-server/internal/infrastructure/db/mongo"
	"github.com/carelink/auth-server/internal/infrastructure/queue"
	"github.com/carelink/auth-server/internal/infrastructure/security"
	"github.com/carelink/auth-server/pkg/logger"
)

const (
	serviceName     = "auth-server"
	shutdownTimeout = 10 * time.Second
)

// @title Auth Server API
// @version 1.0
// @description User accounts, password login and bearer-token authorization.
// @host localhost:3000
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Pretty: true})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(loggerOptions(cfg))

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("auth server stopped")
	}
}

func loggerOptions(cfg *config.Config) logger.Options {
	return logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	accounts := mongodb.NewAccountRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, accounts, auditRepo); err != nil {
		return err
	}

	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTTTL == 0 {
		log.Warn().Msg("JWT_TTL is 0, issued tokens never expire")
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	// Audit workers outlive the HTTP server so queued events can drain.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(auditRepo, logger.For("audit")), logger.For("dispatcher"))
	dispatcher.Start(auditCtx)
	defer func() {
		dispatcher.Close()
		stopAudit()
	}()

	e := api.NewRouter(api.Deps{
		Log:            log,
		AuthService:    service.NewAuthService(accounts, hasher, tokens, tokens, dispatcher, logger.For("auth")),
		AccountService: service.NewAccountService(accounts, hasher, dispatcher, logger.For("account")),
		Mongo:          client,
		Production:     cfg.IsProduction(),
		AllowOrigins:   cfg.HTTP.AllowOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
