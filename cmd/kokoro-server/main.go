// Command kokoro-server serves the kokoro profile site.
//
// @title                       kokoro API
// @version                     1.0
// @description                 Public thoughts and contacts profiles.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/api"
	"github.com/kokoro-wiki/kokoro/internal/api/handler"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
	"github.com/kokoro-wiki/kokoro/internal/core/service"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/config"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/db"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/db/memory"
	kredis "github.com/kokoro-wiki/kokoro/internal/infrastructure/db/redis"
	khttp "github.com/kokoro-wiki/kokoro/internal/infrastructure/http"
	"github.com/kokoro-wiki/kokoro/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "kokoro-server",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set; using a random secret, sessions will not survive a restart")
	}

	repos, err := db.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	checks := []handler.Check{{Name: repos.Driver, Ping: repos.Ping}}

	var sessions ports.SessionStore = memory.NewStore().Sessions()
	var views ports.ViewCache
	if cfg.Redis.Enabled {
		rdb, err := kredis.Connect(ctx, kredis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = kredis.NewSessionStore(rdb)
		views = kredis.NewViewCache(rdb, cfg.Redis.ViewCacheTTL)
		checks = append(checks, handler.Check{Name: "redis", Ping: kredis.Ping(rdb)})
	} else {
		log.Warn().Msg("redis disabled; session revocation is process-local and the view cache is off")
	}

	registry := service.NewRegistryService(repos.Profiles, views, logger.Component("registry"))
	ledger := service.NewLedgerService(registry, repos.Entries, views, logger.Component("ledger"))

	router := api.NewRouter(api.Dependencies{
		Auth:          service.NewAuthService(repos.Principals, sessions, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth")),
		Registry:      registry,
		Guard:         service.NewGuardService(registry, logger.Component("guard")),
		Ledger:        ledger,
		Public:        service.NewPublicService(registry, ledger, views, logger.Component("public")),
		Sessions:      sessions,
		Checks:        checks,
		JWTSecret:     cfg.JWTSecret,
		BaseURL:       cfg.BaseURL,
		SecureCookies: cfg.IsProduction(),
		Log:           logger.Component("http"),
	})

	log.Info().Str("store", repos.Driver).Str("env", cfg.Env).Msg("starting kokoro")
	return khttp.NewServer(router, cfg.Port, cfg.ShutdownTimeout, log).Run(ctx)
}
