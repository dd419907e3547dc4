// Command api runs the sweet shop HTTP server.
//
// @title                       Sweet Shop API
// @version                     1.0
// @description                 Catalog, accounts and stock management for the sweet shop storefront.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/candycraft/sweetshop-api/internal/api"
	"github.com/candycraft/sweetshop-api/internal/api/handler"
	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
	"github.com/candycraft/sweetshop-api/internal/core/service"
	mongodb "github.com/candycraft/sweetshop-api/internal/infrastructure/db/mongo"
	redisdb "github.com/candycraft/sweetshop-api/internal/infrastructure/db/redis"
	"github.com/candycraft/sweetshop-api/internal/pkg/config"
	"github.com/candycraft/sweetshop-api/pkg/logger"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "sweetshop-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
		AppName:  "sweetshop-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	checks := map[string]handler.DependencyCheck{
		"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, db) },
	}

	var throttle ports.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redisdb.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.LockoutWindow)
		checks["redis"] = redisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttle disabled")
	}

	authSvc := service.NewAuthService(mongodb.NewUserRepository(db), service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.JWTExpiresIn,
		BcryptCost: cfg.BcryptCost,
	}, throttle, log.With().Str("component", "auth").Logger())
	sweetSvc := service.NewSweetService(mongodb.NewSweetRepository(db), log.With().Str("component", "inventory").Logger())

	if cfg.Seed.Enabled {
		if err := seedUsers(ctx, authSvc, cfg.Seed, log); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Dependencies{
		Auth:   authSvc,
		Tokens: authSvc,
		Sweets: sweetSvc,
		Checks: checks,
		Logger: log,
	}, api.Options{
		AllowedOrigins:       cfg.HTTP.AllowedOrigins,
		AuthRateLimit:        cfg.HTTP.RateLimitRPS,
		BodyLimit:            cfg.HTTP.BodyLimit,
		ExposeInternalErrors: !cfg.IsProduction(),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting HTTP server")
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// seedUsers creates the default admin and customer accounts, resetting their
// passwords to the configured values when they already exist.
func seedUsers(ctx context.Context, auth *service.AuthService, seed config.SeedConfig, log zerolog.Logger) error {
	accounts := []struct {
		name, email, password string
		role                  domain.Role
	}{
		{"Admin User", seed.AdminEmail, seed.AdminPassword, domain.RoleAdmin},
		{"Customer User", seed.CustomerEmail, seed.CustomerPassword, domain.RoleCustomer},
	}

	for _, a := range accounts {
		if a.email == "" || a.password == "" {
			continue
		}
		created, err := auth.EnsureUser(ctx, a.name, a.email, a.password, a.role)
		if err != nil {
			return err
		}
		log.Info().Str("email", a.email).Bool("created", created).Msg("seeded account")
	}
	return nil
}

func redisCheck(rdb *goredis.Client) handler.DependencyCheck {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
