package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/database"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/httperr"
	"github.com/iliyamo/user-auth-service/internal/queue"
	"github.com/iliyamo/user-auth-service/internal/repository"
	"github.com/iliyamo/user-auth-service/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Redis is optional: a nil client disables rate limiting.
	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		log.Print("redis unavailable, rate limiting disabled")
	}

	// Background consumer turning auth events into logs/auth.log lines.
	go func() {
		if err := queue.StartAuthEventConsumer(); err != nil {
			log.Printf("auth event consumer stopped: %v", err)
		}
	}()

	// Periodically prune expired ledger rows.  Correctness does not
	// depend on this; expired tokens already fail signature checks.
	go pruneExpiredTokens(tokens)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	deps := router.Deps{
		Cfg:       cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Admin:     handler.NewAdminHandler(users, tokens),
	}
	deps.RegisterAuth(e)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func pruneExpiredTokens(tokens *repository.TokenRepo) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := tokens.DeleteExpired(ctx)
		cancel()
		if err != nil {
			log.Printf("prune refresh tokens: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("pruned %d expired refresh tokens", n)
		}
	}
}
