package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ayaznasser/vehicle-registry/internal/config"
	"github.com/ayaznasser/vehicle-registry/internal/database"
	"github.com/ayaznasser/vehicle-registry/internal/handler"
	"github.com/ayaznasser/vehicle-registry/internal/middleware"
	"github.com/ayaznasser/vehicle-registry/internal/queue"
	"github.com/ayaznasser/vehicle-registry/internal/registry"
	"github.com/ayaznasser/vehicle-registry/internal/repository"
	"github.com/ayaznasser/vehicle-registry/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	accounts := repository.NewAccountRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	wallets := repository.NewWalletRepo(db)
	requests := repository.NewBuyRequestRepo(db)
	inspections := repository.NewInspectionReportRepo(db)
	conformities := repository.NewConformityReportRepo(db)

	policy := registry.NewPolicy(cfg.GovAccountID)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	var cacheGet echo.MiddlewareFunc
	if rdb != nil {
		cacheGet = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	authHandler := handler.NewAuthHandler(cfg, accounts, tokens)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterRegistry(e, router.Registry{
		Auth:       authHandler,
		Profiles:   handler.NewProfileHandler(policy, profiles),
		Vehicles:   handler.NewVehicleHandler(db, policy, vehicles, profiles),
		Requests:   handler.NewBuyRequestHandler(db, policy, vehicles, profiles, wallets, requests),
		Inspection: handler.NewInspectionReportHandler(db, policy, vehicles, profiles, inspections),
		Conformity: handler.NewConformityReportHandler(db, policy, vehicles, profiles, conformities),
		Wallet:     handler.NewWalletHandler(wallets),
	}, cfg.JWTSecret, cacheGet)

	// Background audit-log consumer for ownership transfer events.
	go func() {
		if err := queue.StartTransferConsumer(); err != nil {
			log.Printf("transfer consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
