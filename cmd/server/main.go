package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/venue-live-status/internal/cache"
	"github.com/iliyamo/venue-live-status/internal/config"
	"github.com/iliyamo/venue-live-status/internal/database"
	"github.com/iliyamo/venue-live-status/internal/handler"
	"github.com/iliyamo/venue-live-status/internal/middleware"
	"github.com/iliyamo/venue-live-status/internal/queue"
	"github.com/iliyamo/venue-live-status/internal/repository"
	"github.com/iliyamo/venue-live-status/internal/router"
	"github.com/iliyamo/venue-live-status/internal/service"
	"github.com/iliyamo/venue-live-status/internal/stream"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := stream.NewRegistry()
	registry.StartHeartbeat(ctx)

	rdb := config.NewRedisClient()

	var statusCache cache.StatusCache = cache.Noop{}
	if cfg.CacheEnabled && rdb != nil {
		statusCache = cache.NewRedis(rdb)
		go cache.StartUpdateListener(ctx, rdb, registry)
		log.Println("status-cache: redis cache and update bus enabled")
	} else {
		log.Println("status-cache: disabled, serving from store with local fan-out only")
	}

	go queue.StartStatusConsumer()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	statuses := repository.NewStatusRepo(db)

	statusSvc := service.NewStatusService(statuses, venues, statusCache, registry)
	nearbySvc := service.NewNearbyService(venues, statusSvc)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), limiter)
	router.RegisterPublic(e,
		handler.NewPublicVenueHandler(venues, nearbySvc),
		handler.NewPublicStatusHandler(statusSvc),
		handler.NewStreamHandler(registry))
	router.RegisterOwner(e, cfg.JWTSecret,
		handler.NewOwnerHandler(venues),
		handler.NewStatusWriteHandler(venues, statusSvc),
		limiter)

	log.Printf("server: listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
