package main // Entry point package

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/stagepass/internal/config"
	"github.com/stagepass/stagepass/internal/database"
	"github.com/stagepass/stagepass/internal/handler"
	"github.com/stagepass/stagepass/internal/middleware"
	"github.com/stagepass/stagepass/internal/queue"
	"github.com/stagepass/stagepass/internal/repository"
	"github.com/stagepass/stagepass/internal/router"
	"github.com/stagepass/stagepass/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the one pool.
	tenantRepo := repository.NewTenantRepo(db)
	venueRepo := repository.NewVenueRepo(db)
	actRepo := repository.NewActRepo(db)
	showRepo := repository.NewShowRepo(db)
	offerRepo := repository.NewOfferRepo(db)

	// Services. The event publisher is best-effort; allocation commits
	// stand regardless of broker health.
	events := service.NewEventPublisher(cfg.RabbitURL)
	alloc := service.NewAllocationService(offerRepo, events)
	sched := service.NewScheduleService(venueRepo, showRepo)

	api := handler.NewAPI(tenantRepo, venueRepo, actRepo, showRepo, offerRepo, alloc, sched)

	// Redis-backed middleware degrades to pass-through when Redis is
	// unreachable at startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	auth := middleware.TenantAuth(cfg.JWTSecret, cfg.AdminKeyHash, tenantRepo)
	rate := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, api, auth, rate, cache)

	// Offer event consumer runs for the life of the process with its own
	// reconnect loop.
	go func() {
		if err := queue.StartOfferConsumer(cfg.RabbitURL); err != nil {
			log.Printf("offer consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
