package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jonboulle/clockwork"

	"github.com/crediforum/crediforum-go/internal/config"
	"github.com/crediforum/crediforum-go/internal/db"
	"github.com/crediforum/crediforum-go/internal/handler"
	"github.com/crediforum/crediforum-go/internal/middleware"
	"github.com/crediforum/crediforum-go/internal/repository"
	"github.com/crediforum/crediforum-go/internal/router"
	"github.com/crediforum/crediforum-go/internal/service"
)

const communityWorkerInterval = 10 * time.Minute

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "crediforum-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	handler.InitMetrics(pool)

	// Repositories
	voteRepo := repository.NewVoteRepo()
	postRepo := repository.NewPostRepo()
	userRepo := repository.NewUserRepo()
	communityRepo := repository.NewCommunityRepo()

	// Services
	credSvc := service.NewCredibilityService()
	limiter := service.NewVoteLimiter(cache.Client())
	audit := service.NewAuditService(cache.Client())
	sessions := service.NewSessionService(cache.Client())
	voteSvc := service.NewVoteService(pool, voteRepo, postRepo, userRepo, credSvc, limiter, audit, cache, clockwork.NewRealClock())
	postSvc := service.NewPostService(pool, postRepo, voteRepo, userRepo, credSvc, cache)
	communitySvc := service.NewCommunityService(pool, communityRepo, cache)
	userSvc := service.NewUserService(pool, userRepo, postRepo)

	// Background workers
	rankWorker := service.NewRankWorker(pool, userRepo)
	go rankWorker.Start(ctx)

	communityWorker := service.NewCommunityWorker(pool, communityRepo, cache, communityWorkerInterval)
	go communityWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "CrediForum API",
		ServerHeader: "CrediForum",
	})

	h := &router.Handlers{
		Vote:        handler.NewVoteHandler(voteSvc),
		Post:        handler.NewPostHandler(postSvc),
		Community:   handler.NewCommunityHandler(communitySvc),
		User:        handler.NewUserHandler(userSvc),
		Credibility: handler.NewCredibilityHandler(userSvc, audit),
		Stats:       handler.NewStatsHandler(userSvc),
		Health:      handler.NewHealthHandler(pool, cache.Client()),
	}
	router.Setup(app, h, sessions, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("CrediForum backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
