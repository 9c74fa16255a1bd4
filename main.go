package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/kube-rca/reactions/internal/config"
	"github.com/kube-rca/reactions/internal/db"
	"github.com/kube-rca/reactions/internal/handler"
	"github.com/kube-rca/reactions/internal/reaction"
	"github.com/kube-rca/reactions/internal/router"
	"github.com/kube-rca/reactions/internal/service"
)

// @title Reactions API
// @version 1.0
// @description Reaction and rating aggregation service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pool.Close()

	pg := &db.Postgres{Pool: pool}
	if err := pg.EnsureReactionSchema(ctx); err != nil {
		log.Fatalf("failed to ensure reaction schema: %v", err)
	}

	var summaries service.SummaryStore
	summaryCache, err := db.NewSummaryCache(ctx, cfg.Redis)
	if err != nil {
		log.Printf("redis summary cache disabled: %v", err)
	} else if summaryCache != nil {
		defer summaryCache.Close()
		summaries = summaryCache
		log.Printf("redis summary cache enabled (%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	authSvc, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}

	reactionSvc := service.NewReactionService(pg, summaries)

	widgetStore := reaction.New(
		service.NewLocalSource(reactionSvc),
		reaction.WithCapacity(cfg.Cache.Capacity),
		reaction.WithFetchTimeout(cfg.Cache.FetchTimeout),
	)
	widgets := handler.NewWidgetHandler(widgetStore)
	reactionSvc.OnMutation(widgets.Invalidate)

	r := router.New(cfg.Server, authSvc, handler.NewReactionHandler(reactionSvc), widgets)

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
