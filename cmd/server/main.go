package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"amiai/config"
	"amiai/internal/cache"
	"amiai/internal/repository"
	"amiai/internal/service"
	"amiai/internal/transport/rest"
	"amiai/internal/transport/ws"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	log.Printf("AI service: %s (provider: %s)", cfg.AIServiceURL, cfg.DefaultProvider)

	// Redis is optional: without it the all-time leaderboard is disabled
	var leaderboard cache.LeaderboardCache
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		addr := strings.TrimPrefix(cfg.RedisURL, "redis://")
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("Warning: Redis unreachable, leaderboard disabled: %v", err)
			rdb.Close()
			rdb = nil
		} else {
			leaderboard = cache.NewLeaderboardCache(rdb)
			log.Println("Connected to Redis")
		}
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Mongo is optional: without it finished games are not archived
	var games repository.GameRepo
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Printf("Warning: MongoDB connect failed, archive disabled: %v", err)
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := mongoClient.Ping(pingCtx, nil); err != nil {
				log.Printf("Warning: MongoDB unreachable, archive disabled: %v", err)
				mongoClient.Disconnect(ctx)
			} else {
				games = repository.NewGameRepo(mongoClient)
				defer mongoClient.Disconnect(ctx)
				log.Println("Connected to MongoDB")
			}
			cancel()
		}
	}

	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	aiClient := service.NewAIClient(cfg.AIServiceURL, cfg.DefaultProvider)
	questions := service.NewQuestionService(rand.New(rand.NewSource(time.Now().UnixNano())))
	matchSvc := service.NewMatchService(wsHub, wsHub, aiClient, questions, cfg.Game, leaderboard, games)
	defer matchSvc.Close()
	duelSvc := service.NewDuelService(aiClient)

	container := &rest.Container{
		MatchService: matchSvc,
		DuelService:  duelSvc,
		AIClient:     aiClient,
		Leaderboard:  leaderboard,
		Games:        games,
		WSHub:        wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  GET  /health")
		log.Println("  GET  /stats")
		log.Println("  GET  /providers")
		log.Println("  GET  /topic")
		log.Println("  POST /duel")
		log.Println("  GET  /games/recent")
		log.Println("  GET  /leaderboard")
		log.Println("  WS   /ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
