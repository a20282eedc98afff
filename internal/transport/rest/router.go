package rest

import (
	"net/http"
	"os"

	"amiai/internal/cache"
	"amiai/internal/repository"
	"amiai/internal/service"
	"amiai/internal/transport/rest/handler"
	"amiai/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	MatchService *service.MatchService
	DuelService  *service.DuelService
	AIClient     *service.AIClient
	Leaderboard  cache.LeaderboardCache
	Games        repository.GameRepo
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	metaHandler := handler.NewMetaHandler(c.MatchService, c.AIClient)
	duelHandler := handler.NewDuelHandler(c.DuelService)
	gamesHandler := handler.NewGamesHandler(c.Games, c.Leaderboard)
	wsHandler := ws.NewHandler(c.WSHub, c.MatchService)

	r.Use(corsMiddleware)

	r.HandleFunc("/health", metaHandler.Health).Methods("GET")
	r.HandleFunc("/stats", metaHandler.Stats).Methods("GET", "OPTIONS")
	r.HandleFunc("/providers", metaHandler.Providers).Methods("GET", "OPTIONS")

	r.HandleFunc("/topic", duelHandler.Topic).Methods("GET", "OPTIONS")
	r.HandleFunc("/duel", duelHandler.Play).Methods("POST", "OPTIONS")

	r.HandleFunc("/games/recent", gamesHandler.Recent).Methods("GET", "OPTIONS")
	r.HandleFunc("/leaderboard", gamesHandler.Leaderboard).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
