package handler

import (
	"net/http"
	"strconv"

	"amiai/internal/cache"
	"amiai/internal/repository"
)

const defaultListLimit = 10

// GamesHandler serves the game archive and the all-time leaderboard. Both
// stores are optional; missing ones answer 503.
type GamesHandler struct {
	games       repository.GameRepo
	leaderboard cache.LeaderboardCache
}

// NewGamesHandler creates a new games handler
func NewGamesHandler(games repository.GameRepo, leaderboard cache.LeaderboardCache) *GamesHandler {
	return &GamesHandler{games: games, leaderboard: leaderboard}
}

// Recent handles GET /games/recent
func (h *GamesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.games == nil {
		writeError(w, http.StatusServiceUnavailable, "game archive not configured")
		return
	}

	limit := queryLimit(r, defaultListLimit)
	records, err := h.games.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"games": records})
}

// Leaderboard handles GET /leaderboard
func (h *GamesHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		writeError(w, http.StatusServiceUnavailable, "leaderboard not configured")
		return
	}

	limit := queryLimit(r, defaultListLimit)
	entries, err := h.leaderboard.GetTop(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 100 {
		return fallback
	}
	return n
}
