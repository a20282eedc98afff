package rest

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"amiai/config"
	"amiai/internal/model"
	"amiai/internal/service"
	"amiai/internal/transport/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOracle struct{}

func (stubOracle) GenerateAnswer(ctx context.Context, question, personality, provider string) (string, error) {
	return "看情况", nil
}

func (stubOracle) GenerateTopic(ctx context.Context) (model.CharacterTopic, error) {
	return model.CharacterTopic{Title: "梅西", Clue: "球"}, nil
}

func (stubOracle) GenerateTopicGlyph(ctx context.Context, topic model.CharacterTopic, provider string) (string, error) {
	return "球", nil
}

func (stubOracle) GenerateDuelTurn(ctx context.Context, userChar string, topic model.CharacterTopic, provider string) (model.DuelTurn, error) {
	return model.DuelTurn{Character: "球", Guess: model.GuessHuman}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	hub := ws.NewHub()
	cfg := config.GameConfig{MinPlayers: 2, AIPlayerCount: 1, MatchInterval: time.Hour, StartDelay: time.Hour}
	questions := service.NewQuestionService(rand.New(rand.NewSource(1)))
	match := service.NewMatchService(hub, hub, stubOracle{}, questions, cfg, nil, nil)
	t.Cleanup(match.Close)

	return NewRouter(&Container{
		MatchService: match,
		DuelService:  service.NewDuelService(stubOracle{}),
		AIClient:     service.NewAIClient("http://127.0.0.1:1", ""),
		WSHub:        hub,
	})
}

func TestRouterRoutes(t *testing.T) {
	router := testRouter(t)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/stats", http.StatusOK},
		{http.MethodGet, "/providers", http.StatusOK},
		{http.MethodGet, "/topic", http.StatusOK},
		{http.MethodGet, "/games/recent", http.StatusServiceUnavailable},
		{http.MethodGet, "/leaderboard", http.StatusServiceUnavailable},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
