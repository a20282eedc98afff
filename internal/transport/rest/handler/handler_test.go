package handler

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"amiai/config"
	"amiai/internal/cache"
	"amiai/internal/model"
	"amiai/internal/repository"
	"amiai/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) Send(connID string, event string, payload interface{}) {}

type staticCounter struct{ n int }

func (c staticCounter) Count() int { return c.n }

type stubOracle struct{}

func (stubOracle) GenerateAnswer(ctx context.Context, question, personality, provider string) (string, error) {
	return "还行吧", nil
}

func (stubOracle) GenerateTopic(ctx context.Context) (model.CharacterTopic, error) {
	return model.CharacterTopic{Category: model.TopicPerson, Title: "李白", Description: "唐代诗人", Clue: "一个字形容他"}, nil
}

func (stubOracle) GenerateTopicGlyph(ctx context.Context, topic model.CharacterTopic, provider string) (string, error) {
	return "诗", nil
}

func (stubOracle) GenerateDuelTurn(ctx context.Context, userChar string, topic model.CharacterTopic, provider string) (model.DuelTurn, error) {
	return model.DuelTurn{Character: "酒", Guess: model.GuessHuman, Reason: "随性", Confidence: 0.6}, nil
}

func testMatchService(t *testing.T) *service.MatchService {
	t.Helper()
	cfg := config.GameConfig{
		MinPlayers:    2,
		MaxPlayers:    5,
		MaxRounds:     5,
		AIPlayerCount: 1,
		MatchInterval: time.Hour,
		StartDelay:    time.Hour,
	}
	questions := service.NewQuestionService(rand.New(rand.NewSource(1)))
	m := service.NewMatchService(nopSender{}, staticCounter{n: 3}, stubOracle{}, questions, cfg, nil, nil)
	t.Cleanup(m.Close)
	return m
}

func TestHealth(t *testing.T) {
	h := NewMetaHandler(testMatchService(t), service.NewAIClient("http://127.0.0.1:1", ""))

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "down", body["aiService"])
}

func TestStats(t *testing.T) {
	h := NewMetaHandler(testMatchService(t), service.NewAIClient("http://127.0.0.1:1", ""))

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats service.ServerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.OnlinePlayers)
	assert.Zero(t, stats.Rooms)
}

func TestProvidersFallback(t *testing.T) {
	h := NewMetaHandler(testMatchService(t), service.NewAIClient("http://127.0.0.1:1", ""))

	rec := httptest.NewRecorder()
	h.Providers(rec, httptest.NewRequest(http.MethodGet, "/providers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Providers []model.ProviderInfo `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "fallback", body.Providers[0].Name)
}

func TestDuelTopic(t *testing.T) {
	h := NewDuelHandler(service.NewDuelService(stubOracle{}))

	rec := httptest.NewRecorder()
	h.Topic(rec, httptest.NewRequest(http.MethodGet, "/topic", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var topic model.CharacterTopic
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &topic))
	assert.Equal(t, "李白", topic.Title)
}

func TestDuelPlay(t *testing.T) {
	h := NewDuelHandler(service.NewDuelService(stubOracle{}))

	t.Run("happy path", func(t *testing.T) {
		body := `{"topic":{"category":"person","title":"李白","clue":"一个字"},"userChar":"月","guess":"ai"}`
		rec := httptest.NewRecorder()
		h.Play(rec, httptest.NewRequest(http.MethodPost, "/duel", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		var result model.DuelResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.UserGuessRight)
		assert.Equal(t, "酒", result.AIChar)
	})

	t.Run("bad character", func(t *testing.T) {
		body := `{"topic":{"title":"李白"},"userChar":"ab","guess":"ai"}`
		rec := httptest.NewRecorder()
		h.Play(rec, httptest.NewRequest(http.MethodPost, "/duel", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing topic", func(t *testing.T) {
		body := `{"userChar":"月","guess":"ai"}`
		rec := httptest.NewRecorder()
		h.Play(rec, httptest.NewRequest(http.MethodPost, "/duel", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Play(rec, httptest.NewRequest(http.MethodPost, "/duel", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

type stubGameRepo struct {
	records []model.GameRecord
}

func (r stubGameRepo) Insert(ctx context.Context, record *model.GameRecord) error { return nil }

func (r stubGameRepo) ListRecent(ctx context.Context, limit int) ([]model.GameRecord, error) {
	if limit > len(r.records) {
		limit = len(r.records)
	}
	return r.records[:limit], nil
}

type stubLeaderboard struct {
	entries []cache.Entry
}

func (l stubLeaderboard) AddScore(ctx context.Context, username string, delta int) error { return nil }
func (l stubLeaderboard) IncrGamesPlayed(ctx context.Context) error                      { return nil }
func (l stubLeaderboard) GamesPlayed(ctx context.Context) (int64, error)                 { return 0, nil }

func (l stubLeaderboard) GetTop(ctx context.Context, limit int) ([]cache.Entry, error) {
	return l.entries, nil
}

func TestGamesEndpoints(t *testing.T) {
	t.Run("stores not configured", func(t *testing.T) {
		h := NewGamesHandler(nil, nil)

		rec := httptest.NewRecorder()
		h.Recent(rec, httptest.NewRequest(http.MethodGet, "/games/recent", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = httptest.NewRecorder()
		h.Leaderboard(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("recent games", func(t *testing.T) {
		repo := stubGameRepo{records: []model.GameRecord{
			{RoomID: "a", Mode: model.ModeClassic},
			{RoomID: "b", Mode: model.ModeCharDuel},
		}}
		h := NewGamesHandler(repo, nil)

		rec := httptest.NewRecorder()
		h.Recent(rec, httptest.NewRequest(http.MethodGet, "/games/recent?limit=1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Games []model.GameRecord `json:"games"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Games, 1)
		assert.Equal(t, "a", body.Games[0].RoomID)
	})

	t.Run("leaderboard", func(t *testing.T) {
		lb := stubLeaderboard{entries: []cache.Entry{{Username: "冠军", Score: 120, Rank: 1}}}
		h := NewGamesHandler(nil, lb)

		rec := httptest.NewRecorder()
		h.Leaderboard(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Leaderboard []cache.Entry `json:"leaderboard"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Leaderboard, 1)
		assert.Equal(t, "冠军", body.Leaderboard[0].Username)
	})
}

var _ repository.GameRepo = stubGameRepo{}
var _ cache.LeaderboardCache = stubLeaderboard{}
