package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"amiai/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAnswer(t *testing.T) {
	var gotProviders []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate-answer", r.URL.Path)
		gotProviders = append(gotProviders, r.URL.Query().Get("provider"))

		var req struct {
			Question    string `json:"question"`
			Personality string `json:"personality"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "你对加班怎么看？", req.Question)
		assert.Equal(t, PersonalityDeceptive, req.Personality)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer":      "加班这事得看心情",
			"confidence":  0.9,
			"tokens_used": 42,
		})
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "auto")
	answer, err := client.GenerateAnswer(context.Background(), "你对加班怎么看？", PersonalityDeceptive, "deepseek")
	require.NoError(t, err)
	assert.Equal(t, "加班这事得看心情", answer)
	assert.Equal(t, []string{"deepseek"}, gotProviders)
}

func TestGenerateAnswerRetriesWithDefault(t *testing.T) {
	var gotProviders []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Query().Get("provider")
		gotProviders = append(gotProviders, p)
		if p == "broken" {
			http.Error(w, "provider unavailable", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"answer": "备用回答"})
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "auto")
	answer, err := client.GenerateAnswer(context.Background(), "问题", PersonalityNormal, "broken")
	require.NoError(t, err)
	assert.Equal(t, "备用回答", answer)
	assert.Equal(t, []string{"broken", ""}, gotProviders)
}

func TestGenerateAnswerUnreachable(t *testing.T) {
	client := NewAIClient("http://127.0.0.1:1", "auto")
	_, err := client.GenerateAnswer(context.Background(), "问题", PersonalityNormal, "")
	assert.Error(t, err)
}

func TestGenerateTopic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": `好的，主题如下：{"category":"game","title":"塞尔达传说","description":"任天堂开放世界冒险","clue":"想想林克的旅程"}`,
		})
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "")
	topic, err := client.GenerateTopic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.TopicGame, topic.Category)
	assert.Equal(t, "塞尔达传说", topic.Title)
	assert.Equal(t, "想想林克的旅程", topic.Clue)
}

func TestGenerateTopicGlyphNormalizesToOneRune(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"answer": "  勇气  "})
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "")
	glyph, err := client.GenerateTopicGlyph(context.Background(), FallbackTopic(), "")
	require.NoError(t, err)
	assert.Equal(t, "勇", glyph)
}

func TestGenerateDuelTurn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": `{"character":"剑","guess":"ai","reason":"太工整了","confidence":1.7}`,
		})
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "deepseek")
	turn, err := client.GenerateDuelTurn(context.Background(), "光", FallbackTopic(), "")
	require.NoError(t, err)
	assert.Equal(t, "剑", turn.Character)
	assert.Equal(t, model.GuessAI, turn.Guess)
	assert.Equal(t, "太工整了", turn.Reason)
	assert.Equal(t, 1.0, turn.Confidence)
	assert.Equal(t, "deepseek", turn.Provider)
}

func TestListProviders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/providers", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"providers": []model.ProviderInfo{
				{Name: "deepseek", Enabled: true, Model: "deepseek-chat", Current: true},
				{Name: "openai", Enabled: false, Model: "gpt-4o-mini"},
			},
		})
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "")
	providers, err := client.ListProviders(context.Background())
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, "deepseek", providers[0].Name)
	assert.True(t, providers[0].Current)
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, "")
	assert.True(t, client.HealthCheck(context.Background()))

	down := NewAIClient("http://127.0.0.1:1", "")
	assert.False(t, down.HealthCheck(context.Background()))
}

func TestExtractJSON(t *testing.T) {
	obj, ok := extractJSON(`前缀说明 {"a":1} 后记`)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, obj)

	_, ok = extractJSON("没有对象")
	assert.False(t, ok)

	_, ok = extractJSON("}{")
	assert.False(t, ok)
}

func TestParseDuelTurnForgiving(t *testing.T) {
	turn := parseDuelTurn("我猜是AI，感觉太规整了")
	assert.Equal(t, model.GuessAI, turn.Guess)
	assert.NotEmpty(t, turn.Character)

	turn = parseDuelTurn("感觉像真人")
	assert.Equal(t, model.GuessHuman, turn.Guess)
	assert.Equal(t, 0.5, turn.Confidence)
}

func TestFallbackGlyphPrefersTopic(t *testing.T) {
	g := FallbackGlyph(model.CharacterTopic{Title: "李白"})
	assert.Equal(t, "诗", g)

	g = FallbackGlyph(model.CharacterTopic{Title: "从未听过的主题"})
	assert.Len(t, []rune(g), 1)
}
