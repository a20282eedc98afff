package service

import (
	"amiai/internal/model"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	answerTimeout = 10 * time.Second
	metaTimeout   = 5 * time.Second
)

// Personality hints forwarded to the ai-service
const (
	PersonalityObvious   = "obvious"
	PersonalityNormal    = "normal"
	PersonalityDeceptive = "deceptive"
)

// AIClient talks to the external ai-service over HTTP. Implements TextOracle.
type AIClient struct {
	baseURL         string
	defaultProvider string
	client          *http.Client
}

// NewAIClient creates a client for the given ai-service base URL.
// defaultProvider is the server-wide hint; "auto" or empty means none.
func NewAIClient(baseURL, defaultProvider string) *AIClient {
	if defaultProvider == "auto" {
		defaultProvider = ""
	}
	return &AIClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		defaultProvider: defaultProvider,
		client:          &http.Client{Timeout: answerTimeout},
	}
}

type answerRequest struct {
	Question    string `json:"question"`
	Difficulty  string `json:"difficulty"`
	Personality string `json:"personality"`
}

type answerResponse struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	TokensUsed int     `json:"tokens_used"`
}

// GenerateAnswer requests a free-text answer. When an explicit provider fails
// it retries once with the server default before giving up.
func (c *AIClient) GenerateAnswer(ctx context.Context, question, personality, provider string) (string, error) {
	resp, err := c.requestAnswer(ctx, question, personality, provider)
	if err != nil {
		if p := c.resolve(provider); p != "" && p != c.defaultProvider {
			log.Printf("[AIClient] provider %s failed, retrying with default: %v", p, err)
			if resp, err = c.requestAnswer(ctx, question, personality, ""); err == nil {
				return resp.Answer, nil
			}
		}
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return resp.Answer, nil
}

// GenerateTopic asks the model to invent a char-duel topic
func (c *AIClient) GenerateTopic(ctx context.Context) (model.CharacterTopic, error) {
	resp, err := c.requestAnswer(ctx, topicPrompt, PersonalityNormal, "")
	if err != nil {
		return model.CharacterTopic{}, fmt.Errorf("generate topic: %w", err)
	}
	topic, ok := parseTopic(resp.Answer)
	if !ok {
		return model.CharacterTopic{}, fmt.Errorf("generate topic: unparseable reply %q", clampRunes(resp.Answer, 40))
	}
	return topic, nil
}

// GenerateTopicGlyph asks the model for the single glyph it would use for a
// topic, normalized down to exactly one rune.
func (c *AIClient) GenerateTopicGlyph(ctx context.Context, topic model.CharacterTopic, provider string) (string, error) {
	prompt := fmt.Sprintf(glyphPromptFormat, categoryLabel(topic.Category), topic.Title, topic.Description, topic.Clue)
	resp, err := c.requestAnswer(ctx, prompt, PersonalityDeceptive, provider)
	if err != nil {
		return "", fmt.Errorf("generate glyph: %w", err)
	}
	glyph := firstRune(resp.Answer)
	if glyph == "" {
		return "", fmt.Errorf("generate glyph: empty reply")
	}
	return glyph, nil
}

// GenerateDuelTurn runs the AI side of a one-shot char duel
func (c *AIClient) GenerateDuelTurn(ctx context.Context, userChar string, topic model.CharacterTopic, provider string) (model.DuelTurn, error) {
	prompt := fmt.Sprintf(duelPromptFormat, categoryLabel(topic.Category), topic.Title, topic.Clue, userChar)
	resp, err := c.requestAnswer(ctx, prompt, PersonalityDeceptive, provider)
	if err != nil {
		return model.DuelTurn{}, fmt.Errorf("generate duel turn: %w", err)
	}

	turn := parseDuelTurn(resp.Answer)
	turn.Provider = c.resolve(provider)
	return turn, nil
}

// ListProviders fetches the upstream provider catalog
func (c *AIClient) ListProviders(ctx context.Context) ([]model.ProviderInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/providers", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Providers []model.ProviderInfo `json:"providers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return body.Providers, nil
}

// ModelInfo describes the upstream service's active model
type ModelInfo struct {
	Provider           string   `json:"current_provider"`
	Model              string   `json:"model"`
	AvailableProviders []string `json:"available_providers"`
}

// GetModelInfo fetches the active provider/model from the ai-service root
func (c *AIClient) GetModelInfo(ctx context.Context) (ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return ModelInfo{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("model info: %w", err)
	}
	defer resp.Body.Close()

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ModelInfo{}, fmt.Errorf("model info: %w", err)
	}
	return info, nil
}

// HealthCheck reports whether the ai-service responds
func (c *AIClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, metaTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// resolve applies the provider-hint precedence: explicit hint, then server
// default, then none (the provider decides).
func (c *AIClient) resolve(provider string) string {
	if provider != "" && provider != "auto" {
		return provider
	}
	return c.defaultProvider
}

func (c *AIClient) requestAnswer(ctx context.Context, question, personality, provider string) (*answerResponse, error) {
	body, err := json.Marshal(answerRequest{
		Question:    question,
		Difficulty:  "medium",
		Personality: personality,
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/generate-answer"
	if p := c.resolve(provider); p != "" {
		endpoint += "?provider=" + url.QueryEscape(p)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ai-service returned %d: %s", resp.StatusCode, data)
	}

	var out answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

const topicPrompt = `随机构思一个适合一字识人的主题，只能是“著名人物”或“知名游戏”之一。
输出JSON：
{
  "category": "person" 或 "game",
  "title": "名称，2-6字",
  "description": "15字左右背景介绍",
  "clue": "鼓励玩家用一个汉字描述该主题的提示，10字以内"
}`

const glyphPromptFormat = `【任务】用一个汉字概括主题
主题：%s · %s
描述：%s
提示：%s
要求：
- 只输出一个最具代表性的汉字
- 不要解释
- 不能包含标点或空格`

const duelPromptFormat = `【游戏】一字识AI

本轮主题：
- 类型：%s
- 名称：%s
- 线索：%s

流程：
1. 你知道上面的主题，需要用一个汉字描述它，字数必须=1。
2. 对方（真人）也提交了一个字：%s，请你据此判断 ta 更像人还是AI。
3. 你的回答要尽量像真人，别暴露自己是AI。

输出JSON：
{
  "character": "你给出的汉字，1个字符",
  "guess": "human 或 ai",
  "reason": "15字内判断依据",
  "confidence": 0-1之间的小数
}`

func categoryLabel(c model.TopicCategory) string {
	if c == model.TopicGame {
		return "游戏"
	}
	return "人物"
}

// parseTopic extracts the first JSON object from a model reply and clamps
// its fields to sane lengths.
func parseTopic(raw string) (model.CharacterTopic, bool) {
	obj, ok := extractJSON(raw)
	if !ok {
		return model.CharacterTopic{}, false
	}

	var parsed struct {
		Category    string `json:"category"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Clue        string `json:"clue"`
	}
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return model.CharacterTopic{}, false
	}

	topic := model.CharacterTopic{
		Category:    model.TopicPerson,
		Title:       clampRunes(parsed.Title, 12),
		Description: clampRunes(parsed.Description, 40),
		Clue:        clampRunes(parsed.Clue, 20),
	}
	if parsed.Category == string(model.TopicGame) {
		topic.Category = model.TopicGame
	}
	if topic.Title == "" {
		topic.Title = "未知主题"
	}
	if topic.Description == "" {
		topic.Description = "神秘主题"
	}
	if topic.Clue == "" {
		topic.Clue = "自由发挥"
	}
	return topic, true
}

// parseDuelTurn is forgiving: a malformed reply degrades to a fallback glyph
// and a guess scraped from the raw text.
func parseDuelTurn(raw string) model.DuelTurn {
	if obj, ok := extractJSON(raw); ok {
		var parsed struct {
			Character  string  `json:"character"`
			Guess      string  `json:"guess"`
			Reason     string  `json:"reason"`
			Confidence float64 `json:"confidence"`
		}
		if err := json.Unmarshal([]byte(obj), &parsed); err == nil {
			turn := model.DuelTurn{
				Character:  firstRune(parsed.Character),
				Guess:      model.GuessHuman,
				Reason:     clampRunes(parsed.Reason, 50),
				Confidence: clamp01(parsed.Confidence),
			}
			if parsed.Guess == string(model.GuessAI) {
				turn.Guess = model.GuessAI
			}
			if turn.Character == "" {
				turn.Character = FallbackGlyph(model.CharacterTopic{})
			}
			if turn.Reason == "" {
				turn.Reason = "直觉判断"
			}
			return turn
		}
	}

	turn := model.DuelTurn{
		Character:  FallbackGlyph(model.CharacterTopic{}),
		Guess:      model.GuessHuman,
		Reason:     clampRunes(raw, 50),
		Confidence: 0.5,
	}
	if strings.Contains(raw, "AI") {
		turn.Guess = model.GuessAI
	}
	if turn.Reason == "" {
		turn.Reason = "直觉判断"
	}
	return turn
}

// extractJSON returns the outermost {...} block of a reply
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func firstRune(s string) string {
	s = strings.TrimSpace(s)
	for _, r := range s {
		return string(r)
	}
	return ""
}

func clampRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Static fallback tables. Used whenever the ai-service fails or times out so
// a round can always proceed.

var fallbackAnswers = []string{
	"这是一个很有趣的问题。从逻辑角度来看，需要综合多个因素进行分析。",
	"根据现有的数据和研究，这个问题可以从多个维度来讨论。",
	"我认为这个问题没有绝对的答案，需要具体情况具体分析。",
	"这涉及到多个领域的知识，是一个复杂的话题。",
	"从科学的角度来说，我们需要更多的证据来支持任何结论。",
}

var fallbackTopics = []model.CharacterTopic{
	{Category: model.TopicPerson, Title: "李白", Description: "盛唐浪漫主义诗人", Clue: "诗"},
	{Category: model.TopicPerson, Title: "梅西", Description: "阿根廷传奇球王", Clue: "球"},
	{Category: model.TopicPerson, Title: "宫崎骏", Description: "吉卜力知名动画导演", Clue: "梦"},
	{Category: model.TopicGame, Title: "塞尔达传说", Description: "任天堂开放世界冒险", Clue: "勇"},
	{Category: model.TopicGame, Title: "王者荣耀", Description: "热门 MOBA 手机游戏", Clue: "战"},
	{Category: model.TopicGame, Title: "绝地求生", Description: "吃鸡生存射击", Clue: "存"},
}

var fallbackGlyphs = []string{"心", "火", "风", "海", "野", "暮", "光", "影"}

var topicGlyphs = map[string]string{
	"李白":    "诗",
	"梅西":    "球",
	"宫崎骏":   "梦",
	"塞尔达传说": "勇",
	"王者荣耀":  "战",
	"绝地求生":  "存",
}

// FallbackAnswer returns a canned free-text answer
func FallbackAnswer() string {
	return fallbackAnswers[rand.Intn(len(fallbackAnswers))]
}

// FallbackTopic returns a canned char-duel topic
func FallbackTopic() model.CharacterTopic {
	return fallbackTopics[rand.Intn(len(fallbackTopics))]
}

// FallbackGlyph returns a glyph for a topic, preferring the topic's
// representative glyph when known
func FallbackGlyph(topic model.CharacterTopic) string {
	if g, ok := topicGlyphs[topic.Title]; ok {
		return g
	}
	return fallbackGlyphs[rand.Intn(len(fallbackGlyphs))]
}

// FallbackDuelTurn returns a neutral duel turn
func FallbackDuelTurn(topic model.CharacterTopic, provider string) model.DuelTurn {
	return model.DuelTurn{
		Character:  FallbackGlyph(topic),
		Guess:      model.GuessHuman,
		Reason:     "凭直觉觉得像真人",
		Confidence: 0.5,
		Provider:   provider,
	}
}
