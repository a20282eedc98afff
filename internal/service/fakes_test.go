package service

import (
	"context"
	"sync"
	"time"

	"amiai/config"
	"amiai/internal/model"
)

// fakeSender records every event delivered to every connection
type fakeSender struct {
	mu     sync.Mutex
	events map[string][]sentEvent
}

type sentEvent struct {
	event   string
	payload interface{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{events: make(map[string][]sentEvent)}
}

func (s *fakeSender) Send(connID string, event string, payload interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[connID] = append(s.events[connID], sentEvent{event: event, payload: payload})
}

// last returns the most recent payload of the given event sent to connID
func (s *fakeSender) last(connID, event string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs := s.events[connID]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].event == event {
			return evs[i].payload, true
		}
	}
	return nil, false
}

func (s *fakeSender) count(connID, event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events[connID] {
		if e.event == event {
			n++
		}
	}
	return n
}

// fakeOracle returns canned content, optionally failing everything
type fakeOracle struct {
	answer string
	glyph  string
	topic  model.CharacterTopic
	turn   model.DuelTurn
	fail   bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		answer: "我觉得还行，得看情况",
		glyph:  "诗",
		topic: model.CharacterTopic{
			Category:    model.TopicPerson,
			Title:       "李白",
			Description: "唐代浪漫主义诗人",
			Clue:        "用一个字形容这位诗人",
		},
		turn: model.DuelTurn{
			Character:  "酒",
			Guess:      model.GuessHuman,
			Reason:     "选字比较随性",
			Confidence: 0.7,
			Provider:   "fake",
		},
	}
}

func (o *fakeOracle) GenerateAnswer(ctx context.Context, question, personality, provider string) (string, error) {
	if o.fail {
		return "", context.DeadlineExceeded
	}
	return o.answer, nil
}

func (o *fakeOracle) GenerateTopic(ctx context.Context) (model.CharacterTopic, error) {
	if o.fail {
		return model.CharacterTopic{}, context.DeadlineExceeded
	}
	return o.topic, nil
}

func (o *fakeOracle) GenerateTopicGlyph(ctx context.Context, topic model.CharacterTopic, provider string) (string, error) {
	if o.fail {
		return "", context.DeadlineExceeded
	}
	return o.glyph, nil
}

func (o *fakeOracle) GenerateDuelTurn(ctx context.Context, userChar string, topic model.CharacterTopic, provider string) (model.DuelTurn, error) {
	if o.fail {
		return model.DuelTurn{}, context.DeadlineExceeded
	}
	return o.turn, nil
}

type fakeCounter struct{ n int }

func (c *fakeCounter) Count() int { return c.n }

// testGameConfig parks every timer far in the future so tests drive phase
// transitions directly and deterministically.
func testGameConfig() config.GameConfig {
	far := time.Hour
	return config.GameConfig{
		MinPlayers:      2,
		MaxPlayers:      5,
		MaxRounds:       5,
		AIPlayerCount:   1,
		AnswerTimeLimit: far,
		VotingTimeLimit: far,
		StartDelay:      far,
		CountdownDelay:  far,
		SettleDelay:     far,
		RevealDelay:     far,
		TeardownDelay:   far,
		AIThinkMin:      far,
		AIThinkMax:      2 * far,
		MatchInterval:   far,
	}
}
