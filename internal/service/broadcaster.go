package service

import (
	"amiai/internal/model"
	"context"
)

// Sender delivers an event to a single connection. Implemented by the ws hub
// (interface lives here to avoid an import cycle).
type Sender interface {
	Send(connID string, event string, payload interface{})
}

// ConnectionCounter reports live transport connections. Owned by the ws hub
// and handed to the match service at construction; there is no ambient
// global tracker.
type ConnectionCounter interface {
	Count() int
}

// TextOracle is the external text-generation provider as consumed by rooms
// and the duel service. Every call is bounded by a timeout; callers
// substitute local fallbacks on error so gameplay never stalls.
type TextOracle interface {
	GenerateAnswer(ctx context.Context, question, personality, provider string) (string, error)
	GenerateTopic(ctx context.Context) (model.CharacterTopic, error)
	GenerateTopicGlyph(ctx context.Context, topic model.CharacterTopic, provider string) (string, error)
	GenerateDuelTurn(ctx context.Context, userChar string, topic model.CharacterTopic, provider string) (model.DuelTurn, error)
}
