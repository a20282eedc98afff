package service

import (
	"amiai/internal/model"
	"context"
	"log"
	"strings"
	"unicode/utf8"
)

// DuelService runs the stateless single-turn duel: the user commits one Han
// character about a topic, the AI does the same and guesses whether the
// user's character came from a human.
type DuelService struct {
	oracle TextOracle
}

func NewDuelService(oracle TextOracle) *DuelService {
	return &DuelService{oracle: oracle}
}

// Topic draws a duel topic, degrading to the built-in table when the oracle
// is unreachable
func (s *DuelService) Topic(ctx context.Context) model.CharacterTopic {
	topic, err := s.oracle.GenerateTopic(ctx)
	if err != nil {
		log.Printf("[Duel] topic generation failed, using fallback: %v", err)
		return FallbackTopic()
	}
	return topic
}

// Play resolves one duel turn. The user wins their half by guessing "ai"
// (the opposing character is always machine-made); the AI wins its half by
// guessing "human".
func (s *DuelService) Play(ctx context.Context, topic model.CharacterTopic, userChar string, userGuess model.DuelGuess, provider string) (model.DuelResult, error) {
	userChar = strings.TrimSpace(userChar)
	if utf8.RuneCountInString(userChar) != 1 {
		return model.DuelResult{}, ErrInvalidDuelChar
	}
	glyph, _ := utf8.DecodeRuneInString(userChar)
	if !isHan(glyph) {
		return model.DuelResult{}, ErrInvalidDuelChar
	}
	if userGuess != model.GuessHuman && userGuess != model.GuessAI {
		return model.DuelResult{}, ErrInvalidDuelGuess
	}

	turn, err := s.oracle.GenerateDuelTurn(ctx, userChar, topic, provider)
	if err != nil {
		log.Printf("[Duel] turn generation failed, using fallback: %v", err)
		turn = FallbackDuelTurn(topic, provider)
	}

	return model.DuelResult{
		UserChar:       userChar,
		UserGuess:      userGuess,
		UserGuessRight: userGuess == model.GuessAI,
		AIChar:         turn.Character,
		AIGuess:        turn.Guess,
		AIGuessRight:   turn.Guess == model.GuessHuman,
		AIReason:       turn.Reason,
		AIConfidence:   turn.Confidence,
		ProviderUsed:   turn.Provider,
		Topic:          topic,
	}, nil
}
