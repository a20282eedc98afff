package service

import (
	"context"
	"testing"

	"amiai/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuelPlay(t *testing.T) {
	oracle := newFakeOracle()
	svc := NewDuelService(oracle)
	ctx := context.Background()
	topic := oracle.topic

	t.Run("rejects non-Han input", func(t *testing.T) {
		for _, bad := range []string{"", "ab", "两字", "x", "！"} {
			_, err := svc.Play(ctx, topic, bad, model.GuessAI, "")
			assert.ErrorIs(t, err, ErrInvalidDuelChar, "input %q", bad)
		}
	})

	t.Run("rejects unknown guess", func(t *testing.T) {
		_, err := svc.Play(ctx, topic, "光", model.DuelGuess("maybe"), "")
		assert.ErrorIs(t, err, ErrInvalidDuelGuess)
	})

	t.Run("scores both sides", func(t *testing.T) {
		result, err := svc.Play(ctx, topic, "月", model.GuessAI, "")
		require.NoError(t, err)

		// the opposing glyph is always machine-made, so guessing ai wins
		assert.True(t, result.UserGuessRight)
		assert.Equal(t, "酒", result.AIChar)
		// the fake oracle guessed human about a real human
		assert.True(t, result.AIGuessRight)
		assert.Equal(t, topic.Title, result.Topic.Title)
	})

	t.Run("wrong user guess loses", func(t *testing.T) {
		result, err := svc.Play(ctx, topic, "月", model.GuessHuman, "")
		require.NoError(t, err)
		assert.False(t, result.UserGuessRight)
	})

	t.Run("falls back when the oracle is down", func(t *testing.T) {
		down := newFakeOracle()
		down.fail = true
		svc := NewDuelService(down)

		result, err := svc.Play(ctx, topic, "月", model.GuessAI, "deepseek")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AIChar)
		assert.Equal(t, model.GuessHuman, result.AIGuess)
	})
}

func TestDuelTopicFallback(t *testing.T) {
	down := newFakeOracle()
	down.fail = true
	svc := NewDuelService(down)

	topic := svc.Topic(context.Background())
	assert.NotEmpty(t, topic.Title)
	assert.NotEmpty(t, topic.Clue)
}
