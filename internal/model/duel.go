package model

// DuelGuess is a player's or the AI's verdict about the opposing glyph
type DuelGuess string

const (
	GuessHuman DuelGuess = "human"
	GuessAI    DuelGuess = "ai"
)

// DuelTurn is the AI side of a one-shot char duel: its glyph for the topic
// plus its verdict on the user's glyph.
type DuelTurn struct {
	Character  string    `json:"character"`
	Guess      DuelGuess `json:"guess"`
	Reason     string    `json:"reason"`
	Confidence float64   `json:"confidence"`
	Provider   string    `json:"provider,omitempty"`
}

// DuelResult is the full outcome of a standalone char-duel round
type DuelResult struct {
	UserChar       string         `json:"userChar"`
	UserGuess      DuelGuess      `json:"userGuess"`
	UserGuessRight bool           `json:"userGuessCorrect"`
	AIChar         string         `json:"aiChar"`
	AIGuess        DuelGuess      `json:"aiGuess"`
	AIGuessRight   bool           `json:"aiGuessCorrect"`
	AIReason       string         `json:"aiReason"`
	AIConfidence   float64        `json:"aiConfidence"`
	ProviderUsed   string         `json:"providerUsed,omitempty"`
	Topic          CharacterTopic `json:"topic"`
}

// ProviderInfo describes one upstream text-generation provider
type ProviderInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`
	Current bool   `json:"current"`
}
