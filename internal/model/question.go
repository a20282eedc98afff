package model

// Difficulty grades a trivia prompt
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a trivia prompt from the bank, or a synthesized char-duel prompt
type Question struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// TopicCategory classifies a char-duel topic
type TopicCategory string

const (
	TopicPerson TopicCategory = "person"
	TopicGame   TopicCategory = "game"
)

// CharacterTopic is the themed subject of a char-duel round: players describe
// it with exactly one glyph.
type CharacterTopic struct {
	Category    TopicCategory `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Clue        string        `json:"clue"`
}
