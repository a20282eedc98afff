package model

// RoundResult is the immutable snapshot of one finished round
type RoundResult struct {
	Round         int               `json:"round"`
	Question      string            `json:"question"`
	Topic         *CharacterTopic   `json:"topic,omitempty"`
	Answers       map[string]string `json:"answers"` // player id -> answer
	Votes         map[string]string `json:"votes"`   // voter id -> suspect id
	AIPlayerID    string            `json:"aiPlayerId"`
	CorrectVoters []string          `json:"correctVoters"`
	ScoreDeltas   map[string]int    `json:"scoreDeltas"`
	RevealDetails bool              `json:"revealDetails"`
}

// GameStats aggregates detection numbers over a whole game
type GameStats struct {
	TotalRounds         int         `json:"totalRounds"`
	AverageAnswerLength int         `json:"averageAnswerLength"`
	AIDetectionRate     float64     `json:"aiDetectionRate"`
	MostVotedPlayers    []VoteTally `json:"mostVotedPlayers"`
}

// VoteTally counts accusations received by one player
type VoteTally struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username,omitempty"`
	Votes    int    `json:"votes"`
}
