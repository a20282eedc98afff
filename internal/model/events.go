package model

// Payloads for the outbound room events. The envelope type lives in the
// transport layer; these are the bodies services hand to the sender.

// QueueJoinedPayload acks a join_queue request
type QueueJoinedPayload struct {
	Position int    `json:"position"`
	Message  string `json:"message"`
}

// QueueLeftPayload acks a leave_queue request
type QueueLeftPayload struct {
	Message string `json:"message"`
}

// ErrorPayload is a structured error event
type ErrorPayload struct {
	Message string `json:"message"`
}

// RoomJoinedPayload tells a player which room they were matched into
type RoomJoinedPayload struct {
	RoomID     string     `json:"roomId"`
	Message    string     `json:"message"`
	Provider   string     `json:"provider,omitempty"`
	Mode       GameMode   `json:"mode"`
	SeriesType SeriesType `json:"seriesType"`
}

// RoomStatePayload is the periodic roster/state snapshot
type RoomStatePayload struct {
	RoomID     string             `json:"roomId"`
	Players    []LeaderboardEntry `json:"players"`
	Phase      GamePhase          `json:"state"`
	Round      int                `json:"round"`
	MaxRounds  int                `json:"maxRounds"`
	Provider   string             `json:"provider,omitempty"`
	Mode       GameMode           `json:"mode"`
	SeriesType SeriesType         `json:"seriesType"`
}

// GameStartPayload announces the full roster and round configuration
type GameStartPayload struct {
	RoomID     string             `json:"roomId"`
	Players    []LeaderboardEntry `json:"players"`
	MaxRounds  int                `json:"maxRounds"`
	Mode       GameMode           `json:"mode"`
	SeriesType SeriesType         `json:"seriesType"`
}

// RoundStartPayload opens the answering phase
type RoundStartPayload struct {
	Round            int             `json:"round"`
	MaxRounds        int             `json:"maxRounds"`
	Prompt           string          `json:"prompt"`
	Topic            *CharacterTopic `json:"topic,omitempty"`
	SeriesType       SeriesType      `json:"seriesType"`
	TimeLimitSeconds int             `json:"timeLimitSeconds"`
}

// AnswerSubmittedPayload reports answer progress without content or identity
type AnswerSubmittedPayload struct {
	SubmittedCount int `json:"submittedCount"`
	TotalPlayers   int `json:"totalPlayers"`
}

// AnonymousAnswer is one entry of the shuffled voting ballot
type AnonymousAnswer struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Answer   string `json:"answer"`
}

// VotingStartPayload opens the voting phase
type VotingStartPayload struct {
	AnonymizedAnswers []AnonymousAnswer `json:"anonymizedAnswers"`
	TimeLimitSeconds  int               `json:"timeLimitSeconds"`
}

// VoteReceivedPayload reports vote progress without identity
type VoteReceivedPayload struct {
	TotalVotes int `json:"totalVotes"`
}

// RevealedAnswer is an answer with identity attached, used once disclosure
// is permitted
type RevealedAnswer struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Answer   string `json:"answer"`
	IsAI     bool   `json:"isAI"`
}

// RevealedAI identifies the AI player, or a placeholder under delayed
// disclosure
type RevealedAI struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RoundResultPayload closes a round. Under delayed disclosure the identity
// fields are redacted while scores still advance internally.
type RoundResultPayload struct {
	AIPlayer      RevealedAI         `json:"aiPlayer"`
	VoteResults   []VoteTally        `json:"voteResults"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
	Answers       []RevealedAnswer   `json:"answers"`
	CorrectVoters []string           `json:"correctVoters"`
	Topic         *CharacterTopic    `json:"topic,omitempty"`
	RevealDetails bool               `json:"revealDetails"`
}

// GameEndPayload is the terminal broadcast
type GameEndPayload struct {
	Winner      *LeaderboardEntry  `json:"winner"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Stats       GameStats          `json:"stats"`
}
