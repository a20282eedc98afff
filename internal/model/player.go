package model

// Player is a participant in a room. Human players are keyed by their
// connection id; AI players get a generated id and no connection.
type Player struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"` // server-generated anonymous name
	IsAI        bool     `json:"isAI"`
	Score       int      `json:"score"`
	Answers     []string `json:"-"`
	Votes       []string `json:"-"`
	IsConnected bool     `json:"isConnected"`
}

// LeaderboardEntry is one row of a leaderboard. IsAI is only truthful in
// final or fully revealed snapshots.
type LeaderboardEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	IsAI     bool   `json:"isAI"`
}
