package model

import "time"

// GameRecord is the archive document written when a game ends
type GameRecord struct {
	RoomID      string             `json:"roomId" bson:"roomId"`
	Mode        GameMode           `json:"mode" bson:"mode"`
	SeriesType  SeriesType         `json:"seriesType" bson:"seriesType"`
	Provider    string             `json:"provider,omitempty" bson:"provider,omitempty"`
	Rounds      []RoundResult      `json:"rounds" bson:"rounds"`
	Leaderboard []LeaderboardEntry `json:"leaderboard" bson:"leaderboard"`
	Stats       GameStats          `json:"stats" bson:"stats"`
	EndedAt     time.Time          `json:"endedAt" bson:"endedAt"`
}
