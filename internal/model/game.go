package model

// GamePhase is the room's lifecycle state
type GamePhase string

const (
	PhaseWaiting   GamePhase = "WAITING"
	PhaseReady     GamePhase = "READY"
	PhaseAnswering GamePhase = "ANSWERING"
	PhaseVoting    GamePhase = "VOTING"
	PhaseReveal    GamePhase = "REVEAL"
	PhaseEnded     GamePhase = "ENDED"
)

// GameMode selects the answer format for a room
type GameMode string

const (
	// ModeClassic is free-text answers to trivia prompts
	ModeClassic GameMode = "classic"
	// ModeCharDuel restricts answers to a single Han character about a topic
	ModeCharDuel GameMode = "char_duel"
)

// ParseGameMode maps client input onto a known mode, defaulting to classic
func ParseGameMode(s string) GameMode {
	if GameMode(s) == ModeCharDuel {
		return ModeCharDuel
	}
	return ModeClassic
}

// SeriesType selects the round count and disclosure policy
type SeriesType string

const (
	// SeriesSingle is one round with immediate disclosure
	SeriesSingle SeriesType = "single"
	// SeriesBestOfFive is five rounds with disclosure delayed to the last
	SeriesBestOfFive SeriesType = "best_of_five"
)

// ParseSeriesType maps client input onto a known series type, defaulting to
// single
func ParseSeriesType(s string) SeriesType {
	if SeriesType(s) == SeriesBestOfFive {
		return SeriesBestOfFive
	}
	return SeriesSingle
}

// RoomOptions carries the matchmaking attributes a room is formed with
type RoomOptions struct {
	Provider   string
	Mode       GameMode
	SeriesType SeriesType
}
