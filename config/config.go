package config

import (
	"os"
	"strconv"
	"time"
)

// GameConfig is the immutable game tuning block, read once at startup
type GameConfig struct {
	MinPlayers    int // minimum human players before a room starts
	MaxPlayers    int // maximum human players per room
	MaxRounds     int // rounds in a best_of_five series
	AIPlayerCount int // AI seats added per room

	AnswerTimeLimit time.Duration
	VotingTimeLimit time.Duration

	// Phase pacing. Kept configurable so tests can shrink them.
	StartDelay     time.Duration // grace after min players reached
	CountdownDelay time.Duration // READY -> first round
	SettleDelay    time.Duration // early-advance settle
	RevealDelay    time.Duration // REVEAL -> next round
	TeardownDelay  time.Duration // ENDED -> room teardown
	AIThinkMin     time.Duration // AI thinking delay window
	AIThinkMax     time.Duration
	MatchInterval  time.Duration // matchmaking pass period
}

// Config is the process-wide configuration
type Config struct {
	Port       string
	CORSOrigin string

	AIServiceURL    string
	DefaultProvider string // server-wide provider hint, "auto" means none
	RedisURL        string
	MongoURI        string

	Game GameConfig
}

// Load reads configuration from the environment with defaults
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "4000"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		AIServiceURL:    getEnv("AI_SERVICE_URL", "http://localhost:8000"),
		DefaultProvider: getEnv("AI_DEFAULT_PROVIDER", "auto"),
		RedisURL:        getEnv("REDIS_URL", ""),
		MongoURI:        getEnv("MONGO_URI", ""),

		Game: GameConfig{
			MinPlayers:    getEnvInt("GAME_MIN_PLAYERS", 2),
			MaxPlayers:    getEnvInt("GAME_MAX_PLAYERS", 5),
			MaxRounds:     getEnvInt("GAME_MAX_ROUNDS", 5),
			AIPlayerCount: getEnvInt("GAME_AI_PLAYERS", 1),

			AnswerTimeLimit: getEnvDuration("GAME_ANSWER_TIME", 45*time.Second),
			VotingTimeLimit: getEnvDuration("GAME_VOTING_TIME", 30*time.Second),

			StartDelay:     getEnvDuration("GAME_START_DELAY", 3*time.Second),
			CountdownDelay: getEnvDuration("GAME_COUNTDOWN_DELAY", 3*time.Second),
			SettleDelay:    getEnvDuration("GAME_SETTLE_DELAY", time.Second),
			RevealDelay:    getEnvDuration("GAME_REVEAL_DELAY", 8*time.Second),
			TeardownDelay:  getEnvDuration("GAME_TEARDOWN_DELAY", 30*time.Second),
			AIThinkMin:     getEnvDuration("GAME_AI_THINK_MIN", 2*time.Second),
			AIThinkMax:     getEnvDuration("GAME_AI_THINK_MAX", 8*time.Second),
			MatchInterval:  getEnvDuration("GAME_MATCH_INTERVAL", 2*time.Second),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
