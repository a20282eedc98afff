package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache keeps an all-time score ZSET plus a games-played counter
// in Redis. Writes are best-effort: the game never depends on them.
type LeaderboardCache interface {
	AddScore(ctx context.Context, username string, delta int) error
	IncrGamesPlayed(ctx context.Context) error
	GetTop(ctx context.Context, limit int) ([]Entry, error)
	GamesPlayed(ctx context.Context) (int64, error)
}

// Entry is a single all-time leaderboard row
type Entry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

const (
	leaderboardKey = "amiai:lb:alltime"
	gamesKey       = "amiai:games:total"
)

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a Redis-backed leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

func (c *leaderboardCache) AddScore(ctx context.Context, username string, delta int) error {
	return c.client.ZIncrBy(ctx, leaderboardKey, float64(delta), username).Err()
}

func (c *leaderboardCache) IncrGamesPlayed(ctx context.Context) error {
	return c.client.Incr(ctx, gamesKey).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]Entry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(results))
	for i, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected member type %T", z.Member)
		}
		entries[i] = Entry{
			Username: member,
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GamesPlayed(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, gamesKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
