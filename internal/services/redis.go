package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisService wraps the shared client behind the rate limiter and the
// weekly winners board. Redis is authoritative for neither balances nor
// rounds; losing it only resets limits and the board.
type RedisService struct {
	client *redis.Client
}

// WinnerScore is one row of the weekly board before usernames are
// attached.
type WinnerScore struct {
	UserID   int64
	TotalWon int64
}

func NewRedisService(addr, password string, db int) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client}, nil
}

// CheckRateLimit counts one action against the user's window and
// reports whether they are still inside the limit.
func (s *RedisService) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %v", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit expiry: %v", err)
		}
	}

	return count <= int64(limit), nil
}

// RecordWin adds a payout to this week's leaderboard.
func (s *RedisService) RecordWin(ctx context.Context, userID int64, payout int64) error {
	key := fmt.Sprintf(KeyLeaderboardWeekly, weekTag(time.Now()))

	if err := s.client.ZIncrBy(ctx, key, float64(payout), strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to record win: %v", err)
	}
	if err := s.client.Expire(ctx, key, TTLLeaderboardWeekly).Err(); err != nil {
		return fmt.Errorf("failed to set leaderboard expiry: %v", err)
	}

	return nil
}

// TopWinners returns the best scores on this week's board, highest
// first.
func (s *RedisService) TopWinners(ctx context.Context, limit int) ([]WinnerScore, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	key := fmt.Sprintf(KeyLeaderboardWeekly, weekTag(time.Now()))

	entries, err := s.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %v", err)
	}

	scores := make([]WinnerScore, 0, len(entries))
	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		scores = append(scores, WinnerScore{UserID: userID, TotalWon: int64(entry.Score)})
	}

	return scores, nil
}

// Close releases the underlying connection pool.
func (s *RedisService) Close() error {
	return s.client.Close()
}

// weekTag formats a time as its ISO year and week, e.g. 2026-W35.
func weekTag(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
