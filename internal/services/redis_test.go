package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fantasy-casino-backend/internal/services"
)

func newTestRedis(t *testing.T) *services.RedisService {
	t.Helper()

	redisService, err := services.NewRedisService("localhost:6379", "", 15)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { redisService.Close() })
	return redisService
}

func TestCheckRateLimit(t *testing.T) {
	redisService := newTestRedis(t)
	ctx := context.Background()

	// A unique action name keeps reruns from seeing each other's counts.
	action := fmt.Sprintf("test_play_%d", time.Now().UnixNano())
	userID := int64(999999)

	for i := 1; i <= 3; i++ {
		allowed, err := redisService.CheckRateLimit(ctx, userID, action, 3, time.Minute)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("check %d blocked inside the limit", i)
		}
	}

	allowed, err := redisService.CheckRateLimit(ctx, userID, action, 3, time.Minute)
	if err != nil {
		t.Fatalf("check over limit: %v", err)
	}
	if allowed {
		t.Fatal("fourth check passed a limit of 3")
	}
}

func TestWeeklyLeaderboard(t *testing.T) {
	redisService := newTestRedis(t)
	ctx := context.Background()

	// Unique user ids so reruns cannot collide with old board members.
	base := time.Now().UnixNano()
	first, second, third := base+1, base+2, base+3

	if err := redisService.RecordWin(ctx, second, 5_000_000); err != nil {
		t.Fatalf("record win: %v", err)
	}
	if err := redisService.RecordWin(ctx, first, 9_000_000); err != nil {
		t.Fatalf("record win: %v", err)
	}
	if err := redisService.RecordWin(ctx, third, 1_000_000); err != nil {
		t.Fatalf("record win: %v", err)
	}
	// Wins on the same member accumulate.
	if err := redisService.RecordWin(ctx, third, 500_000); err != nil {
		t.Fatalf("record win: %v", err)
	}

	scores, err := redisService.TopWinners(ctx, 50)
	if err != nil {
		t.Fatalf("top winners: %v", err)
	}

	position := make(map[int64]int)
	total := make(map[int64]int64)
	for i, score := range scores {
		position[score.UserID] = i
		total[score.UserID] = score.TotalWon
	}
	for _, id := range []int64{first, second, third} {
		if _, ok := position[id]; !ok {
			t.Fatalf("user %d missing from the board", id)
		}
	}
	if !(position[first] < position[second] && position[second] < position[third]) {
		t.Fatalf("board order = %v", position)
	}
	if total[third] != 1_500_000 {
		t.Fatalf("accumulated score = %d, want 1500000", total[third])
	}
}
