package models_test

import (
	"testing"
	"time"

	"fantasy-casino-backend/internal/models"
)

func TestModels(t *testing.T) {
	round := &models.GameRound{
		ID:     1,
		UserID: 123456789,
		Game:   "coinflip",
		Bet:    200,
		Payout: 380,
	}

	if round.Net() != 180 {
		t.Errorf("Expected net 180, got %d", round.Net())
	}

	if models.ClassifyPayout(100, 200) != models.TransactionWin {
		t.Error("Payout above bet should classify as win")
	}
	if models.ClassifyPayout(100, 100) != models.TransactionRefund {
		t.Error("Payout equal to bet should classify as refund")
	}
	if models.ClassifyPayout(100, 0) != models.TransactionLoss {
		t.Error("Zero payout should classify as loss")
	}

	id := models.GenerateSessionID()
	if id == "" {
		t.Error("Session ID should not be empty")
	}

	merged := models.MergeMeta(models.Meta{"game": "dice"}, models.Meta{"payout": 40})
	if merged["game"] != "dice" || merged["payout"] != 40 {
		t.Errorf("Unexpected merged meta: %v", merged)
	}
}

func TestUserStatsMetric(t *testing.T) {
	stats := &models.UserStats{
		GamesPlayed:  10,
		TotalWagered: 5000,
		TotalWon:     2500,
		Wins:         4,
		BiggestWin:   900,
	}

	cases := []struct {
		metric string
		want   int64
	}{
		{models.MetricGamesPlayed, 10},
		{models.MetricTotalWagered, 5000},
		{models.MetricTotalWon, 2500},
		{models.MetricWins, 4},
		{models.MetricBiggestWin, 900},
		{"unknown", 0},
	}

	for _, tc := range cases {
		if got := stats.Metric(tc.metric); got != tc.want {
			t.Errorf("Metric(%q) = %d, want %d", tc.metric, got, tc.want)
		}
	}
}

func TestUserMissionState(t *testing.T) {
	mission := &models.UserMission{
		Mission: models.Mission{Code: "daily_games", Target: 5, Reward: 200},
	}

	if mission.Completed() || mission.Claimed() {
		t.Error("Fresh mission should be neither completed nor claimed")
	}

	now := time.Now()
	mission.CompletedAt = &now

	if !mission.Completed() {
		t.Error("Mission with completion stamp should report completed")
	}
	if mission.Claimed() {
		t.Error("Completed mission should not report claimed yet")
	}
}
