package models

import "time"

// Metric names tracked by achievements and missions. They address
// counters on UserStats.
const (
	MetricGamesPlayed  = "games_played"
	MetricTotalWagered = "total_wagered"
	MetricTotalWon     = "total_won"
	MetricWins         = "wins"
	MetricBiggestWin   = "biggest_win"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// UserStats holds lifetime counters. Counters only ever grow; there is
// no decrement operation anywhere in the service.
type UserStats struct {
	UserID       int64 `json:"user_id"`
	XP           int64 `json:"xp"`
	TotalWagered int64 `json:"total_wagered"`
	TotalWon     int64 `json:"total_won"`
	GamesPlayed  int64 `json:"games_played"`
	Wins         int64 `json:"wins"`
	Losses       int64 `json:"losses"`
	BiggestWin   int64 `json:"biggest_win"`
}

// Metric returns the counter value addressed by a metric name.
func (s *UserStats) Metric(name string) int64 {
	switch name {
	case MetricGamesPlayed:
		return s.GamesPlayed
	case MetricTotalWagered:
		return s.TotalWagered
	case MetricTotalWon:
		return s.TotalWon
	case MetricWins:
		return s.Wins
	case MetricBiggestWin:
		return s.BiggestWin
	}
	return 0
}

type GameStats struct {
	UserID       int64  `json:"user_id"`
	Game         string `json:"game"`
	GamesPlayed  int64  `json:"games_played"`
	TotalWagered int64  `json:"total_wagered"`
	TotalWon     int64  `json:"total_won"`
}

type Achievement struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Threshold   int64  `json:"threshold"`
	Metric      string `json:"metric"`
}

// UserAchievement is an achievement seen from one user's side. A nil
// UnlockedAt means still locked.
type UserAchievement struct {
	Achievement
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

func (a *UserAchievement) Unlocked() bool {
	return a.UnlockedAt != nil
}

type Mission struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      int64  `json:"target"`
	Reward      int64  `json:"reward"`
	Metric      string `json:"metric"`
	Frequency   string `json:"frequency"`
}

// UserMission is a mission with one user's progress attached. Progress
// never exceeds Target; CompletedAt and ClaimedAt are stamped at most
// once per period.
type UserMission struct {
	Mission
	Progress    int64      `json:"progress"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

func (m *UserMission) Completed() bool {
	return m.CompletedAt != nil
}

func (m *UserMission) Claimed() bool {
	return m.ClaimedAt != nil
}

// LoyaltyTier is a wager-volume bracket with a bonus multiplier.
type LoyaltyTier struct {
	Name             string  `json:"name"`
	WagerRequirement int64   `json:"wager_requirement"`
	BonusMultiplier  float64 `json:"bonus_multiplier"`
}

// ProgressionUpdate is what recording one round produced: the fresh
// counters plus anything newly unlocked or completed.
type ProgressionUpdate struct {
	Stats        *UserStats        `json:"stats"`
	GameStats    *GameStats        `json:"game_stats"`
	Level        int               `json:"level"`
	XPToNext     int64             `json:"xp_to_next"`
	Tier         LoyaltyTier       `json:"loyalty_tier"`
	Unlocked     []UserAchievement `json:"unlocked_achievements,omitempty"`
	NewCompleted []UserMission     `json:"completed_missions,omitempty"`
}

// ProfileOverview aggregates everything the profile screen shows.
type ProfileOverview struct {
	Stats        *UserStats        `json:"stats"`
	Level        int               `json:"level"`
	XPToNext     int64             `json:"xp_to_next"`
	Tier         LoyaltyTier       `json:"loyalty_tier"`
	GameStats    []GameStats       `json:"game_stats"`
	Achievements []UserAchievement `json:"achievements"`
	Missions     []UserMission     `json:"missions"`
}
