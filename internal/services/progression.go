package services

import (
	"context"
	"sync"
	"time"

	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/storage"
)

// loyaltyTiers runs from lowest to highest wager requirement.
var loyaltyTiers = []models.LoyaltyTier{
	{Name: "Bronze", WagerRequirement: 0, BonusMultiplier: 1.0},
	{Name: "Silver", WagerRequirement: 5000, BonusMultiplier: 1.05},
	{Name: "Gold", WagerRequirement: 25000, BonusMultiplier: 1.1},
	{Name: "Platinum", WagerRequirement: 75000, BonusMultiplier: 1.2},
	{Name: "Diamond", WagerRequirement: 150000, BonusMultiplier: 1.35},
}

// LevelFromXP converts lifetime XP into a level plus the XP still
// missing for the next one. Level 2 costs 200 XP and every level after
// that costs 150 more than the previous step.
func LevelFromXP(xp int64) (int, int64) {
	level := 1
	threshold := int64(200)
	remaining := xp
	for remaining >= threshold {
		remaining -= threshold
		level++
		threshold = 200 + int64(level-1)*150
	}
	return level, threshold - remaining
}

// TierFromWagered returns the highest loyalty tier whose requirement
// the lifetime wager volume meets.
func TierFromWagered(wagered int64) models.LoyaltyTier {
	tier := loyaltyTiers[0]
	for _, t := range loyaltyTiers[1:] {
		if wagered < t.WagerRequirement {
			break
		}
		tier = t
	}
	return tier
}

// ProgressionService turns settled rounds into XP, achievement unlocks
// and mission progress. Updates for one user are serialized with a
// per-user lock so two concurrent settlements cannot double-count.
type ProgressionService struct {
	store *storage.Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewProgressionService(store *storage.Store) *ProgressionService {
	return &ProgressionService{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (s *ProgressionService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// RecordRound applies one settled round to the user's counters and
// returns the fresh totals plus anything newly unlocked or completed.
func (s *ProgressionService) RecordRound(ctx context.Context, userID int64, game string, bet, payout int64) (*models.ProgressionUpdate, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	stats, gameStats, err := s.store.ApplyRoundDelta(ctx, userID, game, roundDelta(bet, payout))
	if err != nil {
		return nil, err
	}

	unlocked, err := s.evaluateAchievements(ctx, userID, stats)
	if err != nil {
		return nil, err
	}
	completed, err := s.advanceMissions(ctx, userID, missionDeltas(bet, payout))
	if err != nil {
		return nil, err
	}

	level, xpToNext := LevelFromXP(stats.XP)
	return &models.ProgressionUpdate{
		Stats:        stats,
		GameStats:    gameStats,
		Level:        level,
		XPToNext:     xpToNext,
		Tier:         TierFromWagered(stats.TotalWagered),
		Unlocked:     unlocked,
		NewCompleted: completed,
	}, nil
}

// ClaimMission stamps the claim and reports whether this call claimed
// it. An already-claimed mission comes back with false and no error;
// the caller pays the reward only on true.
func (s *ProgressionService) ClaimMission(ctx context.Context, userID int64, code string) (*models.UserMission, bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	mission, err := s.store.MissionForUser(ctx, userID, code)
	if err != nil {
		return nil, false, err
	}
	if !mission.Completed() {
		return nil, false, models.ErrMissionNotCompleted
	}
	if mission.Claimed() {
		return mission, false, nil
	}

	now := time.Now()
	claimed, err := s.store.MarkMissionClaimed(ctx, userID, mission.ID, now)
	if err != nil {
		return nil, false, err
	}
	if claimed {
		mission.ClaimedAt = &now
	}
	return mission, claimed, nil
}

// GetProfile assembles everything the profile screen shows.
func (s *ProgressionService) GetProfile(ctx context.Context, userID int64) (*models.ProfileOverview, error) {
	stats, err := s.store.EnsureUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	gameStats, err := s.store.GameStatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.store.AchievementsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	missions, err := s.store.MissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	level, xpToNext := LevelFromXP(stats.XP)
	return &models.ProfileOverview{
		Stats:        stats,
		Level:        level,
		XPToNext:     xpToNext,
		Tier:         TierFromWagered(stats.TotalWagered),
		GameStats:    gameStats,
		Achievements: achievements,
		Missions:     missions,
	}, nil
}

// Achievements lists every achievement with the user's unlock state.
func (s *ProgressionService) Achievements(ctx context.Context, userID int64) ([]models.UserAchievement, error) {
	return s.store.AchievementsForUser(ctx, userID)
}

// Missions lists every mission with the user's progress.
func (s *ProgressionService) Missions(ctx context.Context, userID int64) ([]models.UserMission, error) {
	return s.store.MissionsForUser(ctx, userID)
}

// ResetMissions clears all mission progress of one frequency so the
// next period starts fresh. Returns the number of rows reset.
func (s *ProgressionService) ResetMissions(ctx context.Context, frequency string) (int64, error) {
	return s.store.ResetMissions(ctx, frequency)
}

func (s *ProgressionService) evaluateAchievements(ctx context.Context, userID int64, stats *models.UserStats) ([]models.UserAchievement, error) {
	all, err := s.store.AchievementsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []models.UserAchievement
	now := time.Now()
	for _, a := range all {
		if a.Unlocked() || stats.Metric(a.Metric) < a.Threshold {
			continue
		}
		fresh, err := s.store.UnlockAchievement(ctx, userID, a.ID, now)
		if err != nil {
			return nil, err
		}
		if fresh {
			at := now
			a.UnlockedAt = &at
			unlocked = append(unlocked, a)
		}
	}
	return unlocked, nil
}

func (s *ProgressionService) advanceMissions(ctx context.Context, userID int64, deltas map[string]int64) ([]models.UserMission, error) {
	missions, err := s.store.MissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var completed []models.UserMission
	now := time.Now()
	for _, m := range missions {
		amount := deltas[m.Metric]
		if amount <= 0 || m.Completed() {
			continue
		}
		progress := m.Progress + amount
		if progress > m.Target {
			progress = m.Target
		}
		var completedAt *time.Time
		if progress >= m.Target {
			at := now
			completedAt = &at
		}
		if err := s.store.SaveMissionProgress(ctx, userID, m.ID, progress, completedAt); err != nil {
			return nil, err
		}
		m.Progress = progress
		if completedAt != nil {
			m.CompletedAt = completedAt
			completed = append(completed, m)
		}
	}
	return completed, nil
}

// roundDelta computes the counter increments one round produces. XP is
// a tenth of the stake plus a twentieth of the net win, each at least 1
// when due. A push counts as neither win nor loss.
func roundDelta(bet, payout int64) storage.RoundDelta {
	xp := bet / 10
	if xp < 1 {
		xp = 1
	}
	net := payout - bet
	if net < 0 {
		net = 0
	}
	if net > 0 {
		bonus := net / 20
		if bonus < 1 {
			bonus = 1
		}
		xp += bonus
	}

	delta := storage.RoundDelta{XP: xp, Wagered: bet, Won: payout, BiggestWin: net}
	switch {
	case payout > bet:
		delta.Wins = 1
	case payout < bet:
		delta.Losses = 1
	}
	return delta
}

// missionDeltas maps one settled round onto the mission metrics it
// advances.
func missionDeltas(bet, payout int64) map[string]int64 {
	deltas := map[string]int64{
		models.MetricGamesPlayed:  1,
		models.MetricTotalWagered: bet,
		models.MetricTotalWon:     payout,
	}
	if payout > bet {
		deltas[models.MetricWins] = 1
	}
	return deltas
}
