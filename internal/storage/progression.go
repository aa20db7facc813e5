package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fantasy-casino-backend/internal/models"
)

// RoundDelta is the set of counter increments one settled round
// produces. The progression service computes it; the store only applies
// it.
type RoundDelta struct {
	XP         int64
	Wagered    int64
	Won        int64
	Wins       int64
	Losses     int64
	BiggestWin int64
}

// EnsureUserStats creates the zeroed counters row when missing and
// returns the current counters.
func (s *Store) EnsureUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user_stats (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`,
		userID); err != nil {
		return nil, fmt.Errorf("ensure user stats: %w", err)
	}
	return s.getUserStats(ctx, userID)
}

// ApplyRoundDelta increments the lifetime and per-game counters in one
// commit and returns both fresh rows.
func (s *Store) ApplyRoundDelta(ctx context.Context, userID int64, game string, delta RoundDelta) (*models.UserStats, *models.GameStats, error) {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin stats update: %w", err)
	}
	defer func() { _ = txn.Rollback() }()

	if _, err := txn.ExecContext(ctx,
		`INSERT INTO user_stats (user_id, xp, total_wagered, total_won, games_played, wins, losses, biggest_win)
		 VALUES (?, ?, ?, ?, 1, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			xp = xp + excluded.xp,
			total_wagered = total_wagered + excluded.total_wagered,
			total_won = total_won + excluded.total_won,
			games_played = games_played + 1,
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			biggest_win = MAX(biggest_win, excluded.biggest_win)`,
		userID, delta.XP, delta.Wagered, delta.Won, delta.Wins, delta.Losses, delta.BiggestWin); err != nil {
		return nil, nil, fmt.Errorf("apply user stats: %w", err)
	}

	if _, err := txn.ExecContext(ctx,
		`INSERT INTO user_game_stats (user_id, game, games_played, total_wagered, total_won)
		 VALUES (?, ?, 1, ?, ?)
		 ON CONFLICT(user_id, game) DO UPDATE SET
			games_played = games_played + 1,
			total_wagered = total_wagered + excluded.total_wagered,
			total_won = total_won + excluded.total_won`,
		userID, game, delta.Wagered, delta.Won); err != nil {
		return nil, nil, fmt.Errorf("apply game stats: %w", err)
	}

	stats := &models.UserStats{UserID: userID}
	if err := txn.QueryRowContext(ctx,
		`SELECT xp, total_wagered, total_won, games_played, wins, losses, biggest_win
		 FROM user_stats WHERE user_id = ?`, userID).Scan(
		&stats.XP, &stats.TotalWagered, &stats.TotalWon, &stats.GamesPlayed,
		&stats.Wins, &stats.Losses, &stats.BiggestWin); err != nil {
		return nil, nil, fmt.Errorf("reload user stats: %w", err)
	}

	gameStats := &models.GameStats{UserID: userID, Game: game}
	if err := txn.QueryRowContext(ctx,
		`SELECT games_played, total_wagered, total_won
		 FROM user_game_stats WHERE user_id = ? AND game = ?`, userID, game).Scan(
		&gameStats.GamesPlayed, &gameStats.TotalWagered, &gameStats.TotalWon); err != nil {
		return nil, nil, fmt.Errorf("reload game stats: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit stats update: %w", err)
	}
	return stats, gameStats, nil
}

// GameStatsForUser lists the per-game counters, one row per game
// played.
func (s *Store) GameStatsForUser(ctx context.Context, userID int64) ([]models.GameStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game, games_played, total_wagered, total_won
		 FROM user_game_stats WHERE user_id = ? ORDER BY game`, userID)
	if err != nil {
		return nil, fmt.Errorf("query game stats: %w", err)
	}
	defer rows.Close()

	var all []models.GameStats
	for rows.Next() {
		gs := models.GameStats{UserID: userID}
		if err := rows.Scan(&gs.Game, &gs.GamesPlayed, &gs.TotalWagered, &gs.TotalWon); err != nil {
			return nil, fmt.Errorf("scan game stats: %w", err)
		}
		all = append(all, gs)
	}
	return all, rows.Err()
}

// AchievementsForUser lists every achievement with the user's unlock
// time attached (nil while locked).
func (s *Store) AchievementsForUser(ctx context.Context, userID int64) ([]models.UserAchievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.code, a.title, a.description, a.threshold, a.metric, ua.unlocked_at
		 FROM achievements a
		 LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = ?
		 ORDER BY a.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var all []models.UserAchievement
	for rows.Next() {
		var ua models.UserAchievement
		var unlocked sql.NullInt64
		if err := rows.Scan(&ua.ID, &ua.Code, &ua.Title, &ua.Description,
			&ua.Threshold, &ua.Metric, &unlocked); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		ua.UnlockedAt = nullableTime(unlocked)
		all = append(all, ua)
	}
	return all, rows.Err()
}

// UnlockAchievement records the unlock once; repeats are no-ops.
// Returns whether this call created the unlock.
func (s *Store) UnlockAchievement(ctx context.Context, userID, achievementID int64, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, achievement_id) DO NOTHING`,
		userID, achievementID, timeToUnixMillis(now))
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock rows: %w", err)
	}
	return rows > 0, nil
}

// MissionsForUser lists every mission with the user's progress row
// attached (zero progress when none exists yet).
func (s *Store) MissionsForUser(ctx context.Context, userID int64) ([]models.UserMission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.code, m.title, m.description, m.target, m.reward, m.metric, m.frequency,
			COALESCE(um.progress, 0), um.completed_at, um.claimed_at
		 FROM missions m
		 LEFT JOIN user_missions um ON um.mission_id = m.id AND um.user_id = ?
		 ORDER BY m.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query missions: %w", err)
	}
	defer rows.Close()

	var all []models.UserMission
	for rows.Next() {
		um, err := scanUserMission(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, *um)
	}
	return all, rows.Err()
}

// MissionForUser loads one mission by code with the user's progress.
func (s *Store) MissionForUser(ctx context.Context, userID int64, code string) (*models.UserMission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.code, m.title, m.description, m.target, m.reward, m.metric, m.frequency,
			COALESCE(um.progress, 0), um.completed_at, um.claimed_at
		 FROM missions m
		 LEFT JOIN user_missions um ON um.mission_id = m.id AND um.user_id = ?
		 WHERE m.code = ?`, userID, code)
	if err != nil {
		return nil, fmt.Errorf("query mission: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query mission: %w", err)
		}
		return nil, models.ErrMissionNotFound
	}
	return scanUserMission(rows)
}

// SaveMissionProgress writes the computed progress. The first
// completion stamp wins; later writes never move it.
func (s *Store) SaveMissionProgress(ctx context.Context, userID, missionID, progress int64, completedAt *time.Time) error {
	var completed any
	if completedAt != nil {
		completed = timeToUnixMillis(*completedAt)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_missions (user_id, mission_id, progress, completed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, mission_id) DO UPDATE SET
			progress = excluded.progress,
			completed_at = COALESCE(user_missions.completed_at, excluded.completed_at)`,
		userID, missionID, progress, completed)
	if err != nil {
		return fmt.Errorf("save mission progress: %w", err)
	}
	return nil
}

// MarkMissionClaimed stamps the claim time once. Returns false when the
// mission was already claimed.
func (s *Store) MarkMissionClaimed(ctx context.Context, userID, missionID int64, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_missions SET claimed_at = ?
		 WHERE user_id = ? AND mission_id = ? AND claimed_at IS NULL`,
		timeToUnixMillis(now), userID, missionID)
	if err != nil {
		return false, fmt.Errorf("mark mission claimed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim rows: %w", err)
	}
	return rows > 0, nil
}

// ResetMissions clears progress for every user mission of the given
// frequency so the next period starts fresh. Returns the number of rows
// reset.
func (s *Store) ResetMissions(ctx context.Context, frequency string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_missions SET progress = 0, completed_at = NULL, claimed_at = NULL
		 WHERE mission_id IN (SELECT id FROM missions WHERE frequency = ?)`,
		frequency)
	if err != nil {
		return 0, fmt.Errorf("reset missions: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset rows: %w", err)
	}
	return rows, nil
}

func (s *Store) getUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	stats := &models.UserStats{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT xp, total_wagered, total_won, games_played, wins, losses, biggest_win
		 FROM user_stats WHERE user_id = ?`, userID).Scan(
		&stats.XP, &stats.TotalWagered, &stats.TotalWon, &stats.GamesPlayed,
		&stats.Wins, &stats.Losses, &stats.BiggestWin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user stats: %w", err)
	}
	return stats, nil
}

func scanUserMission(rows *sql.Rows) (*models.UserMission, error) {
	var um models.UserMission
	var completed, claimed sql.NullInt64
	if err := rows.Scan(&um.ID, &um.Code, &um.Title, &um.Description, &um.Target,
		&um.Reward, &um.Metric, &um.Frequency, &um.Progress, &completed, &claimed); err != nil {
		return nil, fmt.Errorf("scan mission: %w", err)
	}
	um.CompletedAt = nullableTime(completed)
	um.ClaimedAt = nullableTime(claimed)
	return &um, nil
}

func nullableTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := unixMillisToTime(v.Int64)
	return &t
}
