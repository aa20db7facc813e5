package models

import "time"

// GameRound is the settled outcome record of one played bet. Written
// exactly once per settlement; payout is never negative.
type GameRound struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Game      string    `json:"game"`
	Bet       int64     `json:"bet"`
	Payout    int64     `json:"payout"`
	State     Meta      `json:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *GameRound) Net() int64 {
	return r.Payout - r.Bet
}

// LeaderboardEntry is one row of the weekly winners board.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	TotalWon int64  `json:"total_won"`
}
