package services

import "time"

const (
	KeyRateLimit         = "casino:ratelimit:%d:%s"       // user id, action
	KeyLeaderboardWeekly = "casino:leaderboard:weekly:%s" // ISO week tag

	TTLLeaderboardWeekly = 8 * 24 * time.Hour // keeps last week's board readable for a day

	DefaultRateLimitPlays  = 30 // Max 30 played rounds per minute
	DefaultRateLimitWindow = time.Minute
)
