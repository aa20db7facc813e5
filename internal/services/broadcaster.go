package services

import "fantasy-casino-backend/internal/models"

// Broadcaster pushes live events to connected websocket clients. The
// hub in the handlers package implements it; services stay unaware of
// the wire format.
type Broadcaster interface {
	BroadcastBalance(userID int64, balance int64)
	BroadcastRound(userID int64, round *models.GameRound, display string)
	BroadcastBigWin(username, game string, payout int64)
}
