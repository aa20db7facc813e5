package models

import "errors"

// Domain errors surfaced to the API layer. Handlers map these to HTTP
// status codes with errors.Is; services wrap them with context.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrBonusNotReady       = errors.New("daily bonus not ready")
	ErrBetTooSmall         = errors.New("bet below minimum")
	ErrBetTooLarge         = errors.New("bet above maximum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidPayout       = errors.New("payout cannot be negative")
	ErrMissionNotFound     = errors.New("mission not found")
	ErrMissionNotCompleted = errors.New("mission not completed")
)
