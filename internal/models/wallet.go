package models

import "time"

// Wallet is the spendable-balance snapshot returned by the economy
// service. Balance is whole chips; there are no fractional amounts.
type Wallet struct {
	UserID         int64      `json:"user_id"`
	Balance        int64      `json:"balance"`
	LastDailyBonus *time.Time `json:"last_daily_bonus,omitempty"`
}

// TransactionResult pairs a booked transaction with the balance it
// produced.
type TransactionResult struct {
	Transaction *Transaction `json:"transaction"`
	Balance     int64        `json:"balance"`
}
