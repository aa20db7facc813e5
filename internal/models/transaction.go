package models

import "time"

type TransactionKind string

const (
	TransactionBet        TransactionKind = "bet"
	TransactionWin        TransactionKind = "win"
	TransactionLoss       TransactionKind = "loss"
	TransactionRefund     TransactionKind = "refund"
	TransactionBonus      TransactionKind = "bonus"
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
)

// Meta carries free-form facts about a transaction or round (game state,
// bonus reason, withdrawal address). Stored as JSON.
type Meta map[string]any

// Transaction is one immutable ledger entry. Amount is signed: debits
// are negative, credits positive. For every user the amounts sum to the
// wallet balance.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Kind      TransactionKind `json:"kind"`
	Amount    int64           `json:"amount"`
	Meta      Meta            `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
