package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateSessionID() string {
	return fmt.Sprintf("round_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

// ClassifyPayout maps a settlement to its transaction kind.
func ClassifyPayout(bet, payout int64) TransactionKind {
	switch {
	case payout > bet:
		return TransactionWin
	case payout == bet:
		return TransactionRefund
	default:
		return TransactionLoss
	}
}

// MergeMeta copies extra into base without touching either argument.
func MergeMeta(base Meta, extra Meta) Meta {
	merged := make(Meta, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
