package services

import (
	"context"
	"fmt"
	"time"

	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/storage"
)

// EconomyService owns every balance movement. All mutations go through
// the store's single-commit helpers, so a booked transaction and the
// balance move it describes can never come apart.
type EconomyService struct {
	store      *storage.Store
	startBonus int64
	dailyBonus int64
	minBet     int64
	maxBet     int64
}

func NewEconomyService(store *storage.Store, startBonus, dailyBonus, minBet, maxBet int64) *EconomyService {
	return &EconomyService{
		store:      store,
		startBonus: startBonus,
		dailyBonus: dailyBonus,
		minBet:     minBet,
		maxBet:     maxBet,
	}
}

// EnsureAccount creates the account with the start bonus on first
// login and is a no-op afterwards. Returns whether this call created
// the account.
func (s *EconomyService) EnsureAccount(ctx context.Context, userID int64, username string) (*models.User, bool, error) {
	if username == "" {
		username = fmt.Sprintf("player_%d", userID)
	}
	return s.store.CreateUserIfAbsent(ctx, userID, username, s.startBonus, time.Now())
}

// GetUser loads the account row.
func (s *EconomyService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// GetWallet returns the current balance together with the last
// daily-bonus claim time.
func (s *EconomyService) GetWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	last, err := s.store.LastDailyBonus(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Wallet{
		UserID:         user.ID,
		Balance:        user.Balance,
		LastDailyBonus: last,
	}, nil
}

// GrantDailyBonus credits the daily bonus when at least 24 hours have
// passed since the previous claim. A claim inside the window fails
// with ErrBonusNotReady.
func (s *EconomyService) GrantDailyBonus(ctx context.Context, userID int64) (*models.TransactionResult, error) {
	now := time.Now()
	cutoff := now.Add(-24 * time.Hour)
	tx, balance, err := s.store.ClaimDailyBonus(ctx, userID, s.dailyBonus, cutoff, now)
	if err != nil {
		return nil, err
	}
	return &models.TransactionResult{Transaction: tx, Balance: balance}, nil
}

// PlaceBet validates the stake against the table limits and debits it.
// The bet transaction carries no meta; the settlement transaction that
// follows does.
func (s *EconomyService) PlaceBet(ctx context.Context, userID int64, bet int64) (*models.TransactionResult, error) {
	if bet < s.minBet {
		return nil, fmt.Errorf("%w: minimum bet is %d chips", models.ErrBetTooSmall, s.minBet)
	}
	if bet > s.maxBet {
		return nil, fmt.Errorf("%w: maximum bet is %d chips", models.ErrBetTooLarge, s.maxBet)
	}
	tx, balance, err := s.store.Debit(ctx, userID, models.TransactionBet, bet, nil, time.Now())
	if err != nil {
		return nil, err
	}
	return &models.TransactionResult{Transaction: tx, Balance: balance}, nil
}

// SettleBet books the outcome of a played round: it credits the payout
// when there is one, writes the settlement transaction and appends the
// round record. The round state keeps the game's own fields and adds
// bet, payout and net.
func (s *EconomyService) SettleBet(ctx context.Context, userID int64, game string, bet, payout int64, state models.Meta) (*models.GameRound, *models.TransactionResult, error) {
	if payout < 0 {
		return nil, nil, models.ErrInvalidPayout
	}

	kind := models.ClassifyPayout(bet, payout)
	round := &models.GameRound{
		Game:   game,
		Bet:    bet,
		Payout: payout,
		State: models.MergeMeta(models.Meta{
			"bet":    bet,
			"payout": payout,
			"net":    payout - bet,
		}, state),
	}
	txMeta := models.MergeMeta(models.Meta{"game": game}, state)

	tx, balance, err := s.store.SettleRound(ctx, userID, kind, txMeta, round, time.Now())
	if err != nil {
		return nil, nil, err
	}
	return round, &models.TransactionResult{Transaction: tx, Balance: balance}, nil
}

// Deposit credits chips from an external source.
func (s *EconomyService) Deposit(ctx context.Context, userID int64, amount int64) (*models.TransactionResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive")
	}
	tx, balance, err := s.store.Credit(ctx, userID, models.TransactionDeposit, amount, nil, time.Now())
	if err != nil {
		return nil, err
	}
	return &models.TransactionResult{Transaction: tx, Balance: balance}, nil
}

// Withdraw debits chips toward an external address. Fails with
// ErrInsufficientBalance when the balance cannot cover it.
func (s *EconomyService) Withdraw(ctx context.Context, userID int64, amount int64, address string) (*models.TransactionResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}
	meta := models.Meta{"address": address}
	tx, balance, err := s.store.Debit(ctx, userID, models.TransactionWithdrawal, amount, meta, time.Now())
	if err != nil {
		return nil, err
	}
	return &models.TransactionResult{Transaction: tx, Balance: balance}, nil
}

// GrantReward credits a bonus outside the bet/settle cycle, such as a
// mission reward. The reason lands in the transaction meta.
func (s *EconomyService) GrantReward(ctx context.Context, userID int64, amount int64, reason string, meta models.Meta) (*models.TransactionResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("reward amount must be positive")
	}
	full := models.MergeMeta(models.Meta{"reason": reason}, meta)
	tx, balance, err := s.store.Credit(ctx, userID, models.TransactionBonus, amount, full, time.Now())
	if err != nil {
		return nil, err
	}
	return &models.TransactionResult{Transaction: tx, Balance: balance}, nil
}

// Transactions returns the user's newest ledger entries first.
func (s *EconomyService) Transactions(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	return s.store.RecentTransactions(ctx, userID, limit)
}

// Rounds returns the user's newest settled rounds first.
func (s *EconomyService) Rounds(ctx context.Context, userID int64, limit int) ([]models.GameRound, error) {
	return s.store.RecentRounds(ctx, userID, limit)
}

// MinBet and MaxBet expose the table limits for handlers to report.
func (s *EconomyService) MinBet() int64 { return s.minBet }

func (s *EconomyService) MaxBet() int64 { return s.maxBet }
