package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"fantasy-casino-backend/internal/models"
	"fantasy-casino-backend/internal/services"
	"fantasy-casino-backend/internal/storage"
)

func newTestEconomy(t *testing.T) *services.EconomyService {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "casino.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return services.NewEconomyService(store, 500, 250, 10, 10000)
}

func TestEnsureAccount(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()

	user, created, err := economy.EnsureAccount(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the account")
	}
	if user.Balance != 500 {
		t.Fatalf("start balance = %d, want 500", user.Balance)
	}

	again, created, err := economy.EnsureAccount(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("ensure account again: %v", err)
	}
	if created {
		t.Fatal("second call must not create the account")
	}
	if again.Balance != 500 {
		t.Fatalf("balance after re-login = %d, want 500", again.Balance)
	}
}

func TestEnsureAccountDefaultUsername(t *testing.T) {
	economy := newTestEconomy(t)

	user, _, err := economy.EnsureAccount(context.Background(), 42, "")
	if err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if user.Username != "player_42" {
		t.Fatalf("username = %q, want player_42", user.Username)
	}
}

func TestPlaceBetLimits(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}

	if _, err := economy.PlaceBet(ctx, 1, 9); !errors.Is(err, models.ErrBetTooSmall) {
		t.Fatalf("bet below minimum: err = %v, want ErrBetTooSmall", err)
	}
	if _, err := economy.PlaceBet(ctx, 1, 10001); !errors.Is(err, models.ErrBetTooLarge) {
		t.Fatalf("bet above maximum: err = %v, want ErrBetTooLarge", err)
	}
	if _, err := economy.PlaceBet(ctx, 1, 600); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatalf("uncovered bet: err = %v, want ErrInsufficientBalance", err)
	}

	result, err := economy.PlaceBet(ctx, 1, 200)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if result.Balance != 300 {
		t.Fatalf("balance after bet = %d, want 300", result.Balance)
	}
	if result.Transaction.Kind != models.TransactionBet || result.Transaction.Amount != -200 {
		t.Fatalf("bet transaction = %s %d, want bet -200",
			result.Transaction.Kind, result.Transaction.Amount)
	}
}

func TestSettleBetWin(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if _, err := economy.PlaceBet(ctx, 1, 200); err != nil {
		t.Fatalf("place bet: %v", err)
	}

	round, result, err := economy.SettleBet(ctx, 1, "coinflip", 200, 380, models.Meta{"outcome": "heads"})
	if err != nil {
		t.Fatalf("settle bet: %v", err)
	}
	if result.Balance != 680 {
		t.Fatalf("balance after win = %d, want 680", result.Balance)
	}
	if result.Transaction.Kind != models.TransactionWin || result.Transaction.Amount != 380 {
		t.Fatalf("settle transaction = %s %d, want win 380",
			result.Transaction.Kind, result.Transaction.Amount)
	}
	if result.Transaction.Meta["game"] != "coinflip" {
		t.Fatalf("transaction meta game = %v, want coinflip", result.Transaction.Meta["game"])
	}

	if round.ID == 0 {
		t.Fatal("round was not persisted")
	}
	if round.State["outcome"] != "heads" {
		t.Fatalf("round state outcome = %v, want heads", round.State["outcome"])
	}
	if round.State["bet"] != int64(200) || round.State["payout"] != int64(380) || round.State["net"] != int64(180) {
		t.Fatalf("round state totals = %v/%v/%v, want 200/380/180",
			round.State["bet"], round.State["payout"], round.State["net"])
	}
}

func TestSettleBetLoss(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if _, err := economy.PlaceBet(ctx, 1, 200); err != nil {
		t.Fatalf("place bet: %v", err)
	}

	_, result, err := economy.SettleBet(ctx, 1, "dice", 200, 0, models.Meta{"player_roll": 2})
	if err != nil {
		t.Fatalf("settle bet: %v", err)
	}
	if result.Balance != 300 {
		t.Fatalf("balance after loss = %d, want 300", result.Balance)
	}
	if result.Transaction.Kind != models.TransactionLoss || result.Transaction.Amount != 0 {
		t.Fatalf("settle transaction = %s %d, want loss 0",
			result.Transaction.Kind, result.Transaction.Amount)
	}
}

func TestSettleBetRefund(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if _, err := economy.PlaceBet(ctx, 1, 100); err != nil {
		t.Fatalf("place bet: %v", err)
	}

	_, result, err := economy.SettleBet(ctx, 1, "dice", 100, 100, nil)
	if err != nil {
		t.Fatalf("settle bet: %v", err)
	}
	if result.Transaction.Kind != models.TransactionRefund {
		t.Fatalf("settle kind = %s, want refund", result.Transaction.Kind)
	}
	if result.Balance != 500 {
		t.Fatalf("balance after push = %d, want 500", result.Balance)
	}
}

func TestSettleBetRejectsNegativePayout(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}

	if _, _, err := economy.SettleBet(ctx, 1, "dice", 100, -1, nil); !errors.Is(err, models.ErrInvalidPayout) {
		t.Fatalf("negative payout: err = %v, want ErrInvalidPayout", err)
	}
}

func TestDailyBonus(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}

	// Fresh accounts carry a backdated stamp, so the first claim works.
	result, err := economy.GrantDailyBonus(ctx, 1)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if result.Balance != 750 {
		t.Fatalf("balance after bonus = %d, want 750", result.Balance)
	}
	if result.Transaction.Meta["reason"] != "daily" {
		t.Fatalf("bonus meta reason = %v, want daily", result.Transaction.Meta["reason"])
	}

	if _, err := economy.GrantDailyBonus(ctx, 1); !errors.Is(err, models.ErrBonusNotReady) {
		t.Fatalf("repeat claim: err = %v, want ErrBonusNotReady", err)
	}

	wallet, err := economy.GetWallet(ctx, 1)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.LastDailyBonus == nil {
		t.Fatal("wallet is missing the bonus stamp")
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}

	result, err := economy.Deposit(ctx, 1, 300)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if result.Balance != 800 {
		t.Fatalf("balance after deposit = %d, want 800", result.Balance)
	}

	result, err = economy.Withdraw(ctx, 1, 200, "TXq29ab")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if result.Balance != 600 {
		t.Fatalf("balance after withdrawal = %d, want 600", result.Balance)
	}
	if result.Transaction.Meta["address"] != "TXq29ab" {
		t.Fatalf("withdrawal meta address = %v, want TXq29ab", result.Transaction.Meta["address"])
	}

	if _, err := economy.Withdraw(ctx, 1, 5000, "TXq29ab"); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatalf("uncovered withdrawal: err = %v, want ErrInsufficientBalance", err)
	}
	if _, err := economy.Withdraw(ctx, 1, 0, "TXq29ab"); err == nil {
		t.Fatal("zero withdrawal must fail")
	}
}

func TestGrantReward(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}

	result, err := economy.GrantReward(ctx, 1, 150, "mission", models.Meta{"mission": "daily_games"})
	if err != nil {
		t.Fatalf("grant reward: %v", err)
	}
	if result.Balance != 650 {
		t.Fatalf("balance after reward = %d, want 650", result.Balance)
	}
	if result.Transaction.Kind != models.TransactionBonus {
		t.Fatalf("reward kind = %s, want bonus", result.Transaction.Kind)
	}
	if result.Transaction.Meta["reason"] != "mission" || result.Transaction.Meta["mission"] != "daily_games" {
		t.Fatalf("reward meta = %v", result.Transaction.Meta)
	}
}

func TestTransactionHistory(t *testing.T) {
	economy := newTestEconomy(t)
	ctx := context.Background()
	if _, _, err := economy.EnsureAccount(ctx, 1, "alice"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	if _, err := economy.PlaceBet(ctx, 1, 100); err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if _, _, err := economy.SettleBet(ctx, 1, "slots", 100, 0, nil); err != nil {
		t.Fatalf("settle bet: %v", err)
	}

	txs, err := economy.Transactions(ctx, 1, 10)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	// Newest first: loss, bet, start bonus.
	if len(txs) != 3 {
		t.Fatalf("transaction count = %d, want 3", len(txs))
	}
	if txs[0].Kind != models.TransactionLoss || txs[1].Kind != models.TransactionBet || txs[2].Kind != models.TransactionBonus {
		kinds := make([]string, len(txs))
		for i, tx := range txs {
			kinds[i] = string(tx.Kind)
		}
		t.Fatalf("transaction order = %s", strings.Join(kinds, ","))
	}

	rounds, err := economy.Rounds(ctx, 1, 10)
	if err != nil {
		t.Fatalf("rounds: %v", err)
	}
	if len(rounds) != 1 || rounds[0].Game != "slots" {
		t.Fatalf("rounds = %+v, want one slots round", rounds)
	}
}
