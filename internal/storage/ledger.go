package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fantasy-casino-backend/internal/models"
)

// CreateUserIfAbsent inserts the user with the starting balance, books
// the start bonus transaction and backdates the daily-bonus stamp so
// the first claim is immediately available. Re-running for an existing
// user changes nothing. Returns the user row and whether it was created
// by this call.
func (s *Store) CreateUserIfAbsent(ctx context.Context, userID int64, username string, startBonus int64, now time.Time) (*models.User, bool, error) {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin create user: %w", err)
	}
	defer func() { _ = txn.Rollback() }()

	res, err := txn.ExecContext(ctx,
		`INSERT INTO users (id, username, balance, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		userID, username, startBonus, timeToUnixMillis(now))
	if err != nil {
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert user rows: %w", err)
	}
	created := rows > 0

	if created {
		if _, err := insertTransaction(ctx, txn, userID, models.TransactionBonus, startBonus,
			models.Meta{"reason": "start_bonus"}, now); err != nil {
			return nil, false, err
		}
		// Backdated past the 24h window so a fresh account can claim
		// its first daily bonus right away.
		backdated := now.Add(-24*time.Hour - time.Second)
		if _, err := txn.ExecContext(ctx,
			`INSERT INTO daily_bonus (user_id, last_claimed_at) VALUES (?, ?)
			 ON CONFLICT(user_id) DO NOTHING`,
			userID, timeToUnixMillis(backdated)); err != nil {
			return nil, false, fmt.Errorf("seed daily bonus stamp: %w", err)
		}
	}

	if _, err := txn.ExecContext(ctx,
		`INSERT INTO user_stats (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`,
		userID); err != nil {
		return nil, false, fmt.Errorf("ensure user stats: %w", err)
	}

	user, err := getUserTx(ctx, txn, userID)
	if err != nil {
		return nil, false, err
	}

	if err := txn.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit create user: %w", err)
	}
	return user, created, nil
}

// GetUser loads one user row.
func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, balance, created_at FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

// LastDailyBonus returns the last daily-bonus claim time, or nil when
// no stamp exists yet.
func (s *Store) LastDailyBonus(ctx context.Context, userID int64) (*time.Time, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_claimed_at FROM daily_bonus WHERE user_id = ?`, userID).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query daily bonus stamp: %w", err)
	}
	t := unixMillisToTime(ms)
	return &t, nil
}

// Credit adds amount to the balance and books the transaction in one
// commit. Fails with ErrAccountNotFound for unknown users.
func (s *Store) Credit(ctx context.Context, userID int64, kind models.TransactionKind, amount int64, meta models.Meta, now time.Time) (*models.Transaction, int64, error) {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin credit: %w", err)
	}
	defer func() { _ = txn.Rollback() }()

	res, err := txn.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE id = ?`, amount, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("credit balance: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return nil, 0, fmt.Errorf("credit rows: %w", err)
	} else if rows == 0 {
		return nil, 0, models.ErrAccountNotFound
	}

	tx, err := insertTransaction(ctx, txn, userID, kind, amount, meta, now)
	if err != nil {
		return nil, 0, err
	}

	balance, err := balanceTx(ctx, txn, userID)
	if err != nil {
		return nil, 0, err
	}

	if err := txn.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit credit: %w", err)
	}
	return tx, balance, nil
}

// Debit subtracts amount from the balance only when covered, and books
// the transaction with a negative amount in the same commit. Fails with
// ErrInsufficientBalance when the balance cannot cover the debit.
func (s *Store) Debit(ctx context.Context, userID int64, kind models.TransactionKind, amount int64, meta models.Meta, now time.Time) (*models.Transaction, int64, error) {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin debit: %w", err)
	}
	defer func() { _ = txn.Rollback() }()

	res, err := txn.ExecContext(ctx,
		`UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?`,
		amount, userID, amount)
	if err != nil {
		return nil, 0, fmt.Errorf("debit balance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("debit rows: %w", err)
	}
	if rows == 0 {
		if _, err := getUserTx(ctx, txn, userID); err != nil {
			return nil, 0, err
		}
		return nil, 0, models.ErrInsufficientBalance
	}

	tx, err := insertTransaction(ctx, txn, userID, kind, -amount, meta, now)
	if err != nil {
		return nil, 0, err
	}

	balance, err := balanceTx(ctx, txn, userID)
	if err != nil {
		return nil, 0, err
	}

	if err := txn.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit debit: %w", err)
	}
	return tx, balance, nil
}

// SettleRound credits the payout (when nonzero), books the settlement
// transaction and appends the round record, all in one commit. The
// round's ID and CreatedAt are filled in on success.
func (s *Store) SettleRound(ctx context.Context, userID int64, kind models.TransactionKind, txMeta models.Meta, round *models.GameRound, now time.Time) (*models.Transaction, int64, error) {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin settle: %w", err)
	}
	defer func() { _ = txn.Rollback() }()

	if round.Payout != 0 {
		res, err := txn.ExecContext(ctx,
			`UPDATE users SET balance = balance + ? WHERE id = ?`, round.Payout, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("credit payout: %w", err)
		}
		if rows, err := res.RowsAffected(); err != nil {
			return nil, 0, fmt.Errorf("credit payout rows: %w", err)
		} else if rows == 0 {
			return nil, 0, models.ErrAccountNotFound
		}
	} else if _, err := getUserTx(ctx, txn, userID); err != nil {
		return nil, 0, err
	}

	tx, err := insertTransaction(ctx, txn, userID, kind, round.Payout, txMeta, now)
	if err != nil {
		return nil, 0, err
	}

	stateJSON, err := marshalMeta(round.State)
	if err != nil {
		return nil, 0, err
	}
	res, err := txn.ExecContext(ctx,
		`INSERT INTO game_rounds (user_id, game, bet, payout, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, round.Game, round.Bet, round.Payout, stateJSON, timeToUnixMillis(now))
	if err != nil {
		return nil, 0, fmt.Errorf("insert round: %w", err)
	}
	roundID, err := res.LastInsertId()
	if err != nil {
		return nil, 0, fmt.Errorf("round id: %w", err)
	}
	round.ID = roundID
	round.UserID = userID
	round.CreatedAt = now.UTC()

	balance, err := balanceTx(ctx, txn, userID)
	if err != nil {
		return nil, 0, err
	}

	if err := txn.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit settle: %w", err)
	}
	return tx, balance, nil
}

// ClaimDailyBonus advances the claim stamp only when the previous stamp
// is at or before cutoff, then credits the bonus and books it, all in
// one commit. A stamp inside the window fails with ErrBonusNotReady.
func (s *Store) ClaimDailyBonus(ctx context.Context, userID int64, amount int64, cutoff, now time.Time) (*models.Transaction, int64, error) {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin bonus claim: %w", err)
	}
	defer func() { _ = txn.Rollback() }()

	if _, err := getUserTx(ctx, txn, userID); err != nil {
		return nil, 0, err
	}

	res, err := txn.ExecContext(ctx,
		`INSERT INTO daily_bonus (user_id, last_claimed_at) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET last_claimed_at = excluded.last_claimed_at
		 WHERE daily_bonus.last_claimed_at <= ?`,
		userID, timeToUnixMillis(now), timeToUnixMillis(cutoff))
	if err != nil {
		return nil, 0, fmt.Errorf("advance bonus stamp: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return nil, 0, fmt.Errorf("bonus stamp rows: %w", err)
	} else if rows == 0 {
		return nil, 0, models.ErrBonusNotReady
	}

	if _, err := txn.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE id = ?`, amount, userID); err != nil {
		return nil, 0, fmt.Errorf("credit bonus: %w", err)
	}

	tx, err := insertTransaction(ctx, txn, userID, models.TransactionBonus, amount,
		models.Meta{"reason": "daily"}, now)
	if err != nil {
		return nil, 0, err
	}

	balance, err := balanceTx(ctx, txn, userID)
	if err != nil {
		return nil, 0, err
	}

	if err := txn.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit bonus claim: %w", err)
	}
	return tx, balance, nil
}

// RecentTransactions returns the newest ledger entries first.
func (s *Store) RecentTransactions(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, kind, amount, meta, created_at
		 FROM transactions WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var meta string
		var ms int64
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Kind, &tx.Amount, &meta, &ms); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Meta = unmarshalMeta(meta)
		tx.CreatedAt = unixMillisToTime(ms)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// RecentRounds returns the newest settled rounds first.
func (s *Store) RecentRounds(ctx context.Context, userID int64, limit int) ([]models.GameRound, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, game, bet, payout, state, created_at
		 FROM game_rounds WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var rounds []models.GameRound
	for rows.Next() {
		var r models.GameRound
		var state string
		var ms int64
		if err := rows.Scan(&r.ID, &r.UserID, &r.Game, &r.Bet, &r.Payout, &state, &ms); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.State = unmarshalMeta(state)
		r.CreatedAt = unixMillisToTime(ms)
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

func insertTransaction(ctx context.Context, txn *sql.Tx, userID int64, kind models.TransactionKind, amount int64, meta models.Meta, now time.Time) (*models.Transaction, error) {
	metaJSON, err := marshalMeta(meta)
	if err != nil {
		return nil, err
	}

	res, err := txn.ExecContext(ctx,
		`INSERT INTO transactions (user_id, kind, amount, meta, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, string(kind), amount, metaJSON, timeToUnixMillis(now))
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("transaction id: %w", err)
	}

	return &models.Transaction{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Meta:      meta,
		CreatedAt: now.UTC(),
	}, nil
}

func balanceTx(ctx context.Context, txn *sql.Tx, userID int64) (int64, error) {
	var balance int64
	err := txn.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE id = ?`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return balance, nil
}

func getUserTx(ctx context.Context, txn *sql.Tx, userID int64) (*models.User, error) {
	row := txn.QueryRowContext(ctx,
		`SELECT id, username, balance, created_at FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var ms int64
	err := row.Scan(&user.ID, &user.Username, &user.Balance, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = unixMillisToTime(ms)
	return &user, nil
}
