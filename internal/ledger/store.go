package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store owns the account table and the append-only ledger. It is the single
// transactional boundary: services mutate money only inside RunTx.
type Store struct {
	db              *pgxpool.Pool
	log             *slog.Logger
	startingBalance int64
}

func NewStore(db *pgxpool.Pool, logger *slog.Logger, startingBalance int64) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger, startingBalance: startingBalance}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.db
}

// RunTx executes fn inside a serializable transaction, retrying on
// serialization failures with exponential backoff.
func (s *Store) RunTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(ctx, tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

// EnsureAccount creates the account on first touch with the starting balance.
func (s *Store) EnsureAccount(ctx context.Context, tx pgx.Tx, userID string) error {
	cmd, err := tx.Exec(ctx, `
		INSERT INTO econ.accounts (user_id, balance, total_earned)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, s.startingBalance)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 && s.startingBalance > 0 {
		return Append(ctx, tx, userID, AccountWallet, "grant:starting", s.startingBalance)
	}
	return nil
}

// LockBalance reads the wallet balance under FOR UPDATE.
func LockBalance(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `
		SELECT balance
		FROM econ.accounts
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// Credit adds to the wallet. earned marks income that counts toward the
// lifetime total (rewards, interest, winnings) as opposed to escrow refunds.
func Credit(ctx context.Context, tx pgx.Tx, userID string, amount int64, action string, earned bool) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be > 0")
	}
	earnedDelta := int64(0)
	if earned {
		earnedDelta = amount
	}
	cmd, err := tx.Exec(ctx, `
		UPDATE econ.accounts
		SET balance = balance + $1, total_earned = total_earned + $2, updated_at = now()
		WHERE user_id = $3
	`, amount, earnedDelta, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return Append(ctx, tx, userID, AccountWallet, action, amount)
}

// Debit removes from the wallet, rejecting any move below zero.
func Debit(ctx context.Context, tx pgx.Tx, userID string, amount int64, action string) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be > 0")
	}
	balance, err := LockBalance(ctx, tx, userID)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, amount)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE econ.accounts
		SET balance = balance - $1, updated_at = now()
		WHERE user_id = $2
	`, amount, userID); err != nil {
		return err
	}
	return Append(ctx, tx, userID, AccountWallet, action, -amount)
}

// Transfer moves coins between two wallets atomically. Rows are locked in
// user-id order so concurrent transfers cannot deadlock.
func Transfer(ctx context.Context, tx pgx.Tx, from, to string, amount int64, action string) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be > 0")
	}
	if from == to {
		return fmt.Errorf("cannot transfer to self")
	}
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	if _, err := LockBalance(ctx, tx, first); err != nil {
		return err
	}
	if _, err := LockBalance(ctx, tx, second); err != nil {
		return err
	}

	var fromBalance int64
	if err := tx.QueryRow(ctx, `SELECT balance FROM econ.accounts WHERE user_id = $1`, from).Scan(&fromBalance); err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, fromBalance, amount)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE econ.accounts SET balance = balance - $1, updated_at = now() WHERE user_id = $2
	`, amount, from); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE econ.accounts SET balance = balance + $1, updated_at = now() WHERE user_id = $2
	`, amount, to); err != nil {
		return err
	}

	txID := uuid.NewString()
	meta, _ := json.Marshal(map[string]any{"action": action, "from": from, "to": to})
	_, err := tx.Exec(ctx, `
		INSERT INTO econ.ledger_entries (tx_group_id, user_id, account, action, delta, metadata)
		VALUES
		($1, $2, 'wallet', $4, $5, $6::jsonb),
		($1, $3, 'wallet', $4, $7, $6::jsonb)
	`, txID, from, to, action, -amount, string(meta), amount)
	return err
}

// Append writes a ledger pair: the named account row plus a balancing sink
// row under one tx group.
func Append(ctx context.Context, tx pgx.Tx, userID, account, action string, delta int64) error {
	txID := uuid.NewString()
	meta, _ := json.Marshal(map[string]any{"action": action})
	_, err := tx.Exec(ctx, `
		INSERT INTO econ.ledger_entries (tx_group_id, user_id, account, action, delta, metadata)
		VALUES
		($1, $2, $3, $4, $5, $6::jsonb),
		($1, $2, 'sink', $4, $7, $6::jsonb)
	`, txID, userID, account, action, delta, string(meta), -delta)
	return err
}

// ClaimIdempotency claims a request key, first writer wins.
func ClaimIdempotency(ctx context.Context, tx pgx.Tx, userID, key, action string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("idempotency key is required")
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO econ.idempotency_keys (user_id, key, action, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, action)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}

// RecordGame bumps the play counters on the account.
func RecordGame(ctx context.Context, tx pgx.Tx, userID string, won bool) error {
	wonDelta := 0
	if won {
		wonDelta = 1
	}
	_, err := tx.Exec(ctx, `
		UPDATE econ.accounts
		SET games_played = games_played + 1, games_won = games_won + $1, updated_at = now()
		WHERE user_id = $2
	`, wonDelta, userID)
	return err
}

// Grant credits coins out of thin air. Admin use only.
func (s *Store) Grant(ctx context.Context, userID string, amount int64, reason string) error {
	return s.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		return Credit(ctx, tx, userID, amount, "grant:"+reason, false)
	})
}

func (s *Store) GetAccount(ctx context.Context, userID string) (Account, error) {
	var a Account
	err := s.db.QueryRow(ctx, `
		SELECT user_id, balance, total_earned, games_played, games_won, created_at, updated_at
		FROM econ.accounts
		WHERE user_id = $1
	`, userID).Scan(&a.UserID, &a.Balance, &a.TotalEarned, &a.GamesPlayed, &a.GamesWon, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return a, ErrAccountNotFound
	}
	return a, err
}

func (s *Store) TopBalances(ctx context.Context, limit int) ([]BalanceRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, balance
		FROM econ.accounts
		ORDER BY balance DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceRow
	var rank int64 = 1
	for rows.Next() {
		var r BalanceRow
		if err := rows.Scan(&r.UserID, &r.Balance); err != nil {
			return nil, err
		}
		r.Rank = rank
		rank++
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RecentEntries(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tx_group_id, user_id, account, action, delta, created_at
		FROM econ.ledger_entries
		WHERE account IN ('wallet', 'deposit')
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TxGroupID, &e.UserID, &e.Account, &e.Action, &e.Delta, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) TotalMoney(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE((SELECT SUM(balance) FROM econ.accounts), 0)
		     + COALESCE((SELECT SUM(balance) FROM econ.deposits), 0)
	`).Scan(&total)
	return total, err
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
