package bank

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"guildmint/internal/accrual"
	"guildmint/internal/ledger"
)

type Service struct {
	store *ledger.Store
	log   *slog.Logger
	apr   float64
}

func NewService(store *ledger.Store, logger *slog.Logger, apr float64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger, apr: apr}
}

// settleDeposit locks the deposit row and credits any interest accrued since
// the span anchor. Interest floors once across the whole elapsed span, so a
// small principal still collects its sub-coin-per-day share eventually.
func (s *Service) settleDeposit(ctx context.Context, tx pgx.Tx, userID string) (balance, owed int64, found bool, err error) {
	var paid int64
	var since time.Time
	err = tx.QueryRow(ctx, `
		SELECT balance, interest_paid, interest_since
		FROM econ.deposits
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&balance, &paid, &since)
	if err == pgx.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	owed = accrual.InterestOwed(balance-paid, s.apr, since, time.Now(), paid)
	if owed <= 0 {
		return balance, 0, true, nil
	}
	if _, err := tx.Exec(ctx, `
		UPDATE econ.deposits
		SET balance = balance + $1, interest_paid = interest_paid + $1
		WHERE user_id = $2
	`, owed, userID); err != nil {
		return 0, 0, false, err
	}
	if err := ledger.Append(ctx, tx, userID, ledger.AccountDeposit, "bank:interest", owed); err != nil {
		return 0, 0, false, err
	}
	return balance + owed, owed, true, nil
}

func (s *Service) Deposit(ctx context.Context, userID string, amount int64, idemKey string) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be > 0")
	}
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "bank:deposit"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		if err := ledger.Debit(ctx, tx, userID, amount, "bank:deposit"); err != nil {
			return err
		}
		balance, _, found, err := s.settleDeposit(ctx, tx, userID)
		if err != nil {
			return err
		}
		// The principal changed, so the accrual span restarts here.
		if found {
			if _, err := tx.Exec(ctx, `
				UPDATE econ.deposits
				SET balance = $1, interest_paid = 0, interest_since = now()
				WHERE user_id = $2
			`, balance+amount, userID); err != nil {
				return err
			}
		} else if _, err := tx.Exec(ctx, `
			INSERT INTO econ.deposits (user_id, balance) VALUES ($1, $2)
		`, userID, amount); err != nil {
			return err
		}
		return ledger.Append(ctx, tx, userID, ledger.AccountDeposit, "bank:deposit", amount)
	})
}

// Withdraw moves coins from the deposit back to the wallet. An amount of zero
// withdraws everything, accrued interest included.
func (s *Service) Withdraw(ctx context.Context, userID string, amount int64, idemKey string) error {
	if amount < 0 {
		return fmt.Errorf("withdraw amount must be >= 0")
	}
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "bank:withdraw"); err != nil {
			return err
		}
		balance, _, found, err := s.settleDeposit(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !found || balance == 0 {
			return ErrInsufficientDeposit
		}
		if amount == 0 {
			amount = balance
		}
		if balance < amount {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientDeposit, balance, amount)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.deposits
			SET balance = $1, interest_paid = 0, interest_since = now()
			WHERE user_id = $2
		`, balance-amount, userID); err != nil {
			return err
		}
		if err := ledger.Append(ctx, tx, userID, ledger.AccountDeposit, "bank:withdraw", -amount); err != nil {
			return err
		}
		return ledger.Credit(ctx, tx, userID, amount, "bank:withdraw", false)
	})
}

func (s *Service) TakeLoan(ctx context.Context, userID string, amount int64, idemKey string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("loan amount must be > 0")
	}
	var owed int64
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "bank:loan"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		var open bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM econ.loans WHERE user_id = $1)
		`, userID).Scan(&open); err != nil {
			return err
		}
		if open {
			return ErrLoanOutstanding
		}
		balance, err := ledger.LockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if limit := MaxLoan(balance); amount > limit {
			return fmt.Errorf("%w: max %d", ErrLoanTooLarge, limit)
		}
		owed = LoanOwed(amount)
		dueAt := time.Now().Add(LoanTermDays * 24 * time.Hour)
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.loans (user_id, principal, owed, due_at)
			VALUES ($1, $2, $3, $4)
		`, userID, amount, owed, dueAt); err != nil {
			return err
		}
		return ledger.Credit(ctx, tx, userID, amount, "bank:loan", false)
	})
	return owed, err
}

func (s *Service) RepayLoan(ctx context.Context, userID string, amount int64, idemKey string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("repay amount must be > 0")
	}
	var remaining int64
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "bank:repay"); err != nil {
			return err
		}
		var owed int64
		err := tx.QueryRow(ctx, `
			SELECT owed FROM econ.loans WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&owed)
		if err == pgx.ErrNoRows {
			return ErrNoLoan
		}
		if err != nil {
			return err
		}
		if amount > owed {
			amount = owed
		}
		if err := ledger.Debit(ctx, tx, userID, amount, "bank:repay"); err != nil {
			return err
		}
		remaining = owed - amount
		if remaining == 0 {
			_, err = tx.Exec(ctx, `DELETE FROM econ.loans WHERE user_id = $1`, userID)
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE econ.loans SET owed = $1 WHERE user_id = $2
		`, remaining, userID)
		return err
	})
	return remaining, err
}

func (s *Service) Statement(ctx context.Context, userID string) (Statement, error) {
	out := Statement{UserID: userID}
	var interestPaid int64
	var interestSince *time.Time
	err := s.store.Pool().QueryRow(ctx, `
		SELECT a.balance,
		       COALESCE(d.balance, 0),
		       COALESCE(d.interest_paid, 0),
		       d.interest_since,
		       COALESCE(l.owed, 0),
		       l.due_at,
		       COALESCE(l.overdue, false)
		FROM econ.accounts a
		LEFT JOIN econ.deposits d ON d.user_id = a.user_id
		LEFT JOIN econ.loans l ON l.user_id = a.user_id
		WHERE a.user_id = $1
	`, userID).Scan(&out.WalletBalance, &out.DepositBalance, &interestPaid, &interestSince,
		&out.LoanOwed, &out.LoanDueAt, &out.LoanOverdue)
	if err == pgx.ErrNoRows {
		return out, ledger.ErrAccountNotFound
	}
	if err != nil {
		return out, err
	}
	// Show interest earned but not yet settled by the sweep.
	if interestSince != nil {
		out.DepositBalance += accrual.InterestOwed(
			out.DepositBalance-interestPaid, s.apr, *interestSince, time.Now(), interestPaid)
	}
	return out, nil
}

// AccrueInterest settles interest on every deposit with at least one whole
// day accrued. Run from the worker; each account settles in its own
// transaction so one failure cannot poison the sweep. Re-running is harmless:
// a settled span owes nothing until another day passes.
func (s *Service) AccrueInterest(ctx context.Context) (int, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT user_id
		FROM econ.deposits
		WHERE balance - interest_paid > 0 AND interest_since <= now() - interval '24 hours'
	`)
	if err != nil {
		return 0, err
	}
	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		users = append(users, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	paid := 0
	for _, userID := range users {
		var owed int64
		err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			_, o, _, err := s.settleDeposit(ctx, tx, userID)
			owed = o
			return err
		})
		if err != nil {
			s.log.Error("interest accrual failed", "user_id", userID, "err", err)
			continue
		}
		if owed > 0 {
			paid++
		}
	}
	return paid, nil
}

// SweepOverdue flags loans past their due date. Flagged borrowers cannot
// take a new loan until the old one clears.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	cmd, err := s.store.Pool().Exec(ctx, `
		UPDATE econ.loans SET overdue = true WHERE due_at < now() AND NOT overdue
	`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
