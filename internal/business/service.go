package business

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"guildmint/internal/accrual"
	"guildmint/internal/ledger"
	"guildmint/internal/perks"
)

type Service struct {
	store *ledger.Store
	log   *slog.Logger
}

func NewService(store *ledger.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger}
}

func (s *Service) Buy(ctx context.Context, userID, kindName, idemKey string) (int64, error) {
	kind, err := KindByName(kindName)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "business:buy"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		var level int
		err := tx.QueryRow(ctx, `SELECT level FROM econ.levels WHERE user_id = $1`, userID).Scan(&level)
		if err == pgx.ErrNoRows {
			level = 1
		} else if err != nil {
			return err
		}
		if level < kind.MinLevel {
			return fmt.Errorf("%w: need level %d", ErrLevelGated, kind.MinLevel)
		}
		var count int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(1) FROM econ.businesses WHERE owner_user_id = $1
		`, userID).Scan(&count); err != nil {
			return err
		}
		if count >= MaxPerOwner {
			return ErrTooMany
		}
		if err := ledger.Debit(ctx, tx, userID, kind.Cost, "business:buy:"+kind.Name); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO econ.businesses (owner_user_id, kind, invested)
			VALUES ($1, $2, $3)
			RETURNING id
		`, userID, kind.Name, kind.Cost).Scan(&id)
	})
	return id, err
}

// collectTx pays out a business's accrued revenue inside the caller's
// transaction. Revenue per hour is the kind's base rate with employee, level
// and prestige/booster bonuses applied; accrual is clamped to the collect
// window. Both the player collect and the worker sweep come through here.
func collectTx(ctx context.Context, tx pgx.Tx, userID string, businessID int64) (int64, error) {
	var kindName string
	var level, employees int
	var lastCollected time.Time
	err := tx.QueryRow(ctx, `
		SELECT kind, level, employees, last_collected_at
		FROM econ.businesses
		WHERE id = $1 AND owner_user_id = $2
		FOR UPDATE
	`, businessID, userID).Scan(&kindName, &level, &employees, &lastCollected)
	if err == pgx.ErrNoRows {
		return 0, ErrNotOwner
	}
	if err != nil {
		return 0, err
	}
	kind, err := KindByName(kindName)
	if err != nil {
		return 0, err
	}
	mult, err := perks.EarningsMultiplier(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	perHour := accrual.WithMultiplier(IncomePerHour(kind.IncomePerHour, employees, level), mult)
	now := time.Now()
	amount := accrual.Accrue(lastCollected, now, perHour, CollectMinHours, CollectCapHours)
	if amount <= 0 {
		return 0, ErrNothingToCollect
	}
	if _, err := tx.Exec(ctx, `
		UPDATE econ.businesses SET last_collected_at = $1 WHERE id = $2
	`, now, businessID); err != nil {
		return 0, err
	}
	return amount, ledger.Credit(ctx, tx, userID, amount, "business:collect", true)
}

func (s *Service) Collect(ctx context.Context, userID string, businessID int64, idemKey string) (CollectResult, error) {
	out := CollectResult{BusinessID: businessID}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "business:collect"); err != nil {
			return err
		}
		amount, err := collectTx(ctx, tx, userID, businessID)
		out.Amount = amount
		return err
	})
	return out, err
}

// SweepIncome collects revenue for every business the owner has left sitting
// past the sweep window, so the 24h accrual cap never destroys income. Each
// business settles in its own transaction, log-and-continue.
func (s *Service) SweepIncome(ctx context.Context, olderThan time.Duration) (int, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT id, owner_user_id
		FROM econ.businesses
		WHERE last_collected_at <= now() - ($1 * interval '1 second')
		ORDER BY id
	`, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	type target struct {
		id    int64
		owner string
	}
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.id, &t.owner); err != nil {
			rows.Close()
			return 0, err
		}
		targets = append(targets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	swept := 0
	for _, t := range targets {
		err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			_, err := collectTx(ctx, tx, t.owner, t.id)
			return err
		})
		if errors.Is(err, ErrNothingToCollect) {
			continue
		}
		if err != nil {
			s.log.Error("income sweep failed", "business_id", t.id, "owner", t.owner, "err", err)
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *Service) Upgrade(ctx context.Context, userID string, businessID int64, idemKey string) (int, error) {
	var newLevel int
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "business:upgrade"); err != nil {
			return err
		}
		var kindName string
		var level int
		err := tx.QueryRow(ctx, `
			SELECT kind, level
			FROM econ.businesses
			WHERE id = $1 AND owner_user_id = $2
			FOR UPDATE
		`, businessID, userID).Scan(&kindName, &level)
		if err == pgx.ErrNoRows {
			return ErrNotOwner
		}
		if err != nil {
			return err
		}
		if level >= MaxLevel {
			return ErrMaxLevel
		}
		kind, err := KindByName(kindName)
		if err != nil {
			return err
		}
		newLevel = level + 1
		cost := UpgradeCost(kind.Cost, newLevel)
		if err := ledger.Debit(ctx, tx, userID, cost, "business:upgrade"); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE econ.businesses
			SET level = $1, invested = invested + $2
			WHERE id = $3
		`, newLevel, cost, businessID)
		return err
	})
	return newLevel, err
}

func (s *Service) Hire(ctx context.Context, userID string, businessID int64, idemKey string) (int, error) {
	var headcount int
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "business:hire"); err != nil {
			return err
		}
		var employees int
		err := tx.QueryRow(ctx, `
			SELECT employees
			FROM econ.businesses
			WHERE id = $1 AND owner_user_id = $2
			FOR UPDATE
		`, businessID, userID).Scan(&employees)
		if err == pgx.ErrNoRows {
			return ErrNotOwner
		}
		if err != nil {
			return err
		}
		if employees >= MaxEmployees {
			return ErrMaxEmployees
		}
		cost := HireCost(employees)
		if err := ledger.Debit(ctx, tx, userID, cost, "business:hire"); err != nil {
			return err
		}
		headcount = employees + 1
		_, err = tx.Exec(ctx, `
			UPDATE econ.businesses
			SET employees = $1, invested = invested + $2
			WHERE id = $3
		`, headcount, cost, businessID)
		return err
	})
	return headcount, err
}

func (s *Service) Fire(ctx context.Context, userID string, businessID int64) (int, error) {
	var headcount int
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var employees int
		err := tx.QueryRow(ctx, `
			SELECT employees
			FROM econ.businesses
			WHERE id = $1 AND owner_user_id = $2
			FOR UPDATE
		`, businessID, userID).Scan(&employees)
		if err == pgx.ErrNoRows {
			return ErrNotOwner
		}
		if err != nil {
			return err
		}
		if employees <= 0 {
			return ErrNoEmployees
		}
		headcount = employees - 1
		_, err = tx.Exec(ctx, `
			UPDATE econ.businesses SET employees = $1 WHERE id = $2
		`, headcount, businessID)
		return err
	})
	return headcount, err
}

func (s *Service) Sell(ctx context.Context, userID string, businessID int64, idemKey string) (int64, error) {
	var refund int64
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "business:sell"); err != nil {
			return err
		}
		var invested int64
		err := tx.QueryRow(ctx, `
			SELECT invested
			FROM econ.businesses
			WHERE id = $1 AND owner_user_id = $2
			FOR UPDATE
		`, businessID, userID).Scan(&invested)
		if err == pgx.ErrNoRows {
			return ErrNotOwner
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM econ.businesses WHERE id = $1`, businessID); err != nil {
			return err
		}
		refund = SellRefund(invested)
		if refund > 0 {
			return ledger.Credit(ctx, tx, userID, refund, "business:sell", false)
		}
		return nil
	})
	return refund, err
}

func (s *Service) Portfolio(ctx context.Context, userID string) ([]Business, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT id, owner_user_id, kind, level, employees, invested, last_collected_at, created_at
		FROM econ.businesses
		WHERE owner_user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Business
	for rows.Next() {
		var b Business
		if err := rows.Scan(&b.ID, &b.OwnerUserID, &b.Kind, &b.Level, &b.Employees, &b.Invested, &b.LastCollectedAt, &b.CreatedAt); err != nil {
			return nil, err
		}
		if kind, err := KindByName(b.Kind); err == nil {
			b.IncomePerHour = IncomePerHour(kind.IncomePerHour, b.Employees, b.Level)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Service) TotalBusinesses(ctx context.Context) (int64, error) {
	var count int64
	err := s.store.Pool().QueryRow(ctx, `SELECT COUNT(1) FROM econ.businesses`).Scan(&count)
	return count, err
}
