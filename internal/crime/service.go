package crime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"guildmint/internal/accrual"
	"guildmint/internal/ledger"
	"guildmint/internal/perks"
	"guildmint/internal/rng"
)

type Service struct {
	store *ledger.Store
	log   *slog.Logger
	rand  *rng.Rand
}

func NewService(store *ledger.Store, logger *slog.Logger, rand *rng.Rand) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger, rand: rand}
}

// EnsureNotJailed rejects actions while a jail term is running. Other
// services (games, duels, trades) call this inside their transactions.
func EnsureNotJailed(ctx context.Context, tx pgx.Tx, userID string) error {
	var releasedAt time.Time
	err := tx.QueryRow(ctx, `
		SELECT released_at FROM econ.jail_terms WHERE user_id = $1
	`, userID).Scan(&releasedAt)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if time.Now().Before(releasedAt) {
		return fmt.Errorf("%w until %s", ErrJailed, releasedAt.UTC().Format(time.RFC3339))
	}
	// Term elapsed but not yet swept.
	_, err = tx.Exec(ctx, `DELETE FROM econ.jail_terms WHERE user_id = $1`, userID)
	return err
}

func (s *Service) Rob(ctx context.Context, robber, victim, idemKey string) (RobResult, error) {
	var out RobResult
	if robber == victim {
		return out, ErrSelfTarget
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, robber, idemKey, "crime:rob"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, robber); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, victim); err != nil {
			return err
		}
		if err := EnsureNotJailed(ctx, tx, robber); err != nil {
			return err
		}

		var nextRobAt time.Time
		err := tx.QueryRow(ctx, `
			SELECT next_rob_at FROM econ.rob_cooldowns WHERE user_id = $1 FOR UPDATE
		`, robber).Scan(&nextRobAt)
		if err != nil && err != pgx.ErrNoRows {
			return err
		}
		if err == nil && time.Now().Before(nextRobAt) {
			return fmt.Errorf("%w until %s", ErrRobCooldown, nextRobAt.UTC().Format(time.RFC3339))
		}

		victimBalance, err := ledger.LockBalance(ctx, tx, victim)
		if err != nil {
			return err
		}
		if victimBalance < RobVictimFloor {
			return ErrVictimTooPoor
		}

		luck, err := perks.LuckBonus(ctx, tx, robber)
		if err != nil {
			return err
		}
		if s.rand.Float64() < RobSuccessChance+luck {
			pct := s.rand.Between(RobMinCutPct, RobMaxCutPct)
			out.Success = true
			out.Amount = victimBalance * pct / 100
			if err := ledger.Transfer(ctx, tx, victim, robber, out.Amount, "crime:rob"); err != nil {
				return err
			}
		} else {
			robberBalance, err := ledger.LockBalance(ctx, tx, robber)
			if err != nil {
				return err
			}
			out.Fine = Fine(robberBalance, RobFinePct)
			if out.Fine > 0 {
				if err := ledger.Debit(ctx, tx, robber, out.Fine, "crime:fine"); err != nil {
					return err
				}
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO econ.rob_cooldowns (user_id, next_rob_at)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET next_rob_at = $2
		`, robber, time.Now().Add(RobCooldown))
		return err
	})
	return out, err
}

func (s *Service) Commit(ctx context.Context, userID, tierName, idemKey string) (CrimeResult, error) {
	out := CrimeResult{Tier: tierName}
	tier, err := TierByName(tierName)
	if err != nil {
		return out, err
	}
	err = s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "crime:"+tier.Name); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		if err := EnsureNotJailed(ctx, tx, userID); err != nil {
			return err
		}
		luck, err := perks.LuckBonus(ctx, tx, userID)
		if err != nil {
			return err
		}
		if s.rand.Float64() < tier.Success+luck {
			mult, err := perks.EarningsMultiplier(ctx, tx, userID)
			if err != nil {
				return err
			}
			base := s.rand.Between(tier.MinReward, tier.MaxReward)
			out.Success = true
			out.Reward = accrual.WithMultiplier(base, mult)
			return ledger.Credit(ctx, tx, userID, out.Reward, "crime:"+tier.Name, true)
		}
		out.JailHours = int(tier.JailTerm.Hours())
		return jailTx(ctx, tx, userID, tier.Name, tier.JailTerm)
	})
	return out, err
}

func (s *Service) Bail(ctx context.Context, userID, idemKey string) (int64, error) {
	var cost int64
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "crime:bail"); err != nil {
			return err
		}
		var releasedAt time.Time
		err := tx.QueryRow(ctx, `
			SELECT released_at FROM econ.jail_terms WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&releasedAt)
		if err == pgx.ErrNoRows {
			return ErrNotJailed
		}
		if err != nil {
			return err
		}
		remaining := time.Until(releasedAt)
		if remaining <= 0 {
			_, err = tx.Exec(ctx, `DELETE FROM econ.jail_terms WHERE user_id = $1`, userID)
			return err
		}
		cost = BailCost(remaining)
		if err := ledger.Debit(ctx, tx, userID, cost, "crime:bail"); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM econ.jail_terms WHERE user_id = $1`, userID)
		return err
	})
	return cost, err
}

func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	var out Status
	var releasedAt time.Time
	err := s.store.Pool().QueryRow(ctx, `
		SELECT released_at FROM econ.jail_terms WHERE user_id = $1
	`, userID).Scan(&releasedAt)
	if err != nil && err != pgx.ErrNoRows {
		return out, err
	}
	if err == nil && time.Now().Before(releasedAt) {
		out.Jailed = true
		out.ReleasedAt = &releasedAt
		out.BailCost = BailCost(time.Until(releasedAt))
	}

	var nextRobAt time.Time
	err = s.store.Pool().QueryRow(ctx, `
		SELECT next_rob_at FROM econ.rob_cooldowns WHERE user_id = $1
	`, userID).Scan(&nextRobAt)
	if err != nil && err != pgx.ErrNoRows {
		return out, err
	}
	if err == nil && time.Now().Before(nextRobAt) {
		out.NextRobAt = &nextRobAt
	}
	return out, nil
}

// Release frees a user regardless of remaining term. Admin surface.
func (s *Service) Release(ctx context.Context, userID string) error {
	cmd, err := s.store.Pool().Exec(ctx, `
		DELETE FROM econ.jail_terms WHERE user_id = $1
	`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotJailed
	}
	return nil
}

// SweepJail drops elapsed terms. Run from the worker.
func (s *Service) SweepJail(ctx context.Context) (int64, error) {
	cmd, err := s.store.Pool().Exec(ctx, `
		DELETE FROM econ.jail_terms WHERE released_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func jailTx(ctx context.Context, tx pgx.Tx, userID, reason string, term time.Duration) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO econ.jail_terms (user_id, reason, jailed_at, released_at)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (user_id) DO UPDATE SET reason = $2, jailed_at = now(), released_at = $3
	`, userID, reason, time.Now().Add(term))
	return err
}
