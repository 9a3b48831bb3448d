package perks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"guildmint/internal/ledger"
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

// Prestige resets progression in exchange for a permanent earnings bonus.
func (s *Service) Prestige(ctx context.Context, userID, idemKey string) (int, error) {
	var tier int
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "perks:prestige"); err != nil {
			return err
		}
		var level int
		err := tx.QueryRow(ctx, `
			SELECT level FROM econ.levels WHERE user_id = $1 FOR UPDATE
		`, userID).Scan(&level)
		if err == pgx.ErrNoRows {
			return ErrLevelTooLow
		}
		if err != nil {
			return err
		}
		if level < PrestigeMinLevel {
			return fmt.Errorf("%w: level %d, need %d", ErrLevelTooLow, level, PrestigeMinLevel)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.levels SET level = 1, xp = 0 WHERE user_id = $1
		`, userID); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO econ.prestige (user_id, tier, updated_at)
			VALUES ($1, 1, now())
			ON CONFLICT (user_id) DO UPDATE SET tier = econ.prestige.tier + 1, updated_at = now()
			RETURNING tier
		`, userID).Scan(&tier); err != nil {
			return err
		}
		title := fmt.Sprintf("Prestige %d", tier)
		_, err = tx.Exec(ctx, `
			INSERT INTO econ.titles (user_id, title)
			VALUES ($1, $2)
			ON CONFLICT (user_id, title) DO NOTHING
		`, userID, title)
		return err
	})
	return tier, err
}

func (s *Service) BuyBooster(ctx context.Context, userID, kind string, hours int, idemKey string) (Booster, error) {
	var out Booster
	if !ValidBoosterKind(kind) {
		return out, ErrInvalidBooster
	}
	if hours < BoosterMinHours || hours > BoosterMaxHours {
		return out, fmt.Errorf("booster duration must be between %d and %d hours", BoosterMinHours, BoosterMaxHours)
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "perks:booster"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		active, err := boosterActive(ctx, tx, userID, kind)
		if err != nil {
			return err
		}
		if active {
			return ErrBoosterActive
		}
		if err := ledger.Debit(ctx, tx, userID, BoosterCost(hours), "perks:booster:"+kind); err != nil {
			return err
		}
		expires := time.Now().Add(time.Duration(hours) * time.Hour)
		if _, err := tx.Exec(ctx, `
			INSERT INTO econ.boosters (user_id, kind, expires_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, kind) DO UPDATE SET expires_at = $3, created_at = now()
		`, userID, kind, expires); err != nil {
			return err
		}
		out = Booster{Kind: kind, ExpiresAt: expires}
		return nil
	})
	return out, err
}

func (s *Service) BuyTitle(ctx context.Context, userID, title, idemKey string) error {
	spec, ok := TitleByName(title)
	if !ok {
		return ErrTitleUnknown
	}
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "perks:title"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		var level int
		err := tx.QueryRow(ctx, `SELECT level FROM econ.levels WHERE user_id = $1`, userID).Scan(&level)
		if err != nil && err != pgx.ErrNoRows {
			return err
		}
		if level < spec.MinLevel {
			return fmt.Errorf("%w: need level %d", ErrTitleLevelGated, spec.MinLevel)
		}
		var owned bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM econ.titles WHERE user_id = $1 AND title = $2)
		`, userID, spec.Name).Scan(&owned); err != nil {
			return err
		}
		if owned {
			return ErrTitleOwned
		}
		if err := ledger.Debit(ctx, tx, userID, spec.Cost, "perks:title"); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO econ.titles (user_id, title) VALUES ($1, $2)
		`, userID, spec.Name)
		return err
	})
}

func (s *Service) EquipTitle(ctx context.Context, userID, title string) error {
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var owned bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM econ.titles WHERE user_id = $1 AND title = $2)
		`, userID, title).Scan(&owned); err != nil {
			return err
		}
		if !owned {
			return ErrTitleNotOwned
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.titles SET equipped = false WHERE user_id = $1
		`, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE econ.titles SET equipped = true WHERE user_id = $1 AND title = $2
		`, userID, title)
		return err
	})
}

func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	out := Profile{UserID: userID}
	err := s.store.Pool().QueryRow(ctx, `
		SELECT COALESCE((SELECT tier FROM econ.prestige WHERE user_id = $1), 0)
	`, userID).Scan(&out.Prestige)
	if err != nil {
		return out, err
	}
	out.EarningsBonus = PrestigeMultiplier(out.Prestige) - 1.0

	rows, err := s.store.Pool().Query(ctx, `
		SELECT kind, expires_at
		FROM econ.boosters
		WHERE user_id = $1 AND expires_at > now()
		ORDER BY kind
	`, userID)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var b Booster
		if err := rows.Scan(&b.Kind, &b.ExpiresAt); err != nil {
			return out, err
		}
		out.Boosters = append(out.Boosters, b)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	tRows, err := s.store.Pool().Query(ctx, `
		SELECT title, equipped
		FROM econ.titles
		WHERE user_id = $1
		ORDER BY acquired_at
	`, userID)
	if err != nil {
		return out, err
	}
	defer tRows.Close()
	for tRows.Next() {
		var title string
		var equipped bool
		if err := tRows.Scan(&title, &equipped); err != nil {
			return out, err
		}
		out.Titles = append(out.Titles, title)
		if equipped {
			out.EquippedTitle = title
		}
	}
	return out, tRows.Err()
}

// ExpireBoosters drops elapsed boosters. Run from the worker.
func (s *Service) ExpireBoosters(ctx context.Context) (int64, error) {
	cmd, err := s.store.Pool().Exec(ctx, `
		DELETE FROM econ.boosters WHERE expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// EarningsMultiplier combines the prestige bonus with an active money
// booster. Business collects and crime rewards run through this.
func EarningsMultiplier(ctx context.Context, tx pgx.Tx, userID string) (float64, error) {
	var tier int
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE((SELECT tier FROM econ.prestige WHERE user_id = $1), 0)
	`, userID).Scan(&tier); err != nil {
		return 0, err
	}
	mult := PrestigeMultiplier(tier)
	active, err := boosterActive(ctx, tx, userID, "money")
	if err != nil {
		return 0, err
	}
	if active {
		mult *= BoosterMoneyFactor
	}
	return mult, nil
}

// LuckBonus is the win-probability shift from an active luck booster.
func LuckBonus(ctx context.Context, tx pgx.Tx, userID string) (float64, error) {
	active, err := boosterActive(ctx, tx, userID, "luck")
	if err != nil {
		return 0, err
	}
	if active {
		return BoosterLuckBonus, nil
	}
	return 0, nil
}

// XPMultiplier is the active xp booster factor.
func XPMultiplier(ctx context.Context, tx pgx.Tx, userID string) (float64, error) {
	active, err := boosterActive(ctx, tx, userID, "xp")
	if err != nil {
		return 0, err
	}
	if active {
		return BoosterXPFactor, nil
	}
	return 1.0, nil
}

func boosterActive(ctx context.Context, tx pgx.Tx, userID, kind string) (bool, error) {
	var active bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM econ.boosters
			WHERE user_id = $1 AND kind = $2 AND expires_at > now()
		)
	`, userID, kind).Scan(&active)
	return active, err
}
