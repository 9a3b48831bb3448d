package levels

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"guildmint/internal/ledger"
	"guildmint/internal/perks"
	"guildmint/internal/rng"
)

// Service tracks activity XP and pays level and milestone rewards into the
// wallet as they are crossed.
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

// RecordMessage awards message XP, rate-limited to one award per cooldown.
func (s *Service) RecordMessage(ctx context.Context, userID string) (AwardResult, error) {
	var out AwardResult
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		row, err := lockLevelRow(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE econ.levels SET messages = messages + 1 WHERE user_id = $1
		`, userID); err != nil {
			return err
		}
		if row.lastMessageAt != nil && now.Sub(*row.lastMessageAt) < MessageCooldown {
			out = AwardResult{Level: row.level}
			return nil
		}
		gained := s.rand.Between(MessageXPMin, MessageXPMax)
		if _, err := tx.Exec(ctx, `
			UPDATE econ.levels SET last_message_at = $1 WHERE user_id = $2
		`, now, userID); err != nil {
			return err
		}
		res, err := s.award(ctx, tx, userID, row, gained)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// RecordReaction awards reaction XP, capped per rolling hour.
func (s *Service) RecordReaction(ctx context.Context, userID string) (AwardResult, error) {
	var out AwardResult
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		row, err := lockLevelRow(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := time.Now()
		awards, windowStart := row.reactionAwards, row.reactionWindowStart
		if windowStart == nil || now.Sub(*windowStart) >= time.Hour {
			awards, windowStart = 0, &now
		}
		if awards >= ReactionHourlyCap {
			out = AwardResult{Level: row.level}
			return nil
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.levels SET reaction_awards = $1, reaction_window_start = $2 WHERE user_id = $3
		`, awards+1, windowStart, userID); err != nil {
			return err
		}
		res, err := s.award(ctx, tx, userID, row, ReactionXP)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// RecordVoice awards XP for completed five-minute voice blocks.
func (s *Service) RecordVoice(ctx context.Context, userID string, duration time.Duration) (AwardResult, error) {
	var out AwardResult
	blocks := int64(duration / VoiceBlock)
	if blocks <= 0 {
		return out, nil
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		row, err := lockLevelRow(ctx, tx, userID)
		if err != nil {
			return err
		}
		res, err := s.award(ctx, tx, userID, row, blocks*VoiceXPPerBlock)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// ClaimDaily awards the once-a-day XP bonus.
func (s *Service) ClaimDaily(ctx context.Context, userID, idemKey string) (AwardResult, error) {
	var out AwardResult
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "levels:daily"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		row, err := lockLevelRow(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := time.Now()
		if row.lastDailyAt != nil && now.Sub(*row.lastDailyAt) < DailyCooldown {
			return ErrDailyClaimed
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.levels SET last_daily_at = $1 WHERE user_id = $2
		`, now, userID); err != nil {
			return err
		}
		res, err := s.award(ctx, tx, userID, row, s.rand.Between(DailyXPMin, DailyXPMax))
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// SetServerBooster toggles the 1.2x XP flag for a user.
func (s *Service) SetServerBooster(ctx context.Context, userID string, boosting bool) error {
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := lockLevelRow(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE econ.levels SET server_booster = $1 WHERE user_id = $2
		`, boosting, userID)
		return err
	})
}

func (s *Service) ProgressFor(ctx context.Context, userID string) (Progress, error) {
	p := Progress{UserID: userID, Level: 1, NextLevelXP: XPForLevel(1)}
	err := s.store.Pool().QueryRow(ctx, `
		SELECT level, xp, messages, server_booster FROM econ.levels WHERE user_id = $1
	`, userID).Scan(&p.Level, &p.XP, &p.Messages, &p.ServerBooster)
	if err == pgx.ErrNoRows {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	p.NextLevelXP = XPForLevel(p.Level)
	return p, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]RankedRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.store.Pool().Query(ctx, `
		SELECT user_id, level, xp,
		       RANK() OVER (ORDER BY level DESC, xp DESC) AS rank
		FROM econ.levels
		ORDER BY level DESC, xp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RankedRow
	for rows.Next() {
		var r RankedRow
		if err := rows.Scan(&r.UserID, &r.Level, &r.XP, &r.Rank); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// award applies scaled XP, advances levels and pays any crossed rewards.
func (s *Service) award(ctx context.Context, tx pgx.Tx, userID string, row levelRow, baseXP int64) (AwardResult, error) {
	var out AwardResult
	mult, err := perks.XPMultiplier(ctx, tx, userID)
	if err != nil {
		return out, err
	}
	if row.serverBooster {
		mult *= ServerBoosterRate
	}
	gained := decimal.NewFromInt(baseXP).Mul(decimal.NewFromFloat(mult)).Floor().IntPart()

	level, xp, reached := applyXP(row.level, row.xp, gained)
	if _, err := tx.Exec(ctx, `
		UPDATE econ.levels SET level = $1, xp = $2 WHERE user_id = $3
	`, level, xp, userID); err != nil {
		return out, err
	}

	var coins int64
	for _, lvl := range reached {
		if reward := LevelReward(lvl); reward > 0 {
			if err := ledger.Credit(ctx, tx, userID, reward, "levels:reward", true); err != nil {
				return out, err
			}
			coins += reward
		}
		bonus, ok := MilestoneRewards[lvl]
		if !ok {
			continue
		}
		claimed, err := tx.Exec(ctx, `
			INSERT INTO econ.milestones_claimed (user_id, level) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, userID, lvl)
		if err != nil {
			return out, err
		}
		if claimed.RowsAffected() == 0 {
			continue
		}
		if err := ledger.Credit(ctx, tx, userID, bonus, "levels:milestone", true); err != nil {
			return out, err
		}
		coins += bonus
	}
	return AwardResult{
		XPGained:    gained,
		Level:       level,
		LeveledUp:   len(reached) > 0,
		CoinsEarned: coins,
		NewLevels:   reached,
	}, nil
}

type levelRow struct {
	level               int
	xp                  int64
	lastMessageAt       *time.Time
	reactionAwards      int
	reactionWindowStart *time.Time
	lastDailyAt         *time.Time
	serverBooster       bool
}

func lockLevelRow(ctx context.Context, tx pgx.Tx, userID string) (levelRow, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO econ.levels (user_id) VALUES ($1) ON CONFLICT DO NOTHING
	`, userID); err != nil {
		return levelRow{}, err
	}
	var row levelRow
	err := tx.QueryRow(ctx, `
		SELECT level, xp, last_message_at, reaction_awards, reaction_window_start, last_daily_at, server_booster
		FROM econ.levels
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&row.level, &row.xp, &row.lastMessageAt, &row.reactionAwards,
		&row.reactionWindowStart, &row.lastDailyAt, &row.serverBooster)
	return row, err
}
