package pvp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"guildmint/internal/crime"
	"guildmint/internal/ledger"
	"guildmint/internal/rng"
)

// Service runs coin duels. Both stakes are escrowed; the winner takes the
// whole pot on a d100 roll-off.
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

// Challenge escrows the challenger's stake and opens a pending duel against
// the opponent. The challenge lapses after two minutes.
func (s *Service) Challenge(ctx context.Context, challenger, opponent string, bet int64, idemKey string) (Duel, error) {
	var out Duel
	if bet < DuelMinBet {
		return out, fmt.Errorf("%w: min %d", ErrBetTooSmall, DuelMinBet)
	}
	if challenger == opponent {
		return out, ErrSelfDuel
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, challenger, idemKey, "pvp:challenge"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, challenger); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, opponent); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, challenger); err != nil {
			return err
		}
		var open bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM econ.duels
				WHERE challenger = $1 AND state = 'pending' AND expires_at > now()
			)
		`, challenger).Scan(&open); err != nil {
			return err
		}
		if open {
			return ErrDuelPending
		}
		if err := ledger.Debit(ctx, tx, challenger, bet, "pvp:stake"); err != nil {
			return err
		}

		out = Duel{
			ID:         uuid.NewString(),
			Challenger: challenger,
			Opponent:   opponent,
			Bet:        bet,
			State:      "pending",
			CreatedAt:  time.Now(),
			ExpiresAt:  time.Now().Add(duelTTL),
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO econ.duels (id, challenger, opponent, bet, state, expires_at)
			VALUES ($1, $2, $3, $4, 'pending', $5)
		`, out.ID, challenger, opponent, bet, out.ExpiresAt)
		return err
	})
	return out, err
}

// Accept escrows the opponent's matching stake, rolls for both sides and
// pays the pot to the winner. Ties reroll.
func (s *Service) Accept(ctx context.Context, opponent, duelID, idemKey string) (Duel, error) {
	var out Duel
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, opponent, idemKey, "pvp:accept"); err != nil {
			return err
		}
		duel, err := lockDuel(ctx, tx, duelID)
		if err != nil {
			return err
		}
		if duel.Opponent != opponent {
			return ErrNotYourDuel
		}
		if err := crime.EnsureNotJailed(ctx, tx, opponent); err != nil {
			return err
		}
		if err := ledger.Debit(ctx, tx, opponent, duel.Bet, "pvp:stake"); err != nil {
			return err
		}

		cr, or := s.rand.Intn(duelRollDie)+1, s.rand.Intn(duelRollDie)+1
		for cr == or {
			cr, or = s.rand.Intn(duelRollDie)+1, s.rand.Intn(duelRollDie)+1
		}
		winner, loser := duel.Challenger, duel.Opponent
		if or > cr {
			winner, loser = duel.Opponent, duel.Challenger
		}
		pot := 2 * duel.Bet

		if err := ledger.Credit(ctx, tx, winner, pot, "pvp:pot", true); err != nil {
			return err
		}
		if err := bumpStats(ctx, tx, winner, true, duel.Bet); err != nil {
			return err
		}
		if err := bumpStats(ctx, tx, loser, false, -duel.Bet); err != nil {
			return err
		}

		duel.State = "settled"
		duel.Winner = winner
		duel.ChallengerRoll = cr
		duel.OpponentRoll = or
		if _, err := tx.Exec(ctx, `
			UPDATE econ.duels
			SET state = 'settled', winner = $1, challenger_roll = $2, opponent_roll = $3
			WHERE id = $4
		`, winner, cr, or, duelID); err != nil {
			return err
		}
		out = duel
		return nil
	})
	return out, err
}

// Decline refunds the challenger's escrow.
func (s *Service) Decline(ctx context.Context, opponent, duelID string) error {
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		duel, err := lockDuel(ctx, tx, duelID)
		if err != nil {
			return err
		}
		if duel.Opponent != opponent {
			return ErrNotYourDuel
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.duels SET state = 'declined' WHERE id = $1
		`, duelID); err != nil {
			return err
		}
		return ledger.Credit(ctx, tx, duel.Challenger, duel.Bet, "pvp:refund", false)
	})
}

// Pending lists open challenges addressed to the user.
func (s *Service) Pending(ctx context.Context, userID string) ([]Duel, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT id, challenger, opponent, bet, state, created_at, expires_at
		FROM econ.duels
		WHERE opponent = $1 AND state = 'pending' AND expires_at > now()
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Duel
	for rows.Next() {
		var d Duel
		if err := rows.Scan(&d.ID, &d.Challenger, &d.Opponent, &d.Bet, &d.State, &d.CreatedAt, &d.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Service) StatsFor(ctx context.Context, userID string) (Stats, error) {
	st := Stats{UserID: userID, Rank: RankForWins(0)}
	err := s.store.Pool().QueryRow(ctx, `
		SELECT wins, losses, earnings FROM econ.pvp_stats WHERE user_id = $1
	`, userID).Scan(&st.Wins, &st.Losses, &st.Earnings)
	if err == pgx.ErrNoRows {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if total := st.Wins + st.Losses; total > 0 {
		st.WinRate = float64(st.Wins) / float64(total)
	}
	st.Rank = RankForWins(st.Wins)
	return st, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Stats, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.store.Pool().Query(ctx, `
		SELECT user_id, wins, losses, earnings
		FROM econ.pvp_stats
		ORDER BY wins DESC, earnings DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Stats
	for rows.Next() {
		var st Stats
		if err := rows.Scan(&st.UserID, &st.Wins, &st.Losses, &st.Earnings); err != nil {
			return nil, err
		}
		if total := st.Wins + st.Losses; total > 0 {
			st.WinRate = float64(st.Wins) / float64(total)
		}
		st.Rank = RankForWins(st.Wins)
		out = append(out, st)
	}
	return out, rows.Err()
}

// SweepExpired refunds the challenger on lapsed challenges.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT id FROM econ.duels WHERE state = 'pending' AND expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	swept := 0
	for _, id := range ids {
		err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			duel, err := lockDuel(ctx, tx, id)
			if err == ErrDuelNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE econ.duels SET state = 'expired' WHERE id = $1
			`, id); err != nil {
				return err
			}
			return ledger.Credit(ctx, tx, duel.Challenger, duel.Bet, "pvp:refund", false)
		})
		if err != nil {
			s.log.Error("duel sweep failed", "duel_id", id, "err", err)
			continue
		}
		swept++
	}
	return swept, nil
}

// lockDuel grabs a live pending duel. Expired rows read as not found; the
// cleanup sweep refunds their stakes.
func lockDuel(ctx context.Context, tx pgx.Tx, duelID string) (Duel, error) {
	var d Duel
	err := tx.QueryRow(ctx, `
		SELECT id, challenger, opponent, bet, state, created_at, expires_at
		FROM econ.duels
		WHERE id = $1 AND state = 'pending' AND expires_at > now()
		FOR UPDATE
	`, duelID).Scan(&d.ID, &d.Challenger, &d.Opponent, &d.Bet, &d.State, &d.CreatedAt, &d.ExpiresAt)
	if err == pgx.ErrNoRows {
		return d, ErrDuelNotFound
	}
	return d, err
}

func bumpStats(ctx context.Context, tx pgx.Tx, userID string, won bool, earned int64) error {
	wins, losses := 0, 1
	if won {
		wins, losses = 1, 0
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO econ.pvp_stats (user_id, wins, losses, earnings)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET wins = econ.pvp_stats.wins + EXCLUDED.wins,
		    losses = econ.pvp_stats.losses + EXCLUDED.losses,
		    earnings = econ.pvp_stats.earnings + EXCLUDED.earnings
	`, userID, wins, losses, earned)
	return err
}
