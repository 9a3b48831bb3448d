package stats

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"guildmint/internal/ledger"
	"guildmint/internal/pvp"
	"guildmint/internal/stocks"
)

// Service aggregates the dashboard reads across every domain table.
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

// UserStatsFor rolls a user's whole economic footprint into one snapshot.
// Reads run in one transaction so the numbers are mutually consistent.
func (s *Service) UserStatsFor(ctx context.Context, userID string) (UserStats, error) {
	out := UserStats{UserID: userID, Level: 1, DuelRank: pvp.RankForWins(0)}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT balance, total_earned, games_played, games_won
			FROM econ.accounts WHERE user_id = $1
		`, userID).Scan(&out.Wallet, &out.TotalEarned, &out.GamesPlayed, &out.GamesWon)
		if err == pgx.ErrNoRows {
			return ledger.ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		if out.GamesPlayed > 0 {
			out.GameWinRate = float64(out.GamesWon) / float64(out.GamesPlayed)
		}

		if err := tx.QueryRow(ctx, `
			SELECT COALESCE((SELECT balance FROM econ.deposits WHERE user_id = $1), 0)
		`, userID).Scan(&out.Deposit); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE((SELECT owed FROM econ.loans WHERE user_id = $1), 0)
		`, userID).Scan(&out.LoanOwed); err != nil {
			return err
		}
		if out.StockValue, err = stocks.MarketValue(ctx, tx, userID); err != nil {
			return err
		}
		out.NetWorth = out.Wallet + out.Deposit + out.StockValue - out.LoanOwed

		if err := tx.QueryRow(ctx, `
			SELECT COALESCE((SELECT level FROM econ.levels WHERE user_id = $1), 1),
			       COALESCE((SELECT xp FROM econ.levels WHERE user_id = $1), 0)
		`, userID).Scan(&out.Level, &out.XP); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE((SELECT tier FROM econ.prestige WHERE user_id = $1), 0)
		`, userID).Scan(&out.PrestigeTier); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT title, equipped FROM econ.titles WHERE user_id = $1 ORDER BY acquired_at
		`, userID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var title string
			var equipped bool
			if err := rows.Scan(&title, &equipped); err != nil {
				rows.Close()
				return err
			}
			out.Titles = append(out.Titles, title)
			if equipped {
				out.EquippedTitle = title
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `
			SELECT count(*) FROM econ.businesses WHERE owner_user_id = $1
		`, userID).Scan(&out.Businesses); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE((SELECT wins FROM econ.pvp_stats WHERE user_id = $1), 0),
			       COALESCE((SELECT losses FROM econ.pvp_stats WHERE user_id = $1), 0)
		`, userID).Scan(&out.DuelWins, &out.DuelLosses); err != nil {
			return err
		}
		out.DuelRank = pvp.RankForWins(out.DuelWins)
		return nil
	})
	return out, err
}

// ServerStatsNow summarizes the whole economy for the dashboard.
func (s *Service) ServerStatsNow(ctx context.Context) (ServerStats, error) {
	var out ServerStats
	err := s.store.Pool().QueryRow(ctx, `
		SELECT (SELECT count(*) FROM econ.accounts),
		       (SELECT COALESCE(sum(a.balance), 0) + COALESCE((SELECT sum(balance) FROM econ.deposits), 0) FROM econ.accounts a),
		       (SELECT COALESCE(sum(games_played), 0) FROM econ.accounts),
		       (SELECT count(*) FROM econ.businesses),
		       (SELECT count(*) FROM econ.duels WHERE state = 'pending'),
		       (SELECT count(*) FROM econ.loans),
		       (SELECT count(*) FROM econ.jail_terms WHERE released_at > now()),
		       (SELECT COALESCE(sum(messages), 0) FROM econ.levels),
		       (SELECT COALESCE(max(balance), 0) FROM econ.accounts)
	`).Scan(&out.Users, &out.TotalMoney, &out.GamesPlayed, &out.Businesses,
		&out.OpenDuels, &out.ActiveLoans, &out.JailedUsers, &out.MessagesTotal, &out.HighestBalance)
	return out, err
}

// Transactions exposes the recent public ledger feed.
func (s *Service) Transactions(ctx context.Context, limit int) ([]ledger.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 25
	}
	return s.store.RecentEntries(ctx, limit)
}

// RichList is the balance leaderboard.
func (s *Service) RichList(ctx context.Context, limit int) ([]ledger.BalanceRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.TopBalances(ctx, limit)
}
