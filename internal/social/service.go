package social

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"guildmint/internal/crime"
	"guildmint/internal/ledger"
)

// Service covers player-to-player transfers: one-shot gifts and two-sided
// coin trades with a short confirmation window.
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

// Gift moves coins wallet-to-wallet in one transaction.
func (s *Service) Gift(ctx context.Context, from, to string, amount int64, idemKey string) error {
	if from == to {
		return ErrSelfGift
	}
	if amount <= 0 {
		return ErrGiftTooSmall
	}
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, from, idemKey, "social:gift"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, from); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, to); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, from); err != nil {
			return err
		}
		return ledger.Transfer(ctx, tx, from, to, amount, "social:gift")
	})
}

// Propose escrows the proposer's offer and opens a pending trade. The ask is
// collected from the recipient on acceptance.
func (s *Service) Propose(ctx context.Context, proposer, recipient string, offer, ask int64, idemKey string) (Trade, error) {
	var out Trade
	if proposer == recipient {
		return out, ErrSelfTrade
	}
	if offer < 0 || ask < 0 || (offer == 0 && ask == 0) {
		return out, ErrTradeEmpty
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, proposer, idemKey, "social:trade"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, proposer); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, recipient); err != nil {
			return err
		}
		if err := crime.EnsureNotJailed(ctx, tx, proposer); err != nil {
			return err
		}
		if offer > 0 {
			if err := ledger.Debit(ctx, tx, proposer, offer, "social:trade:escrow"); err != nil {
				return err
			}
		}
		out = Trade{
			ID:        uuid.NewString(),
			Proposer:  proposer,
			Recipient: recipient,
			Offer:     offer,
			Ask:       ask,
			State:     "pending",
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(tradeTTL),
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO econ.trades (id, proposer, recipient, offer, ask, state, expires_at)
			VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		`, out.ID, proposer, recipient, offer, ask, out.ExpiresAt)
		return err
	})
	return out, err
}

// Accept collects the ask from the recipient and releases both sides.
func (s *Service) Accept(ctx context.Context, recipient, tradeID, idemKey string) (Trade, error) {
	var out Trade
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, recipient, idemKey, "social:trade:accept"); err != nil {
			return err
		}
		trade, err := lockTrade(ctx, tx, tradeID)
		if err != nil {
			return err
		}
		if trade.Recipient != recipient {
			return ErrNotYourTrade
		}
		if trade.Ask > 0 {
			if err := ledger.Transfer(ctx, tx, recipient, trade.Proposer, trade.Ask, "social:trade"); err != nil {
				return err
			}
		}
		if trade.Offer > 0 {
			if err := ledger.Credit(ctx, tx, recipient, trade.Offer, "social:trade", false); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.trades SET state = 'settled' WHERE id = $1
		`, tradeID); err != nil {
			return err
		}
		trade.State = "settled"
		out = trade
		return nil
	})
	return out, err
}

// Cancel refunds the proposer's escrow. Either side may cancel.
func (s *Service) Cancel(ctx context.Context, userID, tradeID string) error {
	return s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		trade, err := lockTrade(ctx, tx, tradeID)
		if err != nil {
			return err
		}
		if trade.Proposer != userID && trade.Recipient != userID {
			return ErrNotYourTrade
		}
		if _, err := tx.Exec(ctx, `
			UPDATE econ.trades SET state = 'cancelled' WHERE id = $1
		`, tradeID); err != nil {
			return err
		}
		if trade.Offer > 0 {
			return ledger.Credit(ctx, tx, trade.Proposer, trade.Offer, "social:trade:refund", false)
		}
		return nil
	})
}

// Pending lists open trades involving the user.
func (s *Service) Pending(ctx context.Context, userID string) ([]Trade, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT id, proposer, recipient, offer, ask, state, created_at, expires_at
		FROM econ.trades
		WHERE (proposer = $1 OR recipient = $1) AND state = 'pending' AND expires_at > now()
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Trade
	for rows.Next() {
		var tr Trade
		if err := rows.Scan(&tr.ID, &tr.Proposer, &tr.Recipient, &tr.Offer, &tr.Ask, &tr.State, &tr.CreatedAt, &tr.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// SweepExpired refunds proposers on lapsed trades.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT id FROM econ.trades WHERE state = 'pending' AND expires_at <= now()
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
			trade, err := lockTrade(ctx, tx, id)
			if err == ErrTradeNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE econ.trades SET state = 'expired' WHERE id = $1
			`, id); err != nil {
				return err
			}
			if trade.Offer > 0 {
				return ledger.Credit(ctx, tx, trade.Proposer, trade.Offer, "social:trade:refund", false)
			}
			return nil
		})
		if err != nil {
			s.log.Error("trade sweep failed", "trade_id", id, "err", err)
			continue
		}
		swept++
	}
	return swept, nil
}

// lockTrade grabs a live pending trade. Expired rows read as not found; the
// cleanup sweep refunds the escrowed offer.
func lockTrade(ctx context.Context, tx pgx.Tx, tradeID string) (Trade, error) {
	var tr Trade
	err := tx.QueryRow(ctx, `
		SELECT id, proposer, recipient, offer, ask, state, created_at, expires_at
		FROM econ.trades
		WHERE id = $1 AND state = 'pending' AND expires_at > now()
		FOR UPDATE
	`, tradeID).Scan(&tr.ID, &tr.Proposer, &tr.Recipient, &tr.Offer, &tr.Ask, &tr.State, &tr.CreatedAt, &tr.ExpiresAt)
	if err == pgx.ErrNoRows {
		return tr, ErrTradeNotFound
	}
	return tr, err
}
