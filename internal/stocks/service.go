package stocks

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"guildmint/internal/ledger"
	"guildmint/internal/rng"
)

// Service runs the in-game market: a handful of seeded companies whose
// prices follow a bounded random walk, plus user share positions.
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

// Tick re-prices every company and appends a history point.
func (s *Service) Tick(ctx context.Context) (int, error) {
	moved := 0
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		moved = 0
		rows, err := tx.Query(ctx, `
			SELECT symbol, price_cents FROM econ.companies ORDER BY symbol FOR UPDATE
		`)
		if err != nil {
			return err
		}
		type quote struct {
			symbol string
			cents  int64
		}
		var quotes []quote
		for rows.Next() {
			var q quote
			if err := rows.Scan(&q.symbol, &q.cents); err != nil {
				rows.Close()
				return err
			}
			quotes = append(quotes, q)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, q := range quotes {
			drift := s.rand.Float64()*2 - 1
			next := StepPrice(q.cents, drift)
			if _, err := tx.Exec(ctx, `
				UPDATE econ.companies SET price_cents = $1, updated_at = now() WHERE symbol = $2
			`, next, q.symbol); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO econ.company_prices (symbol, price_cents) VALUES ($1, $2)
			`, q.symbol, next); err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	return moved, err
}

func (s *Service) Buy(ctx context.Context, userID, symbol string, shares int64, idemKey string) (TradeReceipt, error) {
	var out TradeReceipt
	if shares <= 0 {
		return out, ErrBadShareCount
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "stocks:buy"); err != nil {
			return err
		}
		if err := s.store.EnsureAccount(ctx, tx, userID); err != nil {
			return err
		}
		price, err := lockPrice(ctx, tx, symbol)
		if err != nil {
			return err
		}
		cost := BuyCost(shares, price)
		if err := ledger.Debit(ctx, tx, userID, cost, "stocks:buy"); err != nil {
			return err
		}
		if err := upsertBuyPosition(ctx, tx, userID, symbol, shares, price); err != nil {
			return err
		}
		out = TradeReceipt{Symbol: symbol, Shares: shares, PriceCents: price, Coins: cost}
		return nil
	})
	return out, err
}

func (s *Service) Sell(ctx context.Context, userID, symbol string, shares int64, idemKey string) (TradeReceipt, error) {
	var out TradeReceipt
	if shares <= 0 {
		return out, ErrBadShareCount
	}
	err := s.store.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := ledger.ClaimIdempotency(ctx, tx, userID, idemKey, "stocks:sell"); err != nil {
			return err
		}
		price, err := lockPrice(ctx, tx, symbol)
		if err != nil {
			return err
		}
		if err := applySellPosition(ctx, tx, userID, symbol, shares); err != nil {
			return err
		}
		proceeds := SellProceeds(shares, price)
		if err := ledger.Credit(ctx, tx, userID, proceeds, "stocks:sell", false); err != nil {
			return err
		}
		out = TradeReceipt{Symbol: symbol, Shares: shares, PriceCents: price, Coins: proceeds}
		return nil
	})
	return out, err
}

func (s *Service) List(ctx context.Context) ([]Company, error) {
	rows, err := s.store.Pool().Query(ctx, `
		SELECT symbol, name, price_cents, updated_at FROM econ.companies ORDER BY symbol
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.Symbol, &c.Name, &c.PriceCents, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Service) Quote(ctx context.Context, symbol string) (Company, error) {
	var c Company
	err := s.store.Pool().QueryRow(ctx, `
		SELECT symbol, name, price_cents, updated_at FROM econ.companies WHERE symbol = $1
	`, symbol).Scan(&c.Symbol, &c.Name, &c.PriceCents, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return c, ErrUnknownSymbol
	}
	return c, err
}

func (s *Service) History(ctx context.Context, symbol string, limit int) ([]PricePoint, error) {
	if limit <= 0 || limit > 500 {
		limit = 48
	}
	rows, err := s.store.Pool().Query(ctx, `
		SELECT price_cents, tick_at
		FROM econ.company_prices
		WHERE symbol = $1
		ORDER BY tick_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PricePoint
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.PriceCents, &p.TickAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		if _, err := s.Quote(ctx, symbol); err != nil {
			return nil, err
		}
	}
	return out, rows.Err()
}

func (s *Service) PortfolioFor(ctx context.Context, userID string) (Portfolio, error) {
	var out Portfolio
	rows, err := s.store.Pool().Query(ctx, `
		SELECT p.symbol, p.shares, p.avg_cost_cents, c.price_cents
		FROM econ.positions p
		JOIN econ.companies c ON c.symbol = p.symbol
		WHERE p.user_id = $1
		ORDER BY p.symbol
	`, userID)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.Symbol, &p.Shares, &p.AvgCostCents, &p.PriceCents); err != nil {
			return out, err
		}
		p.ValueCoins = SellProceeds(p.Shares, p.PriceCents)
		p.ProfitCoins = p.ValueCoins - BuyCost(p.Shares, p.AvgCostCents)
		out.Positions = append(out.Positions, p)
		out.ValueCoins += p.ValueCoins
	}
	return out, rows.Err()
}

// MarketValue is the coin value of a user's shares at current prices,
// queried inside the caller's transaction.
func MarketValue(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	rows, err := tx.Query(ctx, `
		SELECT p.shares, c.price_cents
		FROM econ.positions p
		JOIN econ.companies c ON c.symbol = p.symbol
		WHERE p.user_id = $1
	`, userID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var total int64
	for rows.Next() {
		var shares, cents int64
		if err := rows.Scan(&shares, &cents); err != nil {
			return 0, err
		}
		total += SellProceeds(shares, cents)
	}
	return total, rows.Err()
}

func lockPrice(ctx context.Context, tx pgx.Tx, symbol string) (int64, error) {
	var cents int64
	err := tx.QueryRow(ctx, `
		SELECT price_cents FROM econ.companies WHERE symbol = $1 FOR UPDATE
	`, symbol).Scan(&cents)
	if err == pgx.ErrNoRows {
		return 0, ErrUnknownSymbol
	}
	return cents, err
}

// upsertBuyPosition folds a purchase into the position, re-averaging cost.
func upsertBuyPosition(ctx context.Context, tx pgx.Tx, userID, symbol string, shares, priceCents int64) error {
	var haveShares, haveCost int64
	err := tx.QueryRow(ctx, `
		SELECT shares, avg_cost_cents FROM econ.positions
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`, userID, symbol).Scan(&haveShares, &haveCost)
	if err == pgx.ErrNoRows {
		_, err := tx.Exec(ctx, `
			INSERT INTO econ.positions (user_id, symbol, shares, avg_cost_cents)
			VALUES ($1, $2, $3, $4)
		`, userID, symbol, shares, priceCents)
		return err
	}
	if err != nil {
		return err
	}
	total := haveShares + shares
	avg := decimal.NewFromInt(haveShares).Mul(decimal.NewFromInt(haveCost)).
		Add(decimal.NewFromInt(shares).Mul(decimal.NewFromInt(priceCents))).
		Div(decimal.NewFromInt(total)).Round(0).IntPart()
	_, err = tx.Exec(ctx, `
		UPDATE econ.positions
		SET shares = $1, avg_cost_cents = $2, updated_at = now()
		WHERE user_id = $3 AND symbol = $4
	`, total, avg, userID, symbol)
	return err
}

// applySellPosition shrinks the position, deleting it when it reaches zero.
func applySellPosition(ctx context.Context, tx pgx.Tx, userID, symbol string, shares int64) error {
	var have int64
	err := tx.QueryRow(ctx, `
		SELECT shares FROM econ.positions
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`, userID, symbol).Scan(&have)
	if err == pgx.ErrNoRows {
		return ErrPositionMissing
	}
	if err != nil {
		return err
	}
	if have < shares {
		return ErrNotEnoughShares
	}
	if have == shares {
		_, err = tx.Exec(ctx, `
			DELETE FROM econ.positions WHERE user_id = $1 AND symbol = $2
		`, userID, symbol)
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE econ.positions SET shares = shares - $1, updated_at = now()
		WHERE user_id = $2 AND symbol = $3
	`, shares, userID, symbol)
	return err
}
