package stocks

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxStepPct bounds a single price tick to +/-15%.
	MaxStepPct = 0.15
	// FloorCents keeps every listing above 10 coins.
	FloorCents = int64(1000)
)

var (
	ErrUnknownSymbol   = errors.New("unknown company symbol")
	ErrBadShareCount   = errors.New("share count must be positive")
	ErrPositionMissing = errors.New("no position in that company")
	ErrNotEnoughShares = errors.New("not enough shares to sell")
)

type Company struct {
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PricePoint struct {
	PriceCents int64     `json:"price_cents"`
	TickAt     time.Time `json:"tick_at"`
}

type Position struct {
	Symbol       string `json:"symbol"`
	Shares       int64  `json:"shares"`
	AvgCostCents int64  `json:"avg_cost_cents"`
	PriceCents   int64  `json:"price_cents"`
	ValueCoins   int64  `json:"value_coins"`
	ProfitCoins  int64  `json:"profit_coins"`
}

type Portfolio struct {
	Positions  []Position `json:"positions"`
	ValueCoins int64      `json:"value_coins"`
}

type TradeReceipt struct {
	Symbol     string `json:"symbol"`
	Shares     int64  `json:"shares"`
	PriceCents int64  `json:"price_cents"`
	Coins      int64  `json:"coins"`
}

// BuyCost rounds against the buyer: cents convert to coins with a ceiling.
func BuyCost(shares, priceCents int64) int64 {
	return decimal.NewFromInt(shares).Mul(decimal.NewFromInt(priceCents)).
		Div(decimal.NewFromInt(100)).Ceil().IntPart()
}

// SellProceeds rounds against the seller: cents convert to coins with a floor.
func SellProceeds(shares, priceCents int64) int64 {
	return decimal.NewFromInt(shares).Mul(decimal.NewFromInt(priceCents)).
		Div(decimal.NewFromInt(100)).Floor().IntPart()
}

// StepPrice applies a bounded random walk. drift is in [-1, 1) and scales to
// at most MaxStepPct either way; the result never drops below FloorCents.
func StepPrice(priceCents int64, drift float64) int64 {
	factor := decimal.NewFromFloat(1 + drift*MaxStepPct)
	next := decimal.NewFromInt(priceCents).Mul(factor).Round(0).IntPart()
	if next < FloorCents {
		return FloorCents
	}
	return next
}
