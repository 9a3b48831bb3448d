package tourney

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinPlayers = 2
	MaxPlayers = 32
)

var (
	ErrBadPlayerCap    = errors.New("player cap must be between 2 and 32")
	ErrBadEntryFee     = errors.New("entry fee must be positive")
	ErrNotFound        = errors.New("no open tournament")
	ErrAlreadyOpen     = errors.New("a tournament is already open")
	ErrNotHost         = errors.New("only the host may do that")
	ErrAlreadyJoined   = errors.New("already entered in this tournament")
	ErrFull            = errors.New("tournament is full")
	ErrNotEnoughPlayer = errors.New("not enough players to start")
)

type Tournament struct {
	ID         string    `json:"id"`
	Host       string    `json:"host"`
	Name       string    `json:"name"`
	EntryFee   int64     `json:"entry_fee"`
	MaxPlayers int       `json:"max_players"`
	Pot        int64     `json:"pot"`
	State      string    `json:"state"`
	Players    []Player  `json:"players,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Player struct {
	UserID string `json:"user_id"`
	Place  int    `json:"place,omitempty"`
	Payout int64  `json:"payout,omitempty"`
}

// Payouts splits the pot by final standing: 50/30/20 with three or more
// players, 70/30 with two. Shares floor; the dust stays with the house.
func Payouts(pot int64, players int) []int64 {
	var shares []float64
	if players >= 3 {
		shares = []float64{0.50, 0.30, 0.20}
	} else {
		shares = []float64{0.70, 0.30}
	}
	out := make([]int64, len(shares))
	p := decimal.NewFromInt(pot)
	for i, s := range shares {
		out[i] = p.Mul(decimal.NewFromFloat(s)).Floor().IntPart()
	}
	return out
}
