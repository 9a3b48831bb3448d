package games

import (
	"errors"
	"time"
)

const sessionTTL = 5 * time.Minute

var (
	ErrBetTooSmall     = errors.New("bet below table minimum")
	ErrInvalidGuess    = errors.New("dice guess must be between 2 and 12")
	ErrSessionNotFound = errors.New("no active blackjack session")
	ErrSessionActive   = errors.New("a blackjack session is already running")
	ErrCannotDouble    = errors.New("double is only allowed on the first two cards")
)

// BlackjackView is the player-facing session state. The dealer's hole card
// stays hidden until the hand settles.
type BlackjackView struct {
	SessionID   string   `json:"session_id"`
	Bet         int64    `json:"bet"`
	Player      []string `json:"player"`
	PlayerValue int      `json:"player_value"`
	Dealer      []string `json:"dealer"`
	DealerValue int      `json:"dealer_value,omitempty"`
	State       string   `json:"state"`
	Payout      int64    `json:"payout,omitempty"`
	Outcome     string   `json:"outcome,omitempty"`
}

type PokerResult struct {
	Hand    []string `json:"hand"`
	Rank    string   `json:"rank"`
	Bet     int64    `json:"bet"`
	Payout  int64    `json:"payout"`
	Balance int64    `json:"balance"`
}

type DiceResult struct {
	Guess  int   `json:"guess"`
	Dice   []int `json:"dice"`
	Total  int   `json:"total"`
	Bet    int64 `json:"bet"`
	Payout int64 `json:"payout"`
}
