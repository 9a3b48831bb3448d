package pvp

import (
	"errors"
	"time"
)

const (
	DuelMinBet   = int64(100)
	duelTTL      = 2 * time.Minute
	duelRollDie  = 100
)

var (
	ErrBetTooSmall     = errors.New("duel stake below minimum")
	ErrSelfDuel        = errors.New("cannot duel yourself")
	ErrDuelNotFound    = errors.New("no pending duel")
	ErrDuelPending     = errors.New("a duel challenge is already pending")
	ErrNotYourDuel     = errors.New("duel was not addressed to you")
)

type Duel struct {
	ID             string     `json:"id"`
	Challenger     string     `json:"challenger"`
	Opponent       string     `json:"opponent"`
	Bet            int64      `json:"bet"`
	State          string     `json:"state"`
	Winner         string     `json:"winner,omitempty"`
	ChallengerRoll int        `json:"challenger_roll,omitempty"`
	OpponentRoll   int        `json:"opponent_roll,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
}

type Stats struct {
	UserID   string  `json:"user_id"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Earnings int64   `json:"earnings"`
	WinRate  float64 `json:"win_rate"`
	Rank     string  `json:"rank"`
}

// RankForWins maps lifetime duel wins to a ladder title.
func RankForWins(wins int) string {
	switch {
	case wins >= 50:
		return "Legend"
	case wins >= 30:
		return "Champion"
	case wins >= 15:
		return "Warrior"
	case wins >= 5:
		return "Brawler"
	default:
		return "Rookie"
	}
}
