package social

import (
	"errors"
	"time"
)

const tradeTTL = 2 * time.Minute

var (
	ErrSelfGift      = errors.New("cannot gift coins to yourself")
	ErrSelfTrade     = errors.New("cannot trade with yourself")
	ErrGiftTooSmall  = errors.New("gift amount must be positive")
	ErrTradeEmpty    = errors.New("trade must move coins in at least one direction")
	ErrTradeNotFound = errors.New("no pending trade")
	ErrNotYourTrade  = errors.New("trade was not addressed to you")
)

type Trade struct {
	ID        string    `json:"id"`
	Proposer  string    `json:"proposer"`
	Recipient string    `json:"recipient"`
	Offer     int64     `json:"offer"`
	Ask       int64     `json:"ask"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
