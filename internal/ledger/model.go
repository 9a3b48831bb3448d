package ledger

import (
	"errors"
	"time"
)

// Ledger account labels. Every balance mutation writes a wallet (or deposit)
// row plus a balancing counterparty or sink row under one tx group.
const (
	AccountWallet       = "wallet"
	AccountDeposit      = "deposit"
	AccountCounterparty = "counterparty"
	AccountSink         = "sink"
)

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAccountNotFound      = errors.New("account not found")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
	ErrTxConflict           = errors.New("transaction conflict, retry")
)

type Account struct {
	UserID      string    `json:"user_id"`
	Balance     int64     `json:"balance"`
	TotalEarned int64     `json:"total_earned"`
	GamesPlayed int64     `json:"games_played"`
	GamesWon    int64     `json:"games_won"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Entry struct {
	ID        int64     `json:"id"`
	TxGroupID string    `json:"tx_group_id"`
	UserID    string    `json:"user_id"`
	Account   string    `json:"account"`
	Action    string    `json:"action"`
	Delta     int64     `json:"delta"`
	CreatedAt time.Time `json:"created_at"`
}

type BalanceRow struct {
	Rank    int64  `json:"rank"`
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}
