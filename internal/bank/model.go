package bank

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanFeePct   = 0.10
	LoanTermDays = 7
	LoanFloor    = int64(1000)
)

var (
	ErrLoanOutstanding     = errors.New("an open loan must be repaid first")
	ErrLoanTooLarge        = errors.New("loan exceeds your limit")
	ErrNoLoan              = errors.New("no open loan")
	ErrInsufficientDeposit = errors.New("insufficient deposit balance")
)

type Statement struct {
	UserID         string     `json:"user_id"`
	WalletBalance  int64      `json:"wallet_balance"`
	DepositBalance int64      `json:"deposit_balance"`
	LoanOwed       int64      `json:"loan_owed"`
	LoanDueAt      *time.Time `json:"loan_due_at,omitempty"`
	LoanOverdue    bool       `json:"loan_overdue"`
}

// MaxLoan is half the wallet, but never below the floor every account gets.
func MaxLoan(walletBalance int64) int64 {
	half := walletBalance / 2
	if half < LoanFloor {
		return LoanFloor
	}
	return half
}

// LoanOwed is principal plus the flat fee, rounded up so the bank never
// loses a coin to rounding.
func LoanOwed(principal int64) int64 {
	return decimal.NewFromInt(principal).
		Mul(decimal.NewFromFloat(1 + LoanFeePct)).
		Ceil().IntPart()
}
