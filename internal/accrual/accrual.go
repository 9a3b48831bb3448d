// Package accrual is the single source of time-based earnings math. Bank
// interest, business revenue and booster lifetimes all go through here so the
// rounding rules cannot drift apart.
package accrual

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accrue returns the coins earned between last and now at perHour, after
// clamping the elapsed time to [minHours, capHours]. Elapsed time below
// minHours earns nothing. A capHours of zero means uncapped.
func Accrue(last, now time.Time, perHour int64, minHours, capHours float64) int64 {
	if perHour <= 0 || !now.After(last) {
		return 0
	}
	hours := now.Sub(last).Hours()
	if hours < minHours {
		return 0
	}
	if capHours > 0 && hours > capHours {
		hours = capHours
	}
	amt := decimal.NewFromInt(perHour).Mul(decimal.NewFromFloat(hours))
	return amt.Floor().IntPart()
}

// InterestOwed is the simple interest due on principal for the whole days
// elapsed since the anchor, minus what was already paid out for that span.
// The floor is taken once across the span, not per day, so small principals
// still earn: 1000 coins at 3% pays its first coin on day 13 instead of
// flooring to zero every morning.
func InterestOwed(principal int64, annualRate float64, since, now time.Time, alreadyPaid int64) int64 {
	if principal <= 0 || annualRate <= 0 || !now.After(since) {
		return 0
	}
	days := int64(now.Sub(since).Hours() / 24)
	if days <= 0 {
		return 0
	}
	total := decimal.NewFromInt(principal).
		Mul(decimal.NewFromFloat(annualRate)).
		Mul(decimal.NewFromInt(days)).
		Div(decimal.NewFromInt(365)).
		Floor().IntPart()
	if owed := total - alreadyPaid; owed > 0 {
		return owed
	}
	return 0
}

// WithMultiplier scales an amount by a rate multiplier, floored.
func WithMultiplier(amount int64, multiplier float64) int64 {
	if amount <= 0 {
		return 0
	}
	if multiplier <= 0 {
		return 0
	}
	v := decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(multiplier))
	return v.Floor().IntPart()
}
