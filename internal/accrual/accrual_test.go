package accrual

import (
	"testing"
	"time"
)

func TestAccrue(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		elapsed  time.Duration
		perHour  int64
		minHours float64
		capHours float64
		want     int64
	}{
		{"below minimum", 3 * time.Minute, 100, 0.1, 24, 0},
		{"exactly minimum", 6 * time.Minute, 100, 0.1, 24, 10},
		{"one hour", time.Hour, 100, 0.1, 24, 100},
		{"fractional floors", 90 * time.Minute, 101, 0.1, 24, 151},
		{"capped at a day", 48 * time.Hour, 100, 0.1, 24, 2400},
		{"uncapped", 48 * time.Hour, 100, 0.1, 0, 4800},
		{"zero rate", time.Hour, 0, 0.1, 24, 0},
		{"clock went backwards", -time.Hour, 100, 0.1, 24, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Accrue(base, base.Add(tc.elapsed), tc.perHour, tc.minHours, tc.capHours)
			if got != tc.want {
				t.Fatalf("Accrue() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestInterestOwed(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name        string
		principal   int64
		rate        float64
		days        int
		alreadyPaid int64
		want        int64
	}{
		{"full year on 1000", 1000, 0.03, 365, 0, 30},
		{"day 12 still sub-coin", 1000, 0.03, 12, 0, 0},
		{"day 13 pays the first coin", 1000, 0.03, 13, 0, 1},
		{"already paid is deducted", 1000, 0.03, 365, 29, 1},
		{"nothing new owed", 1000, 0.03, 365, 30, 0},
		{"overpaid clamps to zero", 1000, 0.03, 13, 5, 0},
		{"large principal one day", 1000000, 0.03, 1, 0, 82},
		{"partial day", 1000000, 0.03, 0, 0, 0},
		{"zero principal", 0, 0.03, 365, 0, 0},
		{"zero rate", 5000, 0, 365, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := anchor.Add(time.Duration(tc.days) * 24 * time.Hour)
			got := InterestOwed(tc.principal, tc.rate, anchor, now, tc.alreadyPaid)
			if got != tc.want {
				t.Fatalf("InterestOwed(%d, %v, %d days, paid %d) = %d, want %d",
					tc.principal, tc.rate, tc.days, tc.alreadyPaid, got, tc.want)
			}
		})
	}
}

// A deposit of 1000 coins at 3% swept every day for a year must pay 30 coins
// in total, even though any single day's share is below one coin.
func TestInterestOwedDailySweepYear(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var paid int64
	for day := 1; day <= 365; day++ {
		now := anchor.Add(time.Duration(day) * 24 * time.Hour)
		paid += InterestOwed(1000, 0.03, anchor, now, paid)
	}
	if paid != 30 {
		t.Fatalf("365 daily sweeps on 1000 coins paid %d, want 30", paid)
	}
}

func TestWithMultiplier(t *testing.T) {
	cases := []struct {
		amount     int64
		multiplier float64
		want       int64
	}{
		{100, 1.0, 100},
		{100, 1.1, 110},
		{100, 1.25, 125},
		{33, 1.5, 49},
		{100, 0, 0},
		{0, 2, 0},
	}
	for _, tc := range cases {
		if got := WithMultiplier(tc.amount, tc.multiplier); got != tc.want {
			t.Fatalf("WithMultiplier(%d, %v) = %d, want %d", tc.amount, tc.multiplier, got, tc.want)
		}
	}
}
