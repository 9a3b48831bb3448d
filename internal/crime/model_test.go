package crime

import (
	"testing"
	"time"
)

func TestBailCost(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      int64
	}{
		{0, 0},
		{-time.Hour, 0},
		{30 * time.Minute, 250},
		{time.Hour, 500},
		{time.Hour + time.Minute, 508}, // 1.0166h x 500 floors
		{5*time.Hour + 30*time.Minute, 2750},
		{6 * time.Hour, 3000},
	}
	for _, tc := range cases {
		if got := BailCost(tc.remaining); got != tc.want {
			t.Fatalf("BailCost(%v) = %d, want %d", tc.remaining, got, tc.want)
		}
	}
}

func TestFine(t *testing.T) {
	cases := []struct {
		balance int64
		pct     int64
		want    int64
	}{
		{1000, 20, 200},
		{999, 20, 199},
		{0, 20, 0},
		{-50, 20, 0},
	}
	for _, tc := range cases {
		if got := Fine(tc.balance, tc.pct); got != tc.want {
			t.Fatalf("Fine(%d, %d) = %d, want %d", tc.balance, tc.pct, got, tc.want)
		}
	}
}

func TestTierByName(t *testing.T) {
	tier, err := TierByName("heist")
	if err != nil {
		t.Fatalf("TierByName(heist) error: %v", err)
	}
	if tier.Success != 0.30 || tier.MinReward != 1000 || tier.MaxReward != 3000 || tier.JailTerm != 6*time.Hour {
		t.Fatalf("unexpected heist tier: %+v", tier)
	}
	if _, err := TierByName("arson"); err != ErrUnknownTier {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
}
