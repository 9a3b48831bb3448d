package stocks

import "testing"

func TestBuyCostRoundsUp(t *testing.T) {
	tests := []struct {
		shares, priceCents, want int64
	}{
		{1, 10000, 100},
		{1, 10001, 101},
		{3, 3333, 100},
		{1, 1000, 10},
	}
	for _, tt := range tests {
		if got := BuyCost(tt.shares, tt.priceCents); got != tt.want {
			t.Errorf("BuyCost(%d, %d) = %d, want %d", tt.shares, tt.priceCents, got, tt.want)
		}
	}
}

func TestSellProceedsRoundsDown(t *testing.T) {
	tests := []struct {
		shares, priceCents, want int64
	}{
		{1, 10000, 100},
		{1, 10099, 100},
		{3, 3333, 99},
		{1, 1000, 10},
	}
	for _, tt := range tests {
		if got := SellProceeds(tt.shares, tt.priceCents); got != tt.want {
			t.Errorf("SellProceeds(%d, %d) = %d, want %d", tt.shares, tt.priceCents, got, tt.want)
		}
	}
}

func TestStepPrice(t *testing.T) {
	if got := StepPrice(10000, 1); got != 11500 {
		t.Fatalf("full upward step = %d, want 11500", got)
	}
	if got := StepPrice(10000, -1); got != 8500 {
		t.Fatalf("full downward step = %d, want 8500", got)
	}
	if got := StepPrice(10000, 0); got != 10000 {
		t.Fatalf("zero drift moved price to %d", got)
	}
	if got := StepPrice(FloorCents, -1); got != FloorCents {
		t.Fatalf("price fell through the floor: %d", got)
	}
}
