package perks

import "testing"

func TestPrestigeMultiplier(t *testing.T) {
	cases := []struct {
		tier int
		want float64
	}{
		{0, 1.0},
		{1, 1.1},
		{3, 1.3},
		{-2, 1.0},
	}
	for _, tc := range cases {
		if got := PrestigeMultiplier(tc.tier); got != tc.want {
			t.Fatalf("PrestigeMultiplier(%d) = %v, want %v", tc.tier, got, tc.want)
		}
	}
}

func TestBoosterCost(t *testing.T) {
	if got := BoosterCost(1); got != 1000 {
		t.Fatalf("BoosterCost(1) = %d, want 1000", got)
	}
	if got := BoosterCost(24); got != 24000 {
		t.Fatalf("BoosterCost(24) = %d, want 24000", got)
	}
}

func TestTitleByName(t *testing.T) {
	spec, ok := TitleByName("Tycoon")
	if !ok || spec.Cost != 25000 || spec.MinLevel != 25 {
		t.Fatalf("TitleByName(Tycoon) = %+v, %v", spec, ok)
	}
	if _, ok := TitleByName("Nonexistent"); ok {
		t.Fatal("TitleByName should miss unknown titles")
	}
}
