package business

import "testing"

func TestIncomePerHour(t *testing.T) {
	cases := []struct {
		name      string
		base      int64
		employees int
		level     int
		want      int64
	}{
		{"bare shop", 100, 0, 1, 100},
		{"one employee", 100, 1, 1, 110},
		{"full staff", 100, 5, 1, 150},
		{"level two", 100, 0, 2, 125},
		{"staff and level", 100, 2, 3, 180},
		{"zero base", 0, 3, 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IncomePerHour(tc.base, tc.employees, tc.level); got != tc.want {
				t.Fatalf("IncomePerHour(%d, %d, %d) = %d, want %d", tc.base, tc.employees, tc.level, got, tc.want)
			}
		})
	}
}

func TestUpgradeCost(t *testing.T) {
	cases := []struct {
		baseCost  int64
		nextLevel int
		want      int64
	}{
		{10000, 2, 10000},
		{10000, 5, 25000},
		{25000, 2, 25000},
	}
	for _, tc := range cases {
		if got := UpgradeCost(tc.baseCost, tc.nextLevel); got != tc.want {
			t.Fatalf("UpgradeCost(%d, %d) = %d, want %d", tc.baseCost, tc.nextLevel, got, tc.want)
		}
	}
}

func TestHireCost(t *testing.T) {
	for i, want := range []int64{1000, 2000, 3000, 4000, 5000} {
		if got := HireCost(i); got != want {
			t.Fatalf("HireCost(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestSellRefund(t *testing.T) {
	if got := SellRefund(10000); got != 5000 {
		t.Fatalf("SellRefund(10000) = %d, want 5000", got)
	}
	if got := SellRefund(10001); got != 5000 {
		t.Fatalf("SellRefund(10001) = %d, want 5000", got)
	}
	if got := SellRefund(0); got != 0 {
		t.Fatalf("SellRefund(0) = %d, want 0", got)
	}
}

func TestKindByName(t *testing.T) {
	cases := []struct {
		name     string
		cost     int64
		income   int64
		minLevel int
	}{
		{"shop", 10000, 100, 1},
		{"restaurant", 25000, 150, 10},
		{"casino", 50000, 200, 20},
		{"corporation", 100000, 300, 30},
	}
	for _, tc := range cases {
		kind, err := KindByName(tc.name)
		if err != nil {
			t.Fatalf("KindByName(%s) error: %v", tc.name, err)
		}
		if kind.Cost != tc.cost || kind.IncomePerHour != tc.income || kind.MinLevel != tc.minLevel {
			t.Fatalf("unexpected %s kind: %+v", tc.name, kind)
		}
	}
	if _, err := KindByName("arcade"); err != ErrUnknownKind {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
