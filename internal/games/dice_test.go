package games

import "testing"

func TestDiceMultiplier(t *testing.T) {
	tests := []struct {
		name        string
		guess, roll int
		want        float64
	}{
		{"exact", 7, 7, 10},
		{"one under", 7, 6, 3},
		{"one over", 7, 8, 3},
		{"two under", 7, 5, 1.5},
		{"two over", 7, 9, 1.5},
		{"three off", 7, 10, 0},
		{"far off", 2, 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiceMultiplier(tt.guess, tt.roll); got != tt.want {
				t.Fatalf("DiceMultiplier(%d, %d) = %v, want %v", tt.guess, tt.roll, got, tt.want)
			}
		})
	}
}
