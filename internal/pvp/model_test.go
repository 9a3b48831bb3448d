package pvp

import "testing"

func TestRankForWins(t *testing.T) {
	tests := []struct {
		wins int
		want string
	}{
		{0, "Rookie"},
		{4, "Rookie"},
		{5, "Brawler"},
		{14, "Brawler"},
		{15, "Warrior"},
		{29, "Warrior"},
		{30, "Champion"},
		{49, "Champion"},
		{50, "Legend"},
		{200, "Legend"},
	}
	for _, tt := range tests {
		if got := RankForWins(tt.wins); got != tt.want {
			t.Errorf("RankForWins(%d) = %q, want %q", tt.wins, got, tt.want)
		}
	}
}
