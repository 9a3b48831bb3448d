package tourney

import (
	"testing"

	"guildmint/internal/rng"
)

func TestRunBracketStandingsComplete(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8, 13, 32} {
		players := make([]string, n)
		for i := range players {
			players[i] = string(rune('a' + i%26))
			if i >= 26 {
				players[i] += "2"
			}
		}
		standings := RunBracket(players, rng.New(int64(n)))
		if len(standings) != n {
			t.Fatalf("n=%d: got %d standings", n, len(standings))
		}
		seen := map[string]bool{}
		for _, p := range standings {
			if seen[p] {
				t.Fatalf("n=%d: %q placed twice", n, p)
			}
			seen[p] = true
		}
	}
}

func TestRunBracketDeterministicForSeed(t *testing.T) {
	players := []string{"a", "b", "c", "d", "e"}
	first := RunBracket(players, rng.New(7))
	second := RunBracket(players, rng.New(7))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestPayouts(t *testing.T) {
	three := Payouts(1000, 3)
	if three[0] != 500 || three[1] != 300 || three[2] != 200 {
		t.Fatalf("three-way split = %v", three)
	}
	two := Payouts(1000, 2)
	if two[0] != 700 || two[1] != 300 {
		t.Fatalf("two-way split = %v", two)
	}
	odd := Payouts(999, 3)
	if odd[0] != 499 || odd[1] != 299 || odd[2] != 199 {
		t.Fatalf("odd pot split = %v", odd)
	}
}
