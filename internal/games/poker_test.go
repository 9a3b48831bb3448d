package games

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func hand(cards ...[2]int) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = Card{Rank: c[0], Suit: c[1]}
	}
	return out
}

func TestEvaluateHand(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want HandRank
	}{
		{"high card", hand([2]int{2, 0}, [2]int{5, 1}, [2]int{9, 2}, [2]int{11, 3}, [2]int{13, 0}), HighCard},
		{"pair", hand([2]int{9, 0}, [2]int{9, 1}, [2]int{2, 2}, [2]int{5, 3}, [2]int{13, 0}), Pair},
		{"two pair", hand([2]int{9, 0}, [2]int{9, 1}, [2]int{5, 2}, [2]int{5, 3}, [2]int{13, 0}), TwoPair},
		{"three of a kind", hand([2]int{9, 0}, [2]int{9, 1}, [2]int{9, 2}, [2]int{5, 3}, [2]int{13, 0}), ThreeOfAKind},
		{"straight", hand([2]int{5, 0}, [2]int{6, 1}, [2]int{7, 2}, [2]int{8, 3}, [2]int{9, 0}), Straight},
		{"wheel straight", hand([2]int{14, 0}, [2]int{2, 1}, [2]int{3, 2}, [2]int{4, 3}, [2]int{5, 0}), Straight},
		{"broadway straight", hand([2]int{10, 0}, [2]int{11, 1}, [2]int{12, 2}, [2]int{13, 3}, [2]int{14, 0}), Straight},
		{"flush", hand([2]int{2, 1}, [2]int{5, 1}, [2]int{9, 1}, [2]int{11, 1}, [2]int{13, 1}), Flush},
		{"full house", hand([2]int{9, 0}, [2]int{9, 1}, [2]int{9, 2}, [2]int{5, 3}, [2]int{5, 0}), FullHouse},
		{"four of a kind", hand([2]int{9, 0}, [2]int{9, 1}, [2]int{9, 2}, [2]int{9, 3}, [2]int{5, 0}), FourOfAKind},
		{"straight flush", hand([2]int{5, 2}, [2]int{6, 2}, [2]int{7, 2}, [2]int{8, 2}, [2]int{9, 2}), StraightFlush},
		{"steel wheel", hand([2]int{14, 2}, [2]int{2, 2}, [2]int{3, 2}, [2]int{4, 2}, [2]int{5, 2}), StraightFlush},
		{"royal flush", hand([2]int{10, 3}, [2]int{11, 3}, [2]int{12, 3}, [2]int{13, 3}, [2]int{14, 3}), RoyalFlush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, EvaluateHand(tt.hand))
		})
	}
}

func TestPokerMultiplier(t *testing.T) {
	require.Equal(t, float64(25), PokerMultiplier(RoyalFlush))
	require.Equal(t, float64(25), PokerMultiplier(StraightFlush))
	require.Equal(t, float64(10), PokerMultiplier(FourOfAKind))
	require.Equal(t, float64(3), PokerMultiplier(FullHouse))
	require.Equal(t, float64(2), PokerMultiplier(Flush))
	require.Equal(t, float64(2), PokerMultiplier(Straight))
	require.Equal(t, float64(1), PokerMultiplier(ThreeOfAKind))
	require.Equal(t, float64(1), PokerMultiplier(TwoPair))
	require.Equal(t, float64(0), PokerMultiplier(Pair))
	require.Equal(t, float64(0), PokerMultiplier(HighCard))
}

func TestScaleBet(t *testing.T) {
	require.Equal(t, int64(0), scaleBet(100, 0))
	require.Equal(t, int64(150), scaleBet(100, 1.5))
	require.Equal(t, int64(22), scaleBet(15, 1.5))
	require.Equal(t, int64(500), scaleBet(50, 10))
}
