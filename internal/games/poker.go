package games

import "sort"

const PokerMinBet = int64(20)

type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var handRankNames = map[HandRank]string{
	HighCard:      "high card",
	Pair:          "pair",
	TwoPair:       "two pair",
	ThreeOfAKind:  "three of a kind",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full house",
	FourOfAKind:   "four of a kind",
	StraightFlush: "straight flush",
	RoyalFlush:    "royal flush",
}

func (r HandRank) String() string {
	return handRankNames[r]
}

// EvaluateHand classifies a five-card hand.
func EvaluateHand(hand []Card) HandRank {
	if len(hand) != 5 {
		return HighCard
	}
	ranks := make([]int, 5)
	flush := true
	for i, c := range hand {
		ranks[i] = c.Rank
		if c.Suit != hand[0].Suit {
			flush = false
		}
	}
	sort.Ints(ranks)

	straight := true
	for i := 1; i < 5; i++ {
		if ranks[i] != ranks[i-1]+1 {
			straight = false
			break
		}
	}
	// Wheel: A-2-3-4-5.
	if !straight && ranks[4] == 14 && ranks[0] == 2 && ranks[1] == 3 && ranks[2] == 4 && ranks[3] == 5 {
		straight = true
	}

	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	var pairs, trips, quads int
	for _, n := range counts {
		switch n {
		case 2:
			pairs++
		case 3:
			trips++
		case 4:
			quads++
		}
	}

	switch {
	case straight && flush && ranks[0] == 10:
		return RoyalFlush
	case straight && flush:
		return StraightFlush
	case quads == 1:
		return FourOfAKind
	case trips == 1 && pairs == 1:
		return FullHouse
	case flush:
		return Flush
	case straight:
		return Straight
	case trips == 1:
		return ThreeOfAKind
	case pairs == 2:
		return TwoPair
	case pairs == 1:
		return Pair
	default:
		return HighCard
	}
}

// PokerMultiplier is the payout factor on the escrowed bet. A 1x factor is a
// push; below a pair the bet is lost.
func PokerMultiplier(rank HandRank) float64 {
	switch rank {
	case RoyalFlush, StraightFlush:
		return 25
	case FourOfAKind:
		return 10
	case FullHouse:
		return 3
	case Flush, Straight:
		return 2
	case ThreeOfAKind, TwoPair:
		return 1
	default:
		return 0
	}
}
