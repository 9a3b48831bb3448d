package games

import "testing"

func TestSettleBlackjack(t *testing.T) {
	tenNine := []Card{{Rank: 10, Suit: 0}, {Rank: 9, Suit: 1}}          // 19
	tenEight := []Card{{Rank: 10, Suit: 0}, {Rank: 8, Suit: 1}}         // 18
	natural := []Card{{Rank: 14, Suit: 0}, {Rank: 13, Suit: 1}}         // 21, two cards
	bust := []Card{{Rank: 10, Suit: 0}, {Rank: 9, Suit: 1}, {Rank: 7, Suit: 2}} // 26
	threeCard21 := []Card{{Rank: 7, Suit: 0}, {Rank: 7, Suit: 1}, {Rank: 7, Suit: 2}}

	tests := []struct {
		name           string
		player, dealer []Card
		want           int64
	}{
		{"player busts", bust, tenEight, 0},
		{"player busts before dealer", bust, bust, 0},
		{"both naturals push", natural, natural, 100},
		{"player natural pays 3:2", natural, tenNine, 250},
		{"dealer natural wins", tenNine, natural, 0},
		{"three-card 21 loses to natural", threeCard21, natural, 0},
		{"dealer busts", tenNine, bust, 200},
		{"higher hand wins", tenNine, tenEight, 200},
		{"lower hand loses", tenEight, tenNine, 0},
		{"equal hands push", tenNine, tenNine, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SettleBlackjack(tt.player, tt.dealer, 100); got != tt.want {
				t.Fatalf("SettleBlackjack() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDealerPlayStandsOnSeventeen(t *testing.T) {
	dealer := []Card{{Rank: 10, Suit: 0}, {Rank: 7, Suit: 1}}
	deck := []Card{{Rank: 5, Suit: 2}, {Rank: 5, Suit: 3}}
	hand, rest := DealerPlay(dealer, deck)
	if len(hand) != 2 {
		t.Fatalf("dealer drew on 17: hand %v", hand)
	}
	if len(rest) != 2 {
		t.Fatalf("deck changed: %v", rest)
	}
}

func TestDealerPlayDrawsToSeventeen(t *testing.T) {
	dealer := []Card{{Rank: 5, Suit: 0}, {Rank: 6, Suit: 1}} // 11
	deck := []Card{{Rank: 2, Suit: 2}, {Rank: 4, Suit: 3}, {Rank: 9, Suit: 0}}
	hand, rest := DealerPlay(dealer, deck)
	if got := HandValue(hand); got < DealerStandsOn {
		t.Fatalf("dealer stopped at %d", got)
	}
	if len(hand) != 4 || len(rest) != 1 {
		t.Fatalf("hand %v rest %v", hand, rest)
	}
}
