package games

import (
	"testing"

	"guildmint/internal/rng"
)

func TestHandValue(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want int
	}{
		{"simple", []Card{{Rank: 5, Suit: 0}, {Rank: 9, Suit: 1}}, 14},
		{"faces count ten", []Card{{Rank: 13, Suit: 0}, {Rank: 12, Suit: 1}}, 20},
		{"soft ace", []Card{{Rank: 14, Suit: 0}, {Rank: 6, Suit: 1}}, 17},
		{"ace drops to one", []Card{{Rank: 14, Suit: 0}, {Rank: 9, Suit: 1}, {Rank: 5, Suit: 2}}, 15},
		{"two aces", []Card{{Rank: 14, Suit: 0}, {Rank: 14, Suit: 1}}, 12},
		{"natural", []Card{{Rank: 14, Suit: 0}, {Rank: 13, Suit: 1}}, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandValue(tt.hand); got != tt.want {
				t.Fatalf("HandValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsNatural(t *testing.T) {
	if !IsNatural([]Card{{Rank: 14, Suit: 0}, {Rank: 10, Suit: 1}}) {
		t.Fatal("ace + ten should be a natural")
	}
	if IsNatural([]Card{{Rank: 14, Suit: 0}, {Rank: 6, Suit: 1}, {Rank: 4, Suit: 2}}) {
		t.Fatal("three-card 21 is not a natural")
	}
	if IsNatural([]Card{{Rank: 10, Suit: 0}, {Rank: 9, Suit: 1}}) {
		t.Fatal("19 is not a natural")
	}
}

func TestShuffledDeckIsComplete(t *testing.T) {
	deck := ShuffledDeck(rng.New(42))
	if len(deck) != 52 {
		t.Fatalf("deck has %d cards, want 52", len(deck))
	}
	seen := map[Card]bool{}
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %v", c)
		}
		seen[c] = true
	}
}

func TestCardLabel(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{Card{Rank: 2, Suit: 0}, "2♠"},
		{Card{Rank: 10, Suit: 1}, "10♥"},
		{Card{Rank: 11, Suit: 2}, "J♦"},
		{Card{Rank: 14, Suit: 3}, "A♣"},
	}
	for _, tt := range tests {
		if got := cardLabel(tt.card); got != tt.want {
			t.Errorf("cardLabel(%v) = %q, want %q", tt.card, got, tt.want)
		}
	}
}
