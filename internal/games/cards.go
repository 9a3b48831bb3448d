package games

import "guildmint/internal/rng"

// Card ranks run 2..14 with 11..14 as jack, queen, king, ace.
type Card struct {
	Rank int `json:"r"`
	Suit int `json:"s"`
}

func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for suit := 0; suit < 4; suit++ {
		for rank := 2; rank <= 14; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

func ShuffledDeck(r *rng.Rand) []Card {
	deck := NewDeck()
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

func drawCard(deck []Card) (Card, []Card) {
	return deck[0], deck[1:]
}

// HandValue is the best blackjack value: aces count 11 unless that busts.
func HandValue(hand []Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		switch {
		case c.Rank == 14:
			total += 11
			aces++
		case c.Rank > 10:
			total += 10
		default:
			total += c.Rank
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural is a two-card 21.
func IsNatural(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

func cardLabel(c Card) string {
	ranks := map[int]string{11: "J", 12: "Q", 13: "K", 14: "A"}
	suits := []string{"♠", "♥", "♦", "♣"}
	r, ok := ranks[c.Rank]
	if !ok {
		r = itoa(c.Rank)
	}
	if c.Suit < 0 || c.Suit > 3 {
		return r + "?"
	}
	return r + suits[c.Suit]
}

func itoa(n int) string {
	if n == 10 {
		return "10"
	}
	return string(rune('0' + n))
}

func labels(hand []Card) []string {
	out := make([]string, len(hand))
	for i, c := range hand {
		out[i] = cardLabel(c)
	}
	return out
}
