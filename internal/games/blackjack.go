package games

const (
	BlackjackMinBet   = int64(10)
	DealerStandsOn    = 17
	NaturalPayoutRate = 1.5
)

// DealerPlay draws until the dealer reaches 17, returning the final hand and
// remaining deck.
func DealerPlay(dealer, deck []Card) ([]Card, []Card) {
	for HandValue(dealer) < DealerStandsOn && len(deck) > 0 {
		var c Card
		c, deck = drawCard(deck)
		dealer = append(dealer, c)
	}
	return dealer, deck
}

// SettleBlackjack returns the wallet credit for an escrowed bet: 0 on loss,
// bet on push, 2x on a win, 2.5x on a natural.
func SettleBlackjack(player, dealer []Card, bet int64) int64 {
	pv, dv := HandValue(player), HandValue(dealer)
	pNat, dNat := IsNatural(player), IsNatural(dealer)
	switch {
	case pv > 21:
		return 0
	case pNat && dNat:
		return bet
	case pNat:
		return bet + int64(NaturalPayoutRate*float64(bet))
	case dNat:
		return 0
	case dv > 21:
		return 2 * bet
	case pv > dv:
		return 2 * bet
	case pv == dv:
		return bet
	default:
		return 0
	}
}
