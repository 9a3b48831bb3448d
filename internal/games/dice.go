package games

const (
	DiceMinBet   = int64(10)
	DiceMinGuess = 2
	DiceMaxGuess = 12
)

// DiceMultiplier pays 10x on an exact call, 3x one off, 1.5x two off.
func DiceMultiplier(guess, roll int) float64 {
	diff := guess - roll
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 10
	case 1:
		return 3
	case 2:
		return 1.5
	default:
		return 0
	}
}
