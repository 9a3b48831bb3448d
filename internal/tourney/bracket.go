package tourney

import "guildmint/internal/rng"

// RunBracket plays a single-elimination coin-flip bracket and returns the
// final standings, winner first. With an odd field one player gets a bye
// each round. Players knocked out in later rounds place higher.
func RunBracket(players []string, r *rng.Rand) []string {
	remaining := make([]string, len(players))
	copy(remaining, players)
	r.Shuffle(len(remaining), func(i, j int) {
		remaining[i], remaining[j] = remaining[j], remaining[i]
	})

	var eliminated []string
	for len(remaining) > 1 {
		var next []string
		i := 0
		if len(remaining)%2 == 1 {
			// Bye for the first seed this round.
			next = append(next, remaining[0])
			i = 1
		}
		for ; i+1 < len(remaining); i += 2 {
			a, b := remaining[i], remaining[i+1]
			if r.Intn(2) == 0 {
				a, b = b, a
			}
			next = append(next, a)
			eliminated = append(eliminated, b)
		}
		remaining = next
	}

	standings := make([]string, 0, len(players))
	standings = append(standings, remaining[0])
	for i := len(eliminated) - 1; i >= 0; i-- {
		standings = append(standings, eliminated[i])
	}
	return standings
}
