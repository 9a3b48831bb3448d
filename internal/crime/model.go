package crime

import (
	"errors"
	"math"
	"time"
)

const (
	RobSuccessChance = 0.40
	RobMinCutPct     = 10
	RobMaxCutPct     = 30
	RobFinePct       = 20
	RobCooldown      = 8 * time.Hour
	RobVictimFloor   = int64(1000)

	BailPerHour = int64(500)
)

var (
	ErrJailed        = errors.New("you are in jail")
	ErrNotJailed     = errors.New("not in jail")
	ErrRobCooldown   = errors.New("rob cooldown active")
	ErrVictimTooPoor = errors.New("victim does not have enough to rob")
	ErrUnknownTier   = errors.New("unknown crime tier")
	ErrSelfTarget    = errors.New("cannot target yourself")
)

type Tier struct {
	Name      string        `json:"name"`
	Success   float64       `json:"success"`
	MinReward int64         `json:"min_reward"`
	MaxReward int64         `json:"max_reward"`
	JailTerm  time.Duration `json:"jail_term"`
}

var Tiers = []Tier{
	{Name: "petty", Success: 0.70, MinReward: 50, MaxReward: 200, JailTerm: time.Hour},
	{Name: "burglary", Success: 0.50, MinReward: 300, MaxReward: 800, JailTerm: 3 * time.Hour},
	{Name: "heist", Success: 0.30, MinReward: 1000, MaxReward: 3000, JailTerm: 6 * time.Hour},
}

// A failed robbery costs a fine only; jail is reserved for crime tiers.
type RobResult struct {
	Success bool  `json:"success"`
	Amount  int64 `json:"amount"`
	Fine    int64 `json:"fine"`
}

type CrimeResult struct {
	Tier      string `json:"tier"`
	Success   bool   `json:"success"`
	Reward    int64  `json:"reward"`
	JailHours int    `json:"jail_hours,omitempty"`
}

type Status struct {
	Jailed     bool       `json:"jailed"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	BailCost   int64      `json:"bail_cost,omitempty"`
	NextRobAt  *time.Time `json:"next_rob_at,omitempty"`
}

func TierByName(name string) (Tier, error) {
	for _, t := range Tiers {
		if t.Name == name {
			return t, nil
		}
	}
	return Tier{}, ErrUnknownTier
}

// BailCost charges 500 per hour of remaining sentence, floored, so a partial
// hour costs its fraction rather than a full hour.
func BailCost(remaining time.Duration) int64 {
	if remaining <= 0 {
		return 0
	}
	return int64(math.Floor(remaining.Hours() * float64(BailPerHour)))
}

// Fine is the percentage cut of a balance, floored.
func Fine(balance int64, pct int64) int64 {
	if balance <= 0 || pct <= 0 {
		return 0
	}
	return balance * pct / 100
}
