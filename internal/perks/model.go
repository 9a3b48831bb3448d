package perks

import (
	"errors"
	"time"
)

const (
	PrestigeMinLevel    = 50
	PrestigeBonusPct    = 0.10
	BoosterCostPerHour  = int64(1000)
	BoosterMinHours     = 1
	BoosterMaxHours     = 24
	BoosterMoneyFactor  = 2.0
	BoosterXPFactor     = 2.0
	BoosterLuckBonus    = 0.10
)

var (
	ErrLevelTooLow     = errors.New("level too low to prestige")
	ErrBoosterActive   = errors.New("a booster of this kind is already active")
	ErrInvalidBooster  = errors.New("booster kind must be money, xp or luck")
	ErrTitleUnknown    = errors.New("unknown title")
	ErrTitleOwned      = errors.New("title already owned")
	ErrTitleNotOwned   = errors.New("title not owned")
	ErrTitleLevelGated = errors.New("level too low for this title")
)

type TitleSpec struct {
	Name     string `json:"name"`
	Cost     int64  `json:"cost"`
	MinLevel int    `json:"min_level"`
}

// Purchasable titles. Prestige titles are granted, not bought.
var TitleCatalog = []TitleSpec{
	{Name: "High Roller", Cost: 5000, MinLevel: 10},
	{Name: "Tycoon", Cost: 25000, MinLevel: 25},
	{Name: "Kingpin", Cost: 100000, MinLevel: 40},
	{Name: "Legend", Cost: 500000, MinLevel: 60},
}

type Booster struct {
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Profile struct {
	UserID        string    `json:"user_id"`
	Prestige      int       `json:"prestige"`
	EarningsBonus float64   `json:"earnings_bonus"`
	Boosters      []Booster `json:"boosters"`
	Titles        []string  `json:"titles"`
	EquippedTitle string    `json:"equipped_title,omitempty"`
}

func TitleByName(name string) (TitleSpec, bool) {
	for _, t := range TitleCatalog {
		if t.Name == name {
			return t, true
		}
	}
	return TitleSpec{}, false
}

func ValidBoosterKind(kind string) bool {
	return kind == "money" || kind == "xp" || kind == "luck"
}

// PrestigeMultiplier is the permanent earnings factor for a prestige tier.
func PrestigeMultiplier(tier int) float64 {
	if tier < 0 {
		tier = 0
	}
	return 1.0 + PrestigeBonusPct*float64(tier)
}

func BoosterCost(hours int) int64 {
	return BoosterCostPerHour * int64(hours)
}
