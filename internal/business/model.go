package business

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxPerOwner      = 3
	MaxEmployees     = 5
	MaxLevel         = 10
	EmployeeBonusPct = 0.10
	LevelBonusPct    = 0.25
	CollectMinHours  = 0.1
	CollectCapHours  = 24.0
	SellRefundPct    = 0.50
)

var (
	ErrUnknownKind      = errors.New("unknown business kind")
	ErrLevelGated       = errors.New("level too low for this business")
	ErrTooMany          = errors.New("business limit reached")
	ErrNotOwner         = errors.New("business not found or not yours")
	ErrMaxLevel         = errors.New("business is at max level")
	ErrMaxEmployees     = errors.New("employee limit reached")
	ErrNoEmployees      = errors.New("no employees to fire")
	ErrNothingToCollect = errors.New("nothing to collect yet")
)

type Kind struct {
	Name          string `json:"name"`
	Cost          int64  `json:"cost"`
	IncomePerHour int64  `json:"income_per_hour"`
	MinLevel      int    `json:"min_level"`
}

var Kinds = []Kind{
	{Name: "shop", Cost: 10000, IncomePerHour: 100, MinLevel: 1},
	{Name: "restaurant", Cost: 25000, IncomePerHour: 150, MinLevel: 10},
	{Name: "casino", Cost: 50000, IncomePerHour: 200, MinLevel: 20},
	{Name: "corporation", Cost: 100000, IncomePerHour: 300, MinLevel: 30},
}

type Business struct {
	ID              int64     `json:"id"`
	OwnerUserID     string    `json:"owner_user_id"`
	Kind            string    `json:"kind"`
	Level           int       `json:"level"`
	Employees       int       `json:"employees"`
	Invested        int64     `json:"invested"`
	IncomePerHour   int64     `json:"income_per_hour"`
	LastCollectedAt time.Time `json:"last_collected_at"`
	CreatedAt       time.Time `json:"created_at"`
}

type CollectResult struct {
	BusinessID int64 `json:"business_id"`
	Amount     int64 `json:"amount"`
}

func KindByName(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.Name == name {
			return k, nil
		}
	}
	return Kind{}, ErrUnknownKind
}

// IncomePerHour applies the employee and level bonuses to the base rate.
func IncomePerHour(base int64, employees, level int) int64 {
	if base <= 0 {
		return 0
	}
	mult := decimal.NewFromFloat(1 + EmployeeBonusPct*float64(employees)).
		Mul(decimal.NewFromFloat(1 + LevelBonusPct*float64(level-1)))
	return decimal.NewFromInt(base).Mul(mult).Floor().IntPart()
}

// UpgradeCost scales with the level being bought.
func UpgradeCost(baseCost int64, nextLevel int) int64 {
	return decimal.NewFromInt(baseCost).
		Mul(decimal.NewFromFloat(0.5)).
		Mul(decimal.NewFromInt(int64(nextLevel))).
		Floor().IntPart()
}

// HireCost grows with headcount: 1000, 2000, ...
func HireCost(currentEmployees int) int64 {
	return 1000 * int64(currentEmployees+1)
}

// SellRefund returns half of everything sunk into the business.
func SellRefund(invested int64) int64 {
	if invested <= 0 {
		return 0
	}
	return decimal.NewFromInt(invested).
		Mul(decimal.NewFromFloat(SellRefundPct)).
		Floor().IntPart()
}
