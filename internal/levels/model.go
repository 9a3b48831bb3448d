package levels

import (
	"errors"
	"time"
)

const (
	MessageXPMin      = 15
	MessageXPMax      = 25
	MessageCooldown   = 30 * time.Second
	ReactionXP        = 5
	ReactionHourlyCap = 10
	VoiceXPPerBlock   = 10
	VoiceBlock        = 5 * time.Minute
	DailyXPMin        = 200
	DailyXPMax        = 400
	DailyCooldown     = 24 * time.Hour
	ServerBoosterRate = 1.2
	RewardEveryLevels = 10
)

// MilestoneRewards pays a one-time coin bonus at landmark levels.
var MilestoneRewards = map[int]int64{
	10:  500,
	25:  1000,
	50:  2500,
	75:  5000,
	100: 10000,
}

var ErrDailyClaimed = errors.New("daily bonus already claimed")

type Progress struct {
	UserID        string `json:"user_id"`
	Level         int    `json:"level"`
	XP            int64  `json:"xp"`
	NextLevelXP   int64  `json:"next_level_xp"`
	Messages      int64  `json:"messages"`
	ServerBooster bool   `json:"server_booster"`
}

type AwardResult struct {
	XPGained    int64   `json:"xp_gained"`
	Level       int     `json:"level"`
	LeveledUp   bool    `json:"leveled_up"`
	CoinsEarned int64   `json:"coins_earned"`
	NewLevels   []int   `json:"new_levels,omitempty"`
}

type RankedRow struct {
	UserID string `json:"user_id"`
	Level  int    `json:"level"`
	XP     int64  `json:"xp"`
	Rank   int    `json:"rank"`
}

// XPForLevel is the XP needed to advance from the given level to the next.
func XPForLevel(level int) int64 {
	l := int64(level)
	return 5*l*l + 50*l + 100
}

// LevelReward is the coin bonus paid on reaching the level, zero for levels
// that are not a multiple of ten.
func LevelReward(level int) int64 {
	if level%RewardEveryLevels != 0 {
		return 0
	}
	return int64(level)*50 + 200
}

// applyXP folds gained XP into (level, xp), carrying overflow through
// multiple level-ups. Returns the levels newly reached.
func applyXP(level int, xp, gained int64) (int, int64, []int) {
	xp += gained
	var reached []int
	for xp >= XPForLevel(level) {
		xp -= XPForLevel(level)
		level++
		reached = append(reached, level)
	}
	return level, xp, reached
}
