package levels

import "testing"

func TestXPForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{1, 155},
		{2, 220},
		{10, 1100},
		{50, 15100},
	}
	for _, tt := range tests {
		if got := XPForLevel(tt.level); got != tt.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelReward(t *testing.T) {
	if got := LevelReward(10); got != 700 {
		t.Fatalf("LevelReward(10) = %d, want 700", got)
	}
	if got := LevelReward(50); got != 2700 {
		t.Fatalf("LevelReward(50) = %d, want 2700", got)
	}
	if got := LevelReward(11); got != 0 {
		t.Fatalf("LevelReward(11) = %d, want 0", got)
	}
	if got := LevelReward(9); got != 0 {
		t.Fatalf("LevelReward(9) = %d, want 0", got)
	}
}

func TestApplyXPSingleLevel(t *testing.T) {
	level, xp, reached := applyXP(1, 100, 60)
	if level != 2 || xp != 5 {
		t.Fatalf("got level %d xp %d", level, xp)
	}
	if len(reached) != 1 || reached[0] != 2 {
		t.Fatalf("reached = %v", reached)
	}
}

func TestApplyXPNoLevel(t *testing.T) {
	level, xp, reached := applyXP(1, 0, 154)
	if level != 1 || xp != 154 || reached != nil {
		t.Fatalf("got level %d xp %d reached %v", level, xp, reached)
	}
}

func TestApplyXPMultiLevelCarry(t *testing.T) {
	// 155 + 220 = 375 clears levels 1 and 2 exactly.
	level, xp, reached := applyXP(1, 0, 400)
	if level != 3 || xp != 25 {
		t.Fatalf("got level %d xp %d", level, xp)
	}
	if len(reached) != 2 || reached[0] != 2 || reached[1] != 3 {
		t.Fatalf("reached = %v", reached)
	}
}
