package entity

import "testing"

func TestComputeLevelBreakpoints(t *testing.T) {
	cases := []struct {
		total     int
		level     int
		nextLevel int
	}{
		{-10, 1, 100},
		{0, 1, 100},
		{99, 1, 100},
		{100, 2, 250},
		{249, 2, 250},
		{250, 3, 450},
		{1000, 6, 1400},
		{10999, 15, 11000},
		{11000, 16, 11000},
		{50000, 16, 11000},
	}
	for _, tc := range cases {
		got := ComputeLevel(tc.total)
		if got.Level != tc.level || got.NextLevelXP != tc.nextLevel {
			t.Fatalf("ComputeLevel(%d) = level %d next %d, want level %d next %d", tc.total, got.Level, got.NextLevelXP, tc.level, tc.nextLevel)
		}
	}
	if !ComputeLevel(11000).MaxLevel || ComputeLevel(10999).MaxLevel {
		t.Fatalf("max level flag wrong")
	}
}

func TestComputeLevelIsMonotonic(t *testing.T) {
	prev := ComputeLevel(0).Level
	for total := 1; total <= 12000; total++ {
		lv := ComputeLevel(total).Level
		if lv < prev {
			t.Fatalf("level decreased at %d: %d -> %d", total, prev, lv)
		}
		prev = lv
	}
	if prev != MaxLevel() {
		t.Fatalf("expected to reach max level %d, got %d", MaxLevel(), prev)
	}
}

func TestXPRules(t *testing.T) {
	cases := []struct {
		name string
		got  int
		want int
	}{
		{"study minimum", StudySessionXP(3, 10, 900), 5},
		{"study perfect fast", StudySessionXP(20, 20, 120), 10 + 10 + 5},
		{"study perfect slow", StudySessionXP(10, 10, 600), 5 + 10},
		{"study partial", StudySessionXP(25, 30, 600), 10},
		{"reading minimum", ReadingSessionXP(60, 0), 5},
		{"reading time and pages", ReadingSessionXP(1800, 4), 15 + 8},
		{"goal high", GoalCompletedXP("high"), 50},
		{"goal medium", GoalCompletedXP("medium"), 40},
		{"goal low", GoalCompletedXP("low"), 30},
		{"goal unknown", GoalCompletedXP(""), 30},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, tc.got, tc.want)
		}
	}
	if SourceKey(SourceGoal, "GL1") != "goal_GL1" {
		t.Fatalf("unexpected source key")
	}
}
