package entity

import (
	"math"
	"reflect"
	"testing"
)

func TestProgressFromRatio(t *testing.T) {
	cases := []struct {
		name          string
		value, target float64
		want          int
	}{
		{"zero", 0, 420, 0},
		{"half", 210, 420, 50},
		{"rounds half up", 2.5, 100, 3},
		{"rounds to nearest", 104, 420, 25},
		{"overshoot clamps", 900, 420, 100},
		{"negative", -30, 420, 0},
		{"nan value", math.NaN(), 420, 0},
		{"inf value", math.Inf(1), 420, 100},
		{"neg inf value", math.Inf(-1), 420, 0},
		{"zero target", 10, 0, 0},
		{"nan target", 10, math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := ProgressFromRatio(tc.value, tc.target); got != tc.want {
			t.Fatalf("%s: ProgressFromRatio(%v, %v)=%d want %d", tc.name, tc.value, tc.target, got, tc.want)
		}
	}
}

func TestClampProgress(t *testing.T) {
	for in, want := range map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 250: 100} {
		if got := ClampProgress(in); got != want {
			t.Fatalf("ClampProgress(%d)=%d want %d", in, got, want)
		}
	}
}

func TestCrossedMilestones(t *testing.T) {
	cases := []struct {
		from, to int
		want     []int
	}{
		{0, 24, nil},
		{0, 25, []int{25}},
		{24, 60, []int{25, 50}},
		{25, 49, nil},
		{10, 100, []int{25, 50, 75, 100}},
		{75, 100, []int{100}},
		{80, 40, nil},
	}
	for _, tc := range cases {
		got := CrossedMilestones(tc.from, tc.to)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("CrossedMilestones(%d, %d)=%v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestEnums(t *testing.T) {
	if !ValidCategory(CategoryReading) || ValidCategory("fitness") {
		t.Fatalf("category validation broken")
	}
	if !ValidPriority(PriorityHigh) || ValidPriority("urgent") {
		t.Fatalf("priority validation broken")
	}
}
