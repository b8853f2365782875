package entity

import "testing"

func TestBadgeEarned(t *testing.T) {
	cases := []struct {
		name  string
		badge Badge
		m     BadgeMetrics
		want  bool
	}{
		{"flashcard reached", Badge{CriteriaType: CriteriaFlashcardCreated, Threshold: 1}, BadgeMetrics{Flashcards: 1}, true},
		{"flashcard short", Badge{CriteriaType: CriteriaFlashcardCreated, Threshold: 50}, BadgeMetrics{Flashcards: 49}, false},
		{"goals reached", Badge{CriteriaType: CriteriaGoalCompleted, Threshold: 1}, BadgeMetrics{GoalsCompleted: 2}, true},
		{"reading in hours", Badge{CriteriaType: CriteriaReadingTime, Threshold: 1.5}, BadgeMetrics{ReadingSeconds: 5400}, true},
		{"reading short", Badge{CriteriaType: CriteriaReadingTime, Threshold: 1.5}, BadgeMetrics{ReadingSeconds: 5399}, false},
		{"unknown criteria", Badge{CriteriaType: "study_streak", Threshold: 1}, BadgeMetrics{Flashcards: 100}, false},
		{"zero threshold", Badge{CriteriaType: CriteriaFlashcardCreated}, BadgeMetrics{}, false},
	}
	for _, tc := range cases {
		if got := tc.badge.Earned(tc.m); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}

	seen := map[string]bool{}
	for _, b := range DefaultBadges() {
		if seen[b.BadgeId] || b.Threshold <= 0 {
			t.Fatalf("bad default badge %+v", b)
		}
		seen[b.BadgeId] = true
	}
}
