package source

import (
	"context"
	"math"
	"testing"
	"time"

	"FPKProgress/internal/modules/activity/domain/entity"
	"FPKProgress/internal/modules/activity/infrastructure/persistence"
	"FPKProgress/internal/testutil"
	"FPKProgress/pkg/util"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func TestReadingSourceSumsMinutesInWindow(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := persistence.NewReadingSessionRepository(db)

	add := func(user string, seconds int, end time.Time) {
		rs := &entity.ReadingSession{
			SessionId:       util.GenerateID("RS"),
			UserId:          user,
			DurationSeconds: seconds,
			SessionStart:    end.Add(-time.Duration(seconds) * time.Second),
			SessionEnd:      end,
			CreatedAt:       end,
		}
		if err := repo.Create(ctx, rs); err != nil {
			t.Fatalf("create reading: %v", err)
		}
	}
	add("u1", 1800, now.Add(-time.Hour))
	add("u1", 600, now.Add(-48*time.Hour))
	add("u1", 3600, now.Add(-8*24*time.Hour))
	add("u2", 3600, now.Add(-time.Hour))

	src := NewReadingSource(repo, 420)
	if src.Category() != "reading" || src.Target() != 420 {
		t.Fatalf("unexpected source meta")
	}
	value, records, err := src.Measure(ctx, "u1", now.Add(-7*24*time.Hour), now)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if records != 2 || value != 40 {
		t.Fatalf("value=%v records=%d", value, records)
	}

	value, records, err = src.Measure(ctx, "nobody", now.Add(-7*24*time.Hour), now)
	if err != nil || records != 0 || value != 0 {
		t.Fatalf("empty user: value=%v records=%d err=%v", value, records, err)
	}
}

func TestStudySourceWeightsByAccuracy(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := persistence.NewStudySessionRepository(db)

	add := func(correct, total, seconds int, completed *time.Time) {
		ss := &entity.StudySession{
			SessionId:       util.GenerateID("SS"),
			UserId:          "u1",
			CorrectAnswers:  correct,
			TotalCards:      total,
			DurationSeconds: seconds,
			StartedAt:       now.Add(-2 * time.Hour),
			CompletedAt:     completed,
			CreatedAt:       now.Add(-2 * time.Hour),
		}
		if err := repo.Create(ctx, ss); err != nil {
			t.Fatalf("create study: %v", err)
		}
	}
	done := now.Add(-time.Hour)
	old := now.Add(-10 * 24 * time.Hour)
	add(8, 10, 3600, &done) // 48
	add(0, 0, 600, &done)   // 10，没有卡片时按原始分钟
	add(10, 10, 1200, nil)  // 未完成
	add(10, 10, 1200, &old) // 窗口外

	src := NewStudySource(repo, 300)
	value, records, err := src.Measure(ctx, "u1", now.Add(-7*24*time.Hour), now)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if records != 2 || math.Abs(value-58) > 1e-9 {
		t.Fatalf("value=%v records=%d", value, records)
	}
}
