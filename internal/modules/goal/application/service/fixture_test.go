package service

import (
	"context"
	"testing"
	"time"

	activityEntity "FPKProgress/internal/modules/activity/domain/entity"
	activityRepository "FPKProgress/internal/modules/activity/domain/repository"
	activityPersistence "FPKProgress/internal/modules/activity/infrastructure/persistence"
	"FPKProgress/internal/modules/goal/domain/entity"
	"FPKProgress/internal/modules/goal/domain/repository"
	goalPersistence "FPKProgress/internal/modules/goal/infrastructure/persistence"
	"FPKProgress/internal/modules/goal/infrastructure/source"
	notificationEntity "FPKProgress/internal/modules/notification/domain/entity"
	xpEntity "FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/testutil"
	"FPKProgress/pkg/util"

	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	goals    repository.GoalRepository
	uow      repository.GoalUnitOfWork
	reading  activityRepository.ReadingSessionRepository
	study    activityRepository.StudySessionRepository
	sources  []ActivitySource
	opts     ProgressOptions
	progress ProgressService
	goalSvc  GoalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:      db,
		goals:   goalPersistence.NewGoalRepository(db),
		uow:     goalPersistence.NewGoalUnitOfWork(db, "fpk.notification"),
		reading: activityPersistence.NewReadingSessionRepository(db),
		study:   activityPersistence.NewStudySessionRepository(db),
		opts: ProgressOptions{
			Window:      7 * 24 * time.Hour,
			MaxAttempts: 3,
			Now:         func() time.Time { return testNow },
		},
	}
	f.sources = []ActivitySource{
		source.NewReadingSource(f.reading, 420),
		source.NewStudySource(f.study, 300),
	}
	f.progress = NewProgressService(f.goals, f.uow, f.sources, f.opts)
	f.goalSvc = NewGoalService(f.goals, f.uow, f.progress, f.opts)
	return f
}

func (f *fixture) addGoal(t *testing.T, userID, category string, progress int) *entity.Goal {
	t.Helper()
	g := &entity.Goal{
		GoalId:    util.GenerateID("GL"),
		UserId:    userID,
		Title:     "Goal " + category,
		Category:  category,
		Priority:  entity.PriorityMedium,
		Progress:  progress,
		Status:    entity.StatusActive,
		Version:   1,
		CreatedAt: testNow.Add(-24 * time.Hour),
		UpdatedAt: testNow.Add(-24 * time.Hour),
	}
	if err := f.goals.Create(context.Background(), g); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return g
}

func (f *fixture) addReading(t *testing.T, userID string, minutes int, ago time.Duration) {
	t.Helper()
	end := testNow.Add(-ago)
	rs := &activityEntity.ReadingSession{
		SessionId:       util.GenerateID("RS"),
		UserId:          userID,
		DurationSeconds: minutes * 60,
		SessionStart:    end.Add(-time.Duration(minutes) * time.Minute),
		SessionEnd:      end,
		CreatedAt:       end,
	}
	if err := f.reading.Create(context.Background(), rs); err != nil {
		t.Fatalf("create reading: %v", err)
	}
}

func (f *fixture) reload(t *testing.T, goalID string) *entity.Goal {
	t.Helper()
	g, err := f.goals.GetByGoalID(context.Background(), goalID)
	if err != nil || g == nil {
		t.Fatalf("reload goal %s: %v %v", goalID, g, err)
	}
	return g
}

func (f *fixture) notifications(t *testing.T, userID, typ string) []notificationEntity.Notification {
	t.Helper()
	var rows []notificationEntity.Notification
	if err := f.db.Where("user_id = ? AND type = ?", userID, typ).Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("query notifications: %v", err)
	}
	return rows
}

func (f *fixture) outboxCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&notificationEntity.OutboxEvent{}).Count(&n).Error; err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	return n
}

func (f *fixture) xpEvents(t *testing.T, userID string) []xpEntity.XPEvent {
	t.Helper()
	var rows []xpEntity.XPEvent
	if err := f.db.Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("query xp events: %v", err)
	}
	return rows
}
