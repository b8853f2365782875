package backfill

import (
	"context"
	"testing"
	"time"

	activityEntity "FPKProgress/internal/modules/activity/domain/entity"
	activityPersistence "FPKProgress/internal/modules/activity/infrastructure/persistence"
	goalEntity "FPKProgress/internal/modules/goal/domain/entity"
	goalPersistence "FPKProgress/internal/modules/goal/infrastructure/persistence"
	"FPKProgress/internal/modules/xp/application/dto/request"
	"FPKProgress/internal/modules/xp/application/service"
	"FPKProgress/internal/modules/xp/domain/entity"
	xpPersistence "FPKProgress/internal/modules/xp/infrastructure/persistence"
	"FPKProgress/internal/testutil"
	"FPKProgress/pkg/actor"
)

func TestSourcesBackfillEveryCategory(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	flashcards := activityPersistence.NewFlashcardRepository(db)
	studies := activityPersistence.NewStudySessionRepository(db)
	notes := activityPersistence.NewNoteRepository(db)
	readings := activityPersistence.NewReadingSessionRepository(db)
	uploads := activityPersistence.NewFileUploadRepository(db)
	goals := goalPersistence.NewGoalRepository(db)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	must(flashcards.Create(ctx, &activityEntity.Flashcard{FlashcardId: "FC0000000000000000A1", UserId: "u1", Front: "q", Back: "a", CreatedAt: at}))
	done := at.Add(4 * time.Minute)
	must(studies.Create(ctx, &activityEntity.StudySession{SessionId: "SS0000000000000000A1", UserId: "u1", CorrectAnswers: 10, TotalCards: 10, DurationSeconds: 240, StartedAt: at, CompletedAt: &done, CreatedAt: at}))
	must(studies.Create(ctx, &activityEntity.StudySession{SessionId: "SS0000000000000000A2", UserId: "u1", CorrectAnswers: 3, TotalCards: 10, DurationSeconds: 900, StartedAt: at, CreatedAt: at}))
	must(notes.Create(ctx, &activityEntity.Note{NoteId: "NO0000000000000000A1", UserId: "u1", Title: "ch1", CreatedAt: at}))
	must(readings.Create(ctx, &activityEntity.ReadingSession{SessionId: "RS0000000000000000A1", UserId: "u1", DurationSeconds: 1800, PagesRead: 3, SessionStart: at, SessionEnd: at.Add(30 * time.Minute), CreatedAt: at}))
	must(uploads.Create(ctx, &activityEntity.FileUpload{UploadId: "FU0000000000000000A1", UserId: "u1", FileName: "a.pdf", ProcessingStatus: activityEntity.UploadStatusCompleted, CreatedAt: at, UpdatedAt: at}))
	must(uploads.Create(ctx, &activityEntity.FileUpload{UploadId: "FU0000000000000000A2", UserId: "u2", FileName: "b.pdf", ProcessingStatus: activityEntity.UploadStatusPending, CreatedAt: at, UpdatedAt: at}))
	completed := at.Add(time.Hour)
	must(goals.Create(ctx, &goalEntity.Goal{GoalId: "GL0000000000000000A1", UserId: "u1", Title: "g", Category: goalEntity.CategoryOther, Priority: goalEntity.PriorityHigh, Progress: 100, Status: goalEntity.StatusCompleted, CompletedAt: &completed, Version: 2, CreatedAt: at, UpdatedAt: completed}))
	must(goals.Create(ctx, &goalEntity.Goal{GoalId: "GL0000000000000000A2", UserId: "u3", Title: "open", Category: goalEntity.CategoryOther, Priority: goalEntity.PriorityLow, Status: goalEntity.StatusActive, Version: 1, CreatedAt: at, UpdatedAt: at}))

	sources := Sources(flashcards, studies, notes, goals, readings, uploads)
	stores := xpPersistence.NewXPStores(db)
	events := stores.Events
	must(stores.Badges.EnsureCatalog(ctx, entity.DefaultBadges()))
	svc := service.NewXPService(stores, xpPersistence.NewXPUnitOfWork(db, nil), xpPersistence.NewBackfillJobRepository(db), sources, nil, service.Options{})

	res, err := svc.Backfill(ctx, actor.New("u1", "", ""), request.BackfillRequest{})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	want := map[string]int{
		entity.SourceFlashcard:      5,
		entity.SourceStudySession:   20,
		entity.SourceNote:           10,
		entity.SourceGoal:           50,
		entity.SourceReadingSession: 21,
		entity.SourceFileUpload:     15,
	}
	for cat, xp := range want {
		got := res.ByCategory[cat]
		if got.Events != 1 || got.XP != xp {
			t.Fatalf("%s: got %+v want 1 event / %d xp", cat, got, xp)
		}
	}
	if res.AfterXP != 121 || res.AfterLevel != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// 1 张卡片、1 个完成的目标、30 分钟阅读；回填授予徽章但不发徽章经验
	if len(res.BadgesAwarded) != 2 || res.BadgesAwarded[0] != "First Card" || res.BadgesAwarded[1] != "Goal Getter" {
		t.Fatalf("unexpected badges: %v", res.BadgesAwarded)
	}
	again, err := svc.Backfill(ctx, actor.New("u1", "", ""), request.BackfillRequest{})
	if err != nil || again.EventsCreated != 0 || len(again.BadgesAwarded) != 0 || again.AfterXP != 121 {
		t.Fatalf("second backfill must be a no-op: %+v %v", again, err)
	}

	keys, err := events.SourceKeysByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("source keys: %v", err)
	}
	for _, k := range []string{"flashcard_FC0000000000000000A1", "study_session_SS0000000000000000A1", "goal_GL0000000000000000A1", "file_upload_FU0000000000000000A1"} {
		if _, ok := keys[k]; !ok {
			t.Fatalf("missing source key %s in %v", k, keys)
		}
	}

	// u2 只有未完成的上传，u3 只有进行中的目标
	all, err := svc.BackfillAll(ctx, actor.New("a1", "", actor.RoleAdmin), request.BackfillAllRequest{DryRun: true})
	if err != nil {
		t.Fatalf("backfill all: %v", err)
	}
	if all.UsersTotal != 1 || all.Events != 0 {
		t.Fatalf("unexpected backfill all: %+v", all)
	}
}
