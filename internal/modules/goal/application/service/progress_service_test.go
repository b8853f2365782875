package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	activityEntity "FPKProgress/internal/modules/activity/domain/entity"
	"FPKProgress/internal/modules/goal/application/dto/request"
	"FPKProgress/internal/modules/goal/application/dto/respond"
	"FPKProgress/internal/modules/goal/domain/entity"
	notificationEntity "FPKProgress/internal/modules/notification/domain/entity"
	xpEntity "FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/pkg/actor"

	"gorm.io/gorm"
)

func TestRecomputeFiresMilestonesOncePerCrossing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGoal(t, "u1", entity.CategoryReading, 0)

	f.addReading(t, "u1", 210, time.Hour)
	out, err := f.progress.RecomputeGoal(ctx, g)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if out.Result != respond.OutcomeUpdated || out.From != 0 || out.To != 50 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if !reflect.DeepEqual(out.Milestones, []int{25, 50}) {
		t.Fatalf("milestones=%v", out.Milestones)
	}
	got := f.reload(t, g.GoalId)
	if got.Progress != 50 || got.Status != entity.StatusActive || got.Version != 2 {
		t.Fatalf("unexpected goal after recompute: %+v", got)
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalMilestone)); n != 2 {
		t.Fatalf("expected 2 milestone notifications, got %d", n)
	}
	if f.outboxCount(t) != 2 {
		t.Fatalf("expected 2 outbox rows")
	}

	// 62%，没有新的里程碑
	f.addReading(t, "u1", 50, 2*time.Hour)
	out, err = f.progress.RecomputeGoal(ctx, got)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if out.To != 62 || len(out.Milestones) != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	// 数据不变再算一次，不写库
	got = f.reload(t, g.GoalId)
	out, err = f.progress.RecomputeGoal(ctx, got)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if out.Result != respond.OutcomeSkipped || out.Reason != respond.SkipNoChange {
		t.Fatalf("expected no_change, got %+v", out)
	}
	if f.reload(t, g.GoalId).Version != got.Version {
		t.Fatalf("no-op recompute must not bump version")
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalMilestone)); n != 2 {
		t.Fatalf("milestones fired again: %d", n)
	}
}

func TestRecomputeOvershootCompletesGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGoal(t, "u1", entity.CategoryReading, 10)
	f.addReading(t, "u1", 600, time.Hour)

	out, err := f.progress.RecomputeGoal(ctx, g)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if out.To != 100 || !out.Completed {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	got := f.reload(t, g.GoalId)
	if got.Status != entity.StatusCompleted || got.CompletedAt == nil || got.Progress != 100 {
		t.Fatalf("goal not completed: %+v", got)
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalMilestone)); n != 3 {
		t.Fatalf("expected 25/50/75 milestones, got %d", n)
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalCompleted)); n != 1 {
		t.Fatalf("expected one completion notification, got %d", n)
	}
	events := f.xpEvents(t, "u1")
	if len(events) != 1 || events[0].EventType != xpEntity.EventGoalCompleted || events[0].Amount != 40 {
		t.Fatalf("unexpected xp events: %+v", events)
	}
	if events[0].SourceKey.String != "goal_"+g.GoalId {
		t.Fatalf("source key=%s", events[0].SourceKey.String)
	}

	// 已完成的目标不再重算
	out, err = f.progress.RecomputeGoal(ctx, got)
	if err != nil || out.Reason != respond.SkipNotActive {
		t.Fatalf("expected not_active skip, got %+v %v", out, err)
	}
}

func TestRecomputeSkips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idle := f.addGoal(t, "u1", entity.CategoryReading, 30)
	out, err := f.progress.RecomputeGoal(ctx, idle)
	if err != nil || out.Reason != respond.SkipNoActivity {
		t.Fatalf("expected no_activity, got %+v %v", out, err)
	}
	if f.reload(t, idle.GoalId).Progress != 30 {
		t.Fatalf("progress must not be zeroed without activity")
	}

	other := f.addGoal(t, "u1", entity.CategoryOther, 0)
	out, err = f.progress.RecomputeGoal(ctx, other)
	if err != nil || out.Reason != respond.SkipNoSource {
		t.Fatalf("expected no_source, got %+v %v", out, err)
	}

	// 窗口滑动后度量变小，进度不回退
	ahead := f.addGoal(t, "u2", entity.CategoryReading, 80)
	f.addReading(t, "u2", 42, time.Hour)
	out, err = f.progress.RecomputeGoal(ctx, ahead)
	if err != nil || out.Reason != respond.SkipNoChange {
		t.Fatalf("expected no_change, got %+v %v", out, err)
	}
	if f.reload(t, ahead.GoalId).Progress != 80 {
		t.Fatalf("progress regressed")
	}
}

// bumpingSource 在前 bumps 次度量时模拟并发写入
type bumpingSource struct {
	db    *gorm.DB
	bumps int
	calls int
	value float64
}

func (s *bumpingSource) Category() string { return entity.CategoryReading }

func (s *bumpingSource) Target() float64 { return 100 }

func (s *bumpingSource) Measure(ctx context.Context, userID string, from, to time.Time) (float64, int, error) {
	s.calls++
	if s.calls <= s.bumps {
		err := s.db.Model(&entity.Goal{}).
			Where("user_id = ? AND category = ?", userID, entity.CategoryReading).
			UpdateColumn("version", gorm.Expr("version + 1")).Error
		if err != nil {
			return 0, 0, err
		}
	}
	return s.value, 1, nil
}

func TestRecomputeRetriesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	src := &bumpingSource{db: f.db, bumps: 1, value: 30}
	f = withSources(t, f, src)
	g := f.addGoal(t, "u1", entity.CategoryReading, 0)

	out, err := f.progress.RecomputeGoal(context.Background(), g)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected re-measure after conflict, calls=%d", src.calls)
	}
	got := f.reload(t, g.GoalId)
	if out.To != 30 || got.Progress != 30 || got.Version != 3 {
		t.Fatalf("unexpected result: out=%+v goal=%+v", out, got)
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalMilestone)); n != 1 {
		t.Fatalf("rolled back attempt leaked notifications: %d", n)
	}
}

func TestRecomputeUserIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	src := &bumpingSource{db: f.db, bumps: 100, value: 30}
	f = withSources(t, f, src)

	stuck := f.addGoal(t, "u1", entity.CategoryReading, 0)
	study := f.addGoal(t, "u1", entity.CategoryStudy, 0)
	done := testNow.Add(-time.Hour)
	err := f.study.Create(context.Background(), &activityEntity.StudySession{
		SessionId:       "SS0000000000000000A1",
		UserId:          "u1",
		CorrectAnswers:  10,
		TotalCards:      10,
		DurationSeconds: 9000,
		StartedAt:       done.Add(-150 * time.Minute),
		CompletedAt:     &done,
		CreatedAt:       done,
	})
	if err != nil {
		t.Fatalf("create study session: %v", err)
	}

	sum, err := f.progress.RecomputeUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("recompute user: %v", err)
	}
	if sum.Goals != 2 || sum.Failed != 1 || sum.Updated != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if src.calls != 3 {
		t.Fatalf("expected 3 attempts, calls=%d", src.calls)
	}
	if f.reload(t, stuck.GoalId).Progress != 0 {
		t.Fatalf("failed goal must be unchanged")
	}
	if got := f.reload(t, study.GoalId); got.Progress != 50 {
		t.Fatalf("study goal progress=%d", got.Progress)
	}

	_, err = f.progress.RecomputeGoal(context.Background(), f.reload(t, stuck.GoalId))
	if !errors.Is(err, entity.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestRecomputeAll(t *testing.T) {
	f := newFixture(t)
	f.addGoal(t, "u1", entity.CategoryReading, 0)
	f.addGoal(t, "u2", entity.CategoryReading, 0)
	f.addGoal(t, "u3", entity.CategoryOther, 0)
	f.addReading(t, "u1", 105, time.Hour)
	f.addReading(t, "u2", 420, time.Hour)

	sum, err := f.progress.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("recompute all: %v", err)
	}
	if sum.Users != 3 || sum.GoalsUpdated != 2 || sum.Completed != 1 || sum.UsersFailed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestSweepOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := testNow.Add(-24 * time.Hour)
	future := testNow.Add(24 * time.Hour)

	full := f.addGoal(t, "u1", entity.CategoryOther, 100)
	partial := f.addGoal(t, "u1", entity.CategoryOther, 40)
	later := f.addGoal(t, "u1", entity.CategoryOther, 100)
	for id, d := range map[string]time.Time{full.GoalId: past, partial.GoalId: past, later.GoalId: future} {
		if err := f.db.Model(&entity.Goal{}).Where("goal_id = ?", id).UpdateColumn("target_date", d).Error; err != nil {
			t.Fatalf("set target date: %v", err)
		}
	}

	sum, err := f.progress.SweepOverdue(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sum.Checked != 2 || sum.Completed != 1 || sum.StillActive != 1 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if got := f.reload(t, full.GoalId); got.Status != entity.StatusCompleted {
		t.Fatalf("full overdue goal not completed: %+v", got)
	}
	if got := f.reload(t, partial.GoalId); got.Status != entity.StatusActive {
		t.Fatalf("partial overdue goal must stay active: %+v", got)
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalCompleted)); n != 1 {
		t.Fatalf("expected one completion notification, got %d", n)
	}
	if n := len(f.xpEvents(t, "u1")); n != 1 {
		t.Fatalf("expected one xp event, got %d", n)
	}
}

// withSources 追加的来源按类别覆盖默认来源
func withSources(t *testing.T, f *fixture, extra ...ActivitySource) *fixture {
	t.Helper()
	sources := append(append([]ActivitySource{}, f.sources...), extra...)
	f.progress = NewProgressService(f.goals, f.uow, sources, f.opts)
	f.goalSvc = NewGoalService(f.goals, f.uow, f.progress, f.opts)
	return f
}

func TestNewGoalWithoutActivityStaysAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.goalSvc.CreateGoal(ctx, actor.New("u1", "", ""), request.CreateGoalRequest{Title: "Read more", Category: entity.CategoryReading})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if item.Progress != 0 || item.Status != entity.StatusActive {
		t.Fatalf("unexpected new goal: %+v", item)
	}

	sum, err := f.progress.RecomputeUser(ctx, "u1")
	if err != nil {
		t.Fatalf("recompute user: %v", err)
	}
	if sum.Goals != 1 || sum.Updated != 0 || sum.Skipped != 1 || sum.Completed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Outcomes[0].Reason != respond.SkipNoActivity || sum.Outcomes[0].To != 0 {
		t.Fatalf("unexpected outcome: %+v", sum.Outcomes[0])
	}

	got := f.reload(t, item.GoalId)
	if got.Progress != 0 || got.Status != entity.StatusActive || got.CompletedAt != nil || got.Version != 1 {
		t.Fatalf("goal changed without activity: %+v", got)
	}
	var notes int64
	if err := f.db.Model(&notificationEntity.Notification{}).Where("user_id = ?", "u1").Count(&notes).Error; err != nil || notes != 0 {
		t.Fatalf("notifications=%d err=%v", notes, err)
	}
	if f.outboxCount(t) != 0 {
		t.Fatalf("expected no outbox rows")
	}
	if len(f.xpEvents(t, "u1")) != 0 {
		t.Fatalf("expected no xp events")
	}
}
