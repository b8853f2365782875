package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"FPKProgress/internal/modules/goal/application/dto/request"
	"FPKProgress/internal/modules/goal/domain/entity"
	notificationEntity "FPKProgress/internal/modules/notification/domain/entity"
	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/xerr"
)

func codeOf(err error) int {
	if ce, ok := xerr.As(err); ok {
		return ce.Code
	}
	return 0
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestCreateGoalDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := actor.New("u1", "org1", "")

	item, err := f.goalSvc.CreateGoal(ctx, owner, request.CreateGoalRequest{Title: "  Read 7 hours  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Title != "Read 7 hours" || item.Category != entity.CategoryOther || item.Priority != entity.PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", item)
	}
	if item.Status != entity.StatusActive || item.Progress != 0 || item.Version != 1 || len(item.GoalId) != 20 {
		t.Fatalf("unexpected goal: %+v", item)
	}
	if got := f.reload(t, item.GoalId); got.OrgId != "org1" || got.UserId != "u1" {
		t.Fatalf("ownership not stored: %+v", got)
	}

	if _, err := f.goalSvc.CreateGoal(ctx, owner, request.CreateGoalRequest{Title: "x", Category: "fitness"}); codeOf(err) != xerr.BadRequest {
		t.Fatalf("expected 400 for bad category, got %v", err)
	}
	if _, err := f.goalSvc.CreateGoal(ctx, owner, request.CreateGoalRequest{Title: "x", Priority: "urgent"}); codeOf(err) != xerr.BadRequest {
		t.Fatalf("expected 400 for bad priority, got %v", err)
	}
	mixed, err := f.goalSvc.CreateGoal(ctx, owner, request.CreateGoalRequest{Title: "Deck", Category: " Study ", Priority: "HIGH"})
	if err != nil {
		t.Fatalf("create with mixed case: %v", err)
	}
	if mixed.Category != entity.CategoryStudy || mixed.Priority != entity.PriorityHigh {
		t.Fatalf("category/priority not normalized: %+v", mixed)
	}
	if _, err := f.goalSvc.UpdateGoal(ctx, owner, request.UpdateGoalRequest{GoalId: mixed.GoalId, Category: strPtr("fitness")}); codeOf(err) != xerr.BadRequest {
		t.Fatalf("expected 400 for bad category on update, got %v", err)
	}
	if _, err := f.goalSvc.CreateGoal(ctx, owner, request.CreateGoalRequest{Title: "   "}); codeOf(err) != xerr.BadRequest {
		t.Fatalf("expected 400 for blank title, got %v", err)
	}
	if _, err := f.goalSvc.CreateGoal(ctx, actor.Actor{}, request.CreateGoalRequest{Title: "x"}); codeOf(err) != xerr.Unauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestGoalAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGoal(t, "u1", entity.CategoryReading, 0)

	stranger := actor.New("u2", "", actor.RoleStudent)
	if _, err := f.goalSvc.GetGoal(ctx, stranger, request.GetGoalRequest{GoalId: g.GoalId}); codeOf(err) != xerr.Forbidden {
		t.Fatalf("expected 403 on get, got %v", err)
	}
	if _, err := f.goalSvc.UpdateGoal(ctx, stranger, request.UpdateGoalRequest{GoalId: g.GoalId, Progress: intPtr(90)}); codeOf(err) != xerr.Forbidden {
		t.Fatalf("expected 403 on update, got %v", err)
	}
	if _, err := f.goalSvc.ListGoals(ctx, stranger, request.ListGoalsRequest{UserId: "u1"}); codeOf(err) != xerr.Forbidden {
		t.Fatalf("expected 403 on list, got %v", err)
	}
	if f.reload(t, g.GoalId).Progress != 0 {
		t.Fatalf("rejected update mutated the goal")
	}

	admin := actor.New("a1", "", actor.RoleAdmin)
	list, err := f.goalSvc.ListGoals(ctx, admin, request.ListGoalsRequest{UserId: "u1", Status: entity.StatusActive})
	if err != nil || len(list) != 1 {
		t.Fatalf("admin list: %d %v", len(list), err)
	}
	if _, err := f.goalSvc.GetGoal(ctx, admin, request.GetGoalRequest{GoalId: "GL000000000000000000"}); codeOf(err) != xerr.NotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestUpdateGoalExplicitProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := actor.New("u1", "", "")
	g := f.addGoal(t, "u1", entity.CategoryReading, 60)

	// 显式编辑可以下调进度
	item, err := f.goalSvc.UpdateGoal(ctx, owner, request.UpdateGoalRequest{
		GoalId:   g.GoalId,
		Title:    strPtr("Read 10 hours"),
		Priority: strPtr(entity.PriorityHigh),
		Progress: intPtr(20),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item.Progress != 20 || item.Title != "Read 10 hours" || item.Priority != entity.PriorityHigh || item.Version != 2 {
		t.Fatalf("unexpected item: %+v", item)
	}

	// 旧版本号
	_, err = f.goalSvc.UpdateGoal(ctx, owner, request.UpdateGoalRequest{GoalId: g.GoalId, Version: intPtr(1), Progress: intPtr(30)})
	if codeOf(err) != xerr.Conflict {
		t.Fatalf("expected 409 on stale version, got %v", err)
	}

	// 上调跨过 25 与 50
	item, err = f.goalSvc.UpdateGoal(ctx, owner, request.UpdateGoalRequest{GoalId: g.GoalId, Version: intPtr(2), Progress: intPtr(55)})
	if err != nil || item.Progress != 55 {
		t.Fatalf("update: %+v %v", item, err)
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalMilestone)); n != 2 {
		t.Fatalf("expected 2 milestone notifications, got %d", n)
	}

	// 100 走完成流程，高优先级 50 经验
	item, err = f.goalSvc.UpdateGoal(ctx, owner, request.UpdateGoalRequest{GoalId: g.GoalId, Progress: intPtr(100)})
	if err != nil {
		t.Fatalf("update to 100: %v", err)
	}
	if item.Status != entity.StatusCompleted || item.CompletedAt == nil {
		t.Fatalf("expected completion: %+v", item)
	}
	events := f.xpEvents(t, "u1")
	if len(events) != 1 || events[0].Amount != 50 {
		t.Fatalf("unexpected xp events: %+v", events)
	}

	_, err = f.goalSvc.UpdateGoal(ctx, owner, request.UpdateGoalRequest{GoalId: g.GoalId, Progress: intPtr(10)})
	if codeOf(err) != xerr.Conflict {
		t.Fatalf("expected 409 editing progress of completed goal, got %v", err)
	}
	// 非进度字段仍然可以修改
	item, err = f.goalSvc.UpdateGoal(ctx, owner, request.UpdateGoalRequest{GoalId: g.GoalId, Description: strPtr("done early")})
	if err != nil || item.Description != "done early" || item.Status != entity.StatusCompleted || item.Progress != 100 {
		t.Fatalf("update completed goal description: %+v %v", item, err)
	}
}

func TestCompleteGoalIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := actor.New("u1", "", "")
	g := f.addGoal(t, "u1", entity.CategoryOther, 10)

	item, err := f.goalSvc.CompleteGoal(ctx, owner, request.CompleteGoalRequest{GoalId: g.GoalId})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if item.Status != entity.StatusCompleted || item.Progress != 100 || item.CompletedAt == nil {
		t.Fatalf("unexpected item: %+v", item)
	}
	again, err := f.goalSvc.CompleteGoal(ctx, owner, request.CompleteGoalRequest{GoalId: g.GoalId})
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if again.Version != item.Version || !again.CompletedAt.Equal(*item.CompletedAt) {
		t.Fatalf("second completion must be a no-op: %+v vs %+v", again, item)
	}

	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalCompleted)); n != 1 {
		t.Fatalf("expected one completion notification, got %d", n)
	}
	if n := len(f.notifications(t, "u1", notificationEntity.TypeGoalMilestone)); n != 0 {
		t.Fatalf("explicit completion should not emit milestones, got %d", n)
	}
	if n := len(f.xpEvents(t, "u1")); n != 1 {
		t.Fatalf("expected one xp event, got %d", n)
	}
}

func TestRecomputeEndpointTargetsCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addGoal(t, "u1", entity.CategoryReading, 0)
	f.addReading(t, "u1", 105, time.Hour)

	sum, err := f.goalSvc.Recompute(ctx, actor.New("u1", "", ""), request.RecomputeRequest{})
	if err != nil || sum.UserId != "u1" || sum.Updated != 1 {
		t.Fatalf("recompute: %+v %v", sum, err)
	}
	if _, err := f.goalSvc.Recompute(ctx, actor.New("u2", "", ""), request.RecomputeRequest{UserId: "u1"}); codeOf(err) != xerr.Forbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestMapWriteError(t *testing.T) {
	s := &goalServiceImpl{}
	g := &entity.Goal{GoalId: "GL000000000000000001"}
	if codeOf(s.mapWriteError(g, entity.ErrVersionConflict)) != xerr.Conflict {
		t.Fatalf("conflict not mapped")
	}
	if codeOf(s.mapWriteError(g, errors.New("boom"))) != xerr.InternalServerError {
		t.Fatalf("unknown error not mapped to 500")
	}
}
