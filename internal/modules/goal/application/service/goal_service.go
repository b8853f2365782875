package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"FPKProgress/internal/modules/goal/application/dto/request"
	"FPKProgress/internal/modules/goal/application/dto/respond"
	"FPKProgress/internal/modules/goal/domain/entity"
	"FPKProgress/internal/modules/goal/domain/repository"
	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/util"
	"FPKProgress/pkg/validate"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

var errCompletedProgress = xerr.New(xerr.Conflict, "progress of a completed goal cannot be edited")

type GoalService interface {
	CreateGoal(ctx context.Context, a actor.Actor, req request.CreateGoalRequest) (*respond.GoalItem, error)
	ListGoals(ctx context.Context, a actor.Actor, req request.ListGoalsRequest) ([]respond.GoalItem, error)
	GetGoal(ctx context.Context, a actor.Actor, req request.GetGoalRequest) (*respond.GoalItem, error)
	UpdateGoal(ctx context.Context, a actor.Actor, req request.UpdateGoalRequest) (*respond.GoalItem, error)
	CompleteGoal(ctx context.Context, a actor.Actor, req request.CompleteGoalRequest) (*respond.GoalItem, error)
	Recompute(ctx context.Context, a actor.Actor, req request.RecomputeRequest) (*respond.RecomputeSummary, error)
}

type goalServiceImpl struct {
	goals    repository.GoalRepository
	progress ProgressService
	writer   *progressWriter
}

func NewGoalService(goals repository.GoalRepository, uow repository.GoalUnitOfWork, progress ProgressService, opts ProgressOptions) GoalService {
	return &goalServiceImpl{
		goals:    goals,
		progress: progress,
		writer:   newProgressWriter(goals, uow, opts.MaxAttempts, opts.Now),
	}
}

func (s *goalServiceImpl) CreateGoal(ctx context.Context, a actor.Actor, req request.CreateGoalRequest) (*respond.GoalItem, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, xerr.New(xerr.BadRequest, "title is required")
	}

	category, priority, err := normalizeClass(req.Category, req.Priority)
	if err != nil {
		return nil, err
	}
	now := s.writer.now().UTC()
	g := &entity.Goal{
		GoalId:      util.GenerateID("GL"),
		UserId:      a.UserID,
		OrgId:       a.OrgID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Category:    category,
		Priority:    priority,
		Progress:    0,
		Status:      entity.StatusActive,
		TargetDate:  utcPtr(req.TargetDate),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.goals.Create(ctx, g); err != nil {
		zlog.Error("goal create failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return toGoalItem(g), nil
}

func (s *goalServiceImpl) ListGoals(ctx context.Context, a actor.Actor, req request.ListGoalsRequest) ([]respond.GoalItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	userID, err := resolveTarget(a, req.UserId)
	if err != nil {
		return nil, err
	}
	rows, err := s.goals.ListByUser(ctx, userID, req.Status)
	if err != nil {
		zlog.Error("goal list failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := make([]respond.GoalItem, 0, len(rows))
	for _, g := range rows {
		out = append(out, *toGoalItem(g))
	}
	return out, nil
}

func (s *goalServiceImpl) GetGoal(ctx context.Context, a actor.Actor, req request.GetGoalRequest) (*respond.GoalItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	g, err := s.loadOwned(ctx, a, req.GoalId)
	if err != nil {
		return nil, err
	}
	return toGoalItem(g), nil
}

// UpdateGoal 显式编辑；进度只能通过这里下调，设为 100 时走完成流程
func (s *goalServiceImpl) UpdateGoal(ctx context.Context, a actor.Actor, req request.UpdateGoalRequest) (*respond.GoalItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, xerr.New(xerr.BadRequest, "title cannot be empty")
	}
	if req.Category != nil {
		if _, _, err := normalizeClass(*req.Category, ""); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if _, _, err := normalizeClass("", *req.Priority); err != nil {
			return nil, err
		}
	}
	g, err := s.loadOwned(ctx, a, req.GoalId)
	if err != nil {
		return nil, err
	}

	updated, _, err := s.writer.apply(ctx, g, true, func(cur *entity.Goal) (*entity.Goal, error) {
		if req.Version != nil && *req.Version != cur.Version {
			return nil, entity.ErrVersionConflict
		}
		if req.Progress != nil && cur.Status == entity.StatusCompleted {
			return nil, errCompletedProgress
		}
		next := *cur
		if req.Title != nil {
			next.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			next.Description = strings.TrimSpace(*req.Description)
		}
		if req.Category != nil {
			next.Category, _, _ = normalizeClass(*req.Category, "")
		}
		if req.Priority != nil {
			_, next.Priority, _ = normalizeClass("", *req.Priority)
		}
		if req.ClearTargetDate {
			next.TargetDate = nil
		} else if req.TargetDate != nil {
			next.TargetDate = utcPtr(req.TargetDate)
		}
		if req.Progress != nil {
			next.Progress = entity.ClampProgress(*req.Progress)
		}
		return &next, nil
	})
	if err != nil {
		return nil, s.mapWriteError(g, err)
	}
	return toGoalItem(updated), nil
}

// CompleteGoal 幂等：已完成的目标直接返回
func (s *goalServiceImpl) CompleteGoal(ctx context.Context, a actor.Actor, req request.CompleteGoalRequest) (*respond.GoalItem, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	g, err := s.loadOwned(ctx, a, req.GoalId)
	if err != nil {
		return nil, err
	}
	if g.Status == entity.StatusCompleted {
		return toGoalItem(g), nil
	}

	updated, ch, err := s.writer.apply(ctx, g, false, completeMutation)
	if err != nil {
		return nil, s.mapWriteError(g, err)
	}
	if ch != nil {
		zlog.Info("goal completed", zap.String("goal_id", updated.GoalId), zap.String("user_id", updated.UserId), zap.Int("from", ch.From))
	}
	return toGoalItem(updated), nil
}

func (s *goalServiceImpl) Recompute(ctx context.Context, a actor.Actor, req request.RecomputeRequest) (*respond.RecomputeSummary, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	userID, err := resolveTarget(a, req.UserId)
	if err != nil {
		return nil, err
	}
	sum, err := s.progress.RecomputeUser(ctx, userID)
	if err != nil {
		zlog.Error("manual recompute failed", zap.String("user_id", userID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return sum, nil
}

func (s *goalServiceImpl) loadOwned(ctx context.Context, a actor.Actor, goalID string) (*entity.Goal, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	g, err := s.goals.GetByGoalID(ctx, goalID)
	if err != nil {
		zlog.Error("goal load failed", zap.String("goal_id", goalID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if g == nil {
		return nil, xerr.ErrNotFound
	}
	if !a.CanActFor(g.UserId) {
		return nil, xerr.ErrForbidden
	}
	return g, nil
}

func (s *goalServiceImpl) mapWriteError(g *entity.Goal, err error) error {
	if _, ok := xerr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, entity.ErrVersionConflict):
		return xerr.ErrConflict
	case errors.Is(err, entity.ErrNotFound):
		return xerr.ErrNotFound
	}
	zlog.Error("goal write failed", zap.String("goal_id", g.GoalId), zap.Error(err))
	return xerr.ErrServerError
}

// resolveTarget userID 为空时指调用方本人
func resolveTarget(a actor.Actor, userID string) (string, error) {
	if a.UserID == "" {
		return "", xerr.ErrUnauthorized
	}
	if userID == "" {
		return a.UserID, nil
	}
	if !a.CanActFor(userID) {
		return "", xerr.ErrForbidden
	}
	return userID, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func toGoalItem(g *entity.Goal) *respond.GoalItem {
	return &respond.GoalItem{
		GoalId:      g.GoalId,
		UserId:      g.UserId,
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		Priority:    g.Priority,
		Progress:    g.Progress,
		Status:      g.Status,
		TargetDate:  g.TargetDate,
		CompletedAt: g.CompletedAt,
		Version:     g.Version,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// normalizeClass 统一大小写并补默认值，未知取值返回 400
func normalizeClass(category, priority string) (string, string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = entity.CategoryOther
	}
	if !entity.ValidCategory(category) {
		return "", "", xerr.New(xerr.BadRequest, "unknown goal category: "+category)
	}
	priority = strings.ToLower(strings.TrimSpace(priority))
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !entity.ValidPriority(priority) {
		return "", "", xerr.New(xerr.BadRequest, "unknown goal priority: "+priority)
	}
	return category, priority, nil
}
