package service

import (
	"context"
	"time"

	"FPKProgress/internal/modules/goal/application/dto/request"
	"FPKProgress/internal/modules/goal/application/dto/respond"
	"FPKProgress/internal/modules/goal/domain/entity"
	"FPKProgress/internal/modules/goal/domain/repository"
	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/validate"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

type CoachService interface {
	Coach(ctx context.Context, a actor.Actor, req request.CoachRequest) (*respond.CoachRespond, error)
}

type coachServiceImpl struct {
	goals   repository.GoalRepository
	sources map[string]ActivitySource
	coach   repository.Coach
	window  time.Duration
	now     func() time.Time
}

// NewCoachService coach 为 nil 时接口返回 503
func NewCoachService(goals repository.GoalRepository, sources []ActivitySource, coach repository.Coach, opts ProgressOptions) CoachService {
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	byCategory := make(map[string]ActivitySource, len(sources))
	for _, src := range sources {
		byCategory[src.Category()] = src
	}
	return &coachServiceImpl{goals: goals, sources: byCategory, coach: coach, window: opts.Window, now: opts.Now}
}

func (s *coachServiceImpl) Coach(ctx context.Context, a actor.Actor, req request.CoachRequest) (*respond.CoachRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if s.coach == nil {
		return nil, xerr.ErrUnavailable
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	goals, err := s.goals.ListActiveByUser(ctx, a.UserID)
	if err != nil {
		zlog.Error("coach list goals failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	brief := entity.CoachBrief{
		Goals:      goals,
		WindowDays: int(s.window / (24 * time.Hour)),
		Question:   req.Question,
	}
	now := s.now().UTC()
	from := now.Add(-s.window)
	if src, ok := s.sources[entity.CategoryReading]; ok {
		if v, _, err := src.Measure(ctx, a.UserID, from, now); err == nil {
			brief.ReadingMinutes = v
		} else {
			zlog.Warn("coach reading summary failed", zap.String("user_id", a.UserID), zap.Error(err))
		}
	}
	if src, ok := s.sources[entity.CategoryStudy]; ok {
		if v, _, err := src.Measure(ctx, a.UserID, from, now); err == nil {
			brief.StudyMinutes = v
		} else {
			zlog.Warn("coach study summary failed", zap.String("user_id", a.UserID), zap.Error(err))
		}
	}

	text, err := s.coach.Encourage(ctx, brief)
	if err != nil {
		zlog.Error("coach generate failed", zap.String("user_id", a.UserID), zap.String("model", s.coach.ModelName()), zap.Error(err))
		return nil, xerr.ErrUnavailable
	}
	return &respond.CoachRespond{Model: s.coach.ModelName(), Message: text}, nil
}
