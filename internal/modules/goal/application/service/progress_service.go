package service

import (
	"context"
	"fmt"
	"time"

	"FPKProgress/internal/modules/goal/application/dto/respond"
	"FPKProgress/internal/modules/goal/domain/entity"
	"FPKProgress/internal/modules/goal/domain/repository"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

const defaultWindow = 7 * 24 * time.Hour

// ActivitySource 某一类目标的度量来源，records 为 0 表示窗口内没有活动
type ActivitySource interface {
	Category() string
	Target() float64
	Measure(ctx context.Context, userID string, from, to time.Time) (value float64, records int, err error)
}

type ProgressService interface {
	RecomputeUser(ctx context.Context, userID string) (*respond.RecomputeSummary, error)
	RecomputeGoal(ctx context.Context, g *entity.Goal) (*respond.GoalOutcome, error)
	RecomputeAll(ctx context.Context) (*respond.RecomputeAllSummary, error)
	SweepOverdue(ctx context.Context) (*respond.OverdueSummary, error)
}

type ProgressOptions struct {
	Window      time.Duration
	MaxAttempts int
	Now         func() time.Time
}

type progressServiceImpl struct {
	goals   repository.GoalRepository
	sources map[string]ActivitySource
	window  time.Duration
	writer  *progressWriter
}

func NewProgressService(goals repository.GoalRepository, uow repository.GoalUnitOfWork, sources []ActivitySource, opts ProgressOptions) ProgressService {
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	byCategory := make(map[string]ActivitySource, len(sources))
	for _, src := range sources {
		byCategory[src.Category()] = src
	}
	return &progressServiceImpl{
		goals:   goals,
		sources: byCategory,
		window:  opts.Window,
		writer:  newProgressWriter(goals, uow, opts.MaxAttempts, opts.Now),
	}
}

// RecomputeUser 按存储顺序逐个重算，单个目标失败只记录不中断
func (s *progressServiceImpl) RecomputeUser(ctx context.Context, userID string) (*respond.RecomputeSummary, error) {
	goals, err := s.goals.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active goals of %s: %w", userID, err)
	}

	sum := &respond.RecomputeSummary{UserId: userID, Goals: len(goals), Outcomes: make([]respond.GoalOutcome, 0, len(goals))}
	for _, g := range goals {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		out, err := s.RecomputeGoal(ctx, g)
		if err != nil {
			zlog.Error("goal recompute failed", zap.String("goal_id", g.GoalId), zap.String("user_id", userID), zap.Error(err))
			sum.Failed++
			sum.Outcomes = append(sum.Outcomes, respond.GoalOutcome{
				GoalId: g.GoalId,
				Result: respond.OutcomeFailed,
				Reason: err.Error(),
				From:   g.Progress,
				To:     g.Progress,
			})
			continue
		}
		switch out.Result {
		case respond.OutcomeUpdated:
			sum.Updated++
		default:
			sum.Skipped++
		}
		if out.Completed {
			sum.Completed++
		}
		sum.Outcomes = append(sum.Outcomes, *out)
	}
	return sum, nil
}

func (s *progressServiceImpl) RecomputeGoal(ctx context.Context, g *entity.Goal) (*respond.GoalOutcome, error) {
	if g == nil {
		return nil, entity.ErrNotFound
	}

	var reason string
	updated, ch, err := s.writer.apply(ctx, g, true, func(cur *entity.Goal) (*entity.Goal, error) {
		reason = ""
		if !cur.IsActive() {
			reason = respond.SkipNotActive
			return nil, nil
		}
		src, ok := s.sources[cur.Category]
		if !ok {
			reason = respond.SkipNoSource
			return nil, nil
		}
		now := s.writer.now().UTC()
		value, records, err := src.Measure(ctx, cur.UserId, now.Add(-s.window), now)
		if err != nil {
			return nil, fmt.Errorf("measure %s goal %s: %w", cur.Category, cur.GoalId, err)
		}
		if records == 0 {
			reason = respond.SkipNoActivity
			return nil, nil
		}
		pct := entity.ProgressFromRatio(value, src.Target())
		if pct <= cur.Progress {
			reason = respond.SkipNoChange
			return nil, nil
		}
		next := *cur
		next.Progress = pct
		return &next, nil
	})
	if err != nil {
		return nil, err
	}

	if ch == nil {
		return &respond.GoalOutcome{
			GoalId: updated.GoalId,
			Result: respond.OutcomeSkipped,
			Reason: reason,
			From:   updated.Progress,
			To:     updated.Progress,
		}, nil
	}
	zlog.Info("goal progress updated",
		zap.String("goal_id", updated.GoalId),
		zap.Int("from", ch.From),
		zap.Int("to", ch.To),
		zap.Ints("milestones", ch.Milestones),
		zap.Bool("completed", ch.Completed))
	return &respond.GoalOutcome{
		GoalId:     updated.GoalId,
		Result:     respond.OutcomeUpdated,
		From:       ch.From,
		To:         ch.To,
		Milestones: ch.Milestones,
		Completed:  ch.Completed,
	}, nil
}

// RecomputeAll 遍历拥有 active 目标的用户，单个用户失败不影响其他用户
func (s *progressServiceImpl) RecomputeAll(ctx context.Context) (*respond.RecomputeAllSummary, error) {
	users, err := s.goals.ActiveUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users with active goals: %w", err)
	}

	sum := &respond.RecomputeAllSummary{Users: len(users)}
	for _, uid := range users {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		us, err := s.RecomputeUser(ctx, uid)
		if err != nil {
			zlog.Error("user recompute failed", zap.String("user_id", uid), zap.Error(err))
			sum.UsersFailed++
			continue
		}
		sum.GoalsUpdated += us.Updated
		sum.GoalsFailed += us.Failed
		sum.Completed += us.Completed
	}
	zlog.Info("recompute all finished",
		zap.Int("users", sum.Users),
		zap.Int("users_failed", sum.UsersFailed),
		zap.Int("goals_updated", sum.GoalsUpdated),
		zap.Int("goals_failed", sum.GoalsFailed))
	return sum, nil
}

// SweepOverdue 已满进度的过期目标走完成流程，其余保持 active 并告警
func (s *progressServiceImpl) SweepOverdue(ctx context.Context) (*respond.OverdueSummary, error) {
	now := s.writer.now().UTC()
	goals, err := s.goals.ListActiveOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue goals: %w", err)
	}

	sum := &respond.OverdueSummary{Checked: len(goals)}
	for _, g := range goals {
		if g.Progress < entity.MaxProgress {
			zlog.Warn("goal overdue",
				zap.String("goal_id", g.GoalId),
				zap.String("user_id", g.UserId),
				zap.Int("progress", g.Progress),
				zap.Timep("target_date", g.TargetDate))
			sum.StillActive++
			continue
		}
		_, ch, err := s.writer.apply(ctx, g, false, completeMutation)
		if err != nil {
			zlog.Error("overdue goal completion failed", zap.String("goal_id", g.GoalId), zap.Error(err))
			sum.Failed++
			continue
		}
		if ch != nil && ch.Completed {
			sum.Completed++
		}
	}
	return sum, nil
}

// completeMutation 已完成的目标不再写入
func completeMutation(cur *entity.Goal) (*entity.Goal, error) {
	if cur.Status == entity.StatusCompleted {
		return nil, nil
	}
	next := *cur
	next.Progress = entity.MaxProgress
	return &next, nil
}
