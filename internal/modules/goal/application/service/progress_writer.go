package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FPKProgress/internal/modules/goal/domain/entity"
	"FPKProgress/internal/modules/goal/domain/repository"
)

const defaultMaxAttempts = 3

type progressChange struct {
	From       int
	To         int
	Milestones []int
	Completed  bool
}

// progressWriter 目标写入的唯一通道：CAS 更新、里程碑通知、完成奖励在同一事务内
type progressWriter struct {
	goals       repository.GoalRepository
	uow         repository.GoalUnitOfWork
	maxAttempts int
	now         func() time.Time
}

func newProgressWriter(goals repository.GoalRepository, uow repository.GoalUnitOfWork, maxAttempts int, now func() time.Time) *progressWriter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if now == nil {
		now = time.Now
	}
	return &progressWriter{goals: goals, uow: uow, maxAttempts: maxAttempts, now: now}
}

// apply 读改写循环。mutate 基于最新的 cur 返回修改后的副本，返回 nil 表示无需写入；
// 版本冲突时重新加载目标再调用 mutate，超过 maxAttempts 后返回 ErrVersionConflict
func (w *progressWriter) apply(ctx context.Context, g *entity.Goal, milestones bool, mutate func(cur *entity.Goal) (*entity.Goal, error)) (*entity.Goal, *progressChange, error) {
	cur := g
	for attempt := 1; ; attempt++ {
		next, err := mutate(cur)
		if err != nil || next == nil {
			return cur, nil, err
		}
		ch, err := w.write(ctx, cur, next, milestones)
		if err == nil {
			return next, ch, nil
		}
		if !errors.Is(err, entity.ErrVersionConflict) {
			return cur, nil, err
		}
		if attempt >= w.maxAttempts {
			return cur, nil, fmt.Errorf("goal %s gave up after %d attempts: %w", g.GoalId, attempt, err)
		}

		reloaded, err := w.goals.GetByGoalID(ctx, g.GoalId)
		if err != nil {
			return cur, nil, fmt.Errorf("reload goal %s: %w", g.GoalId, err)
		}
		if reloaded == nil {
			return cur, nil, fmt.Errorf("reload goal %s: %w", g.GoalId, entity.ErrNotFound)
		}
		cur = reloaded
	}
}

// write next 必须是 cur 的副本，cur.Version 作为预期版本
func (w *progressWriter) write(ctx context.Context, cur, next *entity.Goal, milestones bool) (*progressChange, error) {
	now := w.now().UTC()
	next.Progress = entity.ClampProgress(next.Progress)
	next.UpdatedAt = now

	ch := &progressChange{From: cur.Progress, To: next.Progress}
	if milestones {
		ch.Milestones = entity.CrossedMilestones(cur.Progress, next.Progress)
	}
	if next.Progress == entity.MaxProgress && cur.Status != entity.StatusCompleted {
		next.Status = entity.StatusCompleted
		next.CompletedAt = &now
		ch.Completed = true
	}

	err := w.uow.Transaction(ctx, func(goals repository.GoalRepository, notifier repository.Notifier, awarder repository.Awarder) error {
		if err := goals.UpdateWithVersion(ctx, next, cur.Version); err != nil {
			return err
		}
		for _, t := range ch.Milestones {
			// 100 由 goal_completed 通知表示
			if t == entity.MaxProgress {
				continue
			}
			if err := notifier.NotifyMilestone(ctx, next.UserId, next.GoalId, next.Title, t); err != nil {
				return fmt.Errorf("milestone %d notification: %w", t, err)
			}
		}
		if !ch.Completed {
			return nil
		}
		if err := notifier.NotifyGoalCompleted(ctx, next.UserId, next.GoalId, next.Title); err != nil {
			return fmt.Errorf("completion notification: %w", err)
		}
		if err := awarder.AwardGoalCompleted(ctx, next.UserId, next.GoalId, next.Priority); err != nil {
			return fmt.Errorf("completion xp: %w", err)
		}
		return nil
	})
	if err != nil {
		next.Version = cur.Version
		return nil, err
	}
	return ch, nil
}
