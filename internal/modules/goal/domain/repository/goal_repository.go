package repository

import (
	"context"
	"time"

	"FPKProgress/internal/modules/goal/domain/entity"
)

type GoalRepository interface {
	Create(ctx context.Context, g *entity.Goal) error
	GetByGoalID(ctx context.Context, goalID string) (*entity.Goal, error)
	// ListByUser status 为空时返回全部
	ListByUser(ctx context.Context, userID, status string) ([]*entity.Goal, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*entity.Goal, error)
	// ListActiveOverdue target_date 早于 now 的 active 目标
	ListActiveOverdue(ctx context.Context, now time.Time) ([]*entity.Goal, error)
	ListCompletedByUser(ctx context.Context, userID string) ([]*entity.Goal, error)
	ActiveUserIDs(ctx context.Context) ([]string, error)
	CompletedUserIDs(ctx context.Context) ([]string, error)
	// UpdateWithVersion 仅当库内 version 等于 expected 时写入，成功后 g.Version = expected+1；
	// 未命中返回 entity.ErrVersionConflict
	UpdateWithVersion(ctx context.Context, g *entity.Goal, expected int) error
}

// Notifier 由 notification 模块的 Fanout 实现
type Notifier interface {
	NotifyMilestone(ctx context.Context, userID, goalID, goalTitle string, threshold int) error
	NotifyGoalCompleted(ctx context.Context, userID, goalID, goalTitle string) error
}

// Awarder 由 xp 模块的 Recorder 实现，重复发放需静默忽略
type Awarder interface {
	AwardGoalCompleted(ctx context.Context, userID, goalID, priority string) error
}

// GoalUnitOfWork 目标写入、通知与经验在同一事务内提交
type GoalUnitOfWork interface {
	Transaction(ctx context.Context, fn func(goals GoalRepository, notifier Notifier, awarder Awarder) error) error
}

// Coach 根据进度摘要生成一段鼓励文字
type Coach interface {
	Encourage(ctx context.Context, brief entity.CoachBrief) (string, error)
	ModelName() string
}
