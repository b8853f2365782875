package repository

import (
	"context"

	"FPKProgress/internal/modules/xp/domain/entity"
)

type BadgeRepository interface {
	// EnsureCatalog 只插入缺失的 badge_id
	EnsureCatalog(ctx context.Context, badges []*entity.Badge) error
	ListCatalog(ctx context.Context) ([]*entity.Badge, error)
	EarnedBadgeIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	// Award 已拥有该徽章时返回 false
	Award(ctx context.Context, ub *entity.UserBadge) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.UserBadge, error)
	DeleteBackfill(ctx context.Context, userID string) (int, error)
}

// BadgeMetricsReader 汇总用户的历史活动，供徽章判定
type BadgeMetricsReader interface {
	Metrics(ctx context.Context, userID string) (entity.BadgeMetrics, error)
}
