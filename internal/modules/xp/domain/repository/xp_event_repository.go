package repository

import (
	"context"

	"FPKProgress/internal/modules/xp/domain/entity"
)

// Totals 某用户的经验汇总，按是否回填拆分
type Totals struct {
	TotalXP       int
	TotalEvents   int
	BackfillXP    int
	BackfillCount int
	OrganicXP     int
	OrganicCount  int
}

type UserTotal struct {
	UserId  string
	TotalXP int
}

type XPEventRepository interface {
	// Create 追加一条事件，来源重复时返回 entity.ErrDuplicateSource
	Create(ctx context.Context, ev *entity.XPEvent) error
	CreateBatch(ctx context.Context, events []*entity.XPEvent) error
	SumByUser(ctx context.Context, userID string) (int, error)
	TotalsByUser(ctx context.Context, userID string) (Totals, error)
	SourceKeysByUser(ctx context.Context, userID string) (map[string]struct{}, error)
	ExistsSourceKey(ctx context.Context, userID, sourceKey string) (bool, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*entity.XPEvent, error)
	// DeleteBackfill 只删除 backfill=true 的行，返回删除条数与经验
	DeleteBackfill(ctx context.Context, userID string) (int, int, error)
	TopUsers(ctx context.Context, limit int) ([]UserTotal, error)
}

// UserLevelRepository 等级基线，兼作同一用户经验写入的行锁
type UserLevelRepository interface {
	// Lock 锁住用户的等级行，不存在时先插入 level=0 的行
	Lock(ctx context.Context, userID string) (*entity.UserLevel, error)
	Save(ctx context.Context, lv *entity.UserLevel) error
}

// LevelUpNotifier 由通知模块的 Fanout 实现
type LevelUpNotifier interface {
	NotifyLevelUp(ctx context.Context, userID string, level int) error
}

// XPStores 绑定在同一个数据库句柄上的一组仓储
type XPStores struct {
	Events  XPEventRepository
	Levels  UserLevelRepository
	Badges  BadgeRepository
	Metrics BadgeMetricsReader
}

// XPUnitOfWork notifier 与 stores 绑定同一个事务，可能为 nil
type XPUnitOfWork interface {
	Transaction(ctx context.Context, fn func(stores XPStores, notifier LevelUpNotifier) error) error
}
