package persistence

import (
	"context"

	"FPKProgress/internal/modules/xp/domain/repository"

	"gorm.io/gorm"
)

// NotifierFactory 用事务句柄构造升级通知，保证通知与经验事件一起提交
type NotifierFactory func(tx *gorm.DB) repository.LevelUpNotifier

type xpUnitOfWorkImpl struct {
	db       *gorm.DB
	notifier NotifierFactory
}

// NewXPUnitOfWork notifier 为 nil 时不发升级通知
func NewXPUnitOfWork(db *gorm.DB, notifier NotifierFactory) repository.XPUnitOfWork {
	return &xpUnitOfWorkImpl{db: db, notifier: notifier}
}

// NewXPStores 全部仓储绑定到同一个句柄
func NewXPStores(db *gorm.DB) repository.XPStores {
	return repository.XPStores{
		Events:  NewXPEventRepository(db),
		Levels:  NewUserLevelRepository(db),
		Badges:  NewBadgeRepository(db),
		Metrics: NewBadgeMetricsReader(db),
	}
}

func (u *xpUnitOfWorkImpl) Transaction(ctx context.Context, fn func(stores repository.XPStores, notifier repository.LevelUpNotifier) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var notifier repository.LevelUpNotifier
		if u.notifier != nil {
			notifier = u.notifier(tx)
		}
		return fn(NewXPStores(tx), notifier)
	})
}
