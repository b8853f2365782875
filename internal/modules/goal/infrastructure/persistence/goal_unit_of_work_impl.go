package persistence

import (
	"context"

	"FPKProgress/internal/modules/goal/domain/repository"
	notificationService "FPKProgress/internal/modules/notification/application/service"
	notificationPersistence "FPKProgress/internal/modules/notification/infrastructure/persistence"
	xpService "FPKProgress/internal/modules/xp/application/service"
	xpPersistence "FPKProgress/internal/modules/xp/infrastructure/persistence"

	"gorm.io/gorm"
)

type goalUnitOfWorkImpl struct {
	db    *gorm.DB
	topic string
}

// NewGoalUnitOfWork 事务内的通知与经验事件都绑定同一个 tx
func NewGoalUnitOfWork(db *gorm.DB, notificationTopic string) repository.GoalUnitOfWork {
	return &goalUnitOfWorkImpl{db: db, topic: notificationTopic}
}

func (u *goalUnitOfWorkImpl) Transaction(ctx context.Context, fn func(goals repository.GoalRepository, notifier repository.Notifier, awarder repository.Awarder) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fanout := notificationService.NewFanout(notificationPersistence.NewNotificationRepository(tx), u.topic)
		recorder := xpService.NewRecorder(xpPersistence.NewXPStores(tx), fanout)
		return fn(NewGoalRepository(tx), fanout, recorder)
	})
}
