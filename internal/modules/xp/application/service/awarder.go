package service

import (
	"context"

	"FPKProgress/internal/modules/xp/domain/entity"
	"FPKProgress/internal/modules/xp/domain/repository"
)

// Awarder 给没有外层事务的调用方用，每次记账单独开一个 XP 事务
type Awarder struct {
	uow repository.XPUnitOfWork
}

func NewAwarder(uow repository.XPUnitOfWork) *Awarder {
	return &Awarder{uow: uow}
}

func (a *Awarder) RecordEvent(ctx context.Context, userID, eventType string, amount int, opts RecordOptions) (*entity.XPEvent, error) {
	var ev *entity.XPEvent
	err := a.uow.Transaction(ctx, func(stores repository.XPStores, notifier repository.LevelUpNotifier) error {
		var err error
		ev, err = NewRecorder(stores, notifier).RecordEvent(ctx, userID, eventType, amount, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}
