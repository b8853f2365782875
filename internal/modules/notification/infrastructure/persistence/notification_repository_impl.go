package persistence

import (
	"context"
	"errors"
	"time"

	"FPKProgress/internal/modules/notification/domain/entity"
	"FPKProgress/internal/modules/notification/domain/repository"

	"gorm.io/gorm"
)

type notificationRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificationRepository db 可以是事务句柄，此时写入随外层事务提交
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) CreateWithOutbox(ctx context.Context, n *entity.Notification, ev *entity.OutboxEvent) error {
	if n == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		return tx.Create(ev).Error
	})
}

func (r *notificationRepositoryImpl) GetByNotificationID(ctx context.Context, notificationID string) (*entity.Notification, error) {
	var n entity.Notification
	err := r.db.WithContext(ctx).Where("notification_id = ?", notificationID).Take(&n).Error
	if err == nil {
		return &n, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (r *notificationRepositoryImpl) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entity.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_status = ?", false)
	}
	var out []*entity.Notification
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, userID, notificationID string, readAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("notification_id = ? AND user_id = ? AND read_status = ?", notificationID, userID, false).
		Updates(map[string]any{"read_status": true, "read_at": readAt})
	return res.RowsAffected, res.Error
}

func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND read_status = ?", userID, false).
		Updates(map[string]any{"read_status": true, "read_at": readAt})
	return res.RowsAffected, res.Error
}
