package repository

import (
	"context"
	"time"

	"FPKProgress/internal/modules/notification/domain/entity"
)

type NotificationRepository interface {
	// CreateWithOutbox 通知与 outbox 行同时提交或同时回滚
	CreateWithOutbox(ctx context.Context, n *entity.Notification, ev *entity.OutboxEvent) error
	GetByNotificationID(ctx context.Context, notificationID string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead 只更新未读行，返回受影响行数
	MarkRead(ctx context.Context, userID, notificationID string, readAt time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error)
}

type OutboxRepository interface {
	ClaimForPublish(ctx context.Context, now time.Time, limit int) ([]entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64, topic string, partition int, offset int64, publishedAt time.Time) error
	MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error
	GetByDedupKey(ctx context.Context, dedupKey string) (*entity.OutboxEvent, error)
}
