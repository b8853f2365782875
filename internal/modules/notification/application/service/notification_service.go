package service

import (
	"context"
	"encoding/json"
	"time"

	"FPKProgress/internal/modules/notification/application/dto/request"
	"FPKProgress/internal/modules/notification/application/dto/respond"
	"FPKProgress/internal/modules/notification/domain/entity"
	"FPKProgress/internal/modules/notification/domain/repository"
	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/validate"
	"FPKProgress/pkg/xerr"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

const defaultListLimit = 50

type NotificationService interface {
	List(ctx context.Context, a actor.Actor, req request.ListNotificationRequest) ([]respond.NotificationItem, error)
	UnreadCount(ctx context.Context, a actor.Actor) (*respond.UnreadCountRespond, error)
	MarkRead(ctx context.Context, a actor.Actor, req request.MarkReadRequest) error
	MarkAllRead(ctx context.Context, a actor.Actor) (*respond.MarkAllReadRespond, error)
}

type notificationServiceImpl struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationServiceImpl{repo: repo}
}

func (s *notificationServiceImpl) List(ctx context.Context, a actor.Actor, req request.ListNotificationRequest) ([]respond.NotificationItem, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.repo.ListByUser(ctx, a.UserID, req.UnreadOnly, limit)
	if err != nil {
		zlog.Error("notification list failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out := make([]respond.NotificationItem, 0, len(rows))
	for _, n := range rows {
		out = append(out, toItem(n))
	}
	return out, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, a actor.Actor) (*respond.UnreadCountRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	n, err := s.repo.CountUnread(ctx, a.UserID)
	if err != nil {
		zlog.Error("notification unread count failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.UnreadCountRespond{Unread: n}, nil
}

// MarkRead 已读的通知再次标记直接返回成功
func (s *notificationServiceImpl) MarkRead(ctx context.Context, a actor.Actor, req request.MarkReadRequest) error {
	if a.UserID == "" {
		return xerr.ErrUnauthorized
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	n, err := s.repo.GetByNotificationID(ctx, req.NotificationId)
	if err != nil {
		zlog.Error("notification get failed", zap.String("notification_id", req.NotificationId), zap.Error(err))
		return xerr.ErrServerError
	}
	// 他人的通知与不存在同样处理，不暴露存在性
	if n == nil || n.UserId != a.UserID {
		return xerr.ErrNotFound
	}
	if n.ReadStatus {
		return nil
	}
	if _, err := s.repo.MarkRead(ctx, a.UserID, n.NotificationId, time.Now().UTC()); err != nil {
		zlog.Error("notification mark read failed", zap.String("notification_id", n.NotificationId), zap.Error(err))
		return xerr.ErrServerError
	}
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, a actor.Actor) (*respond.MarkAllReadRespond, error) {
	if a.UserID == "" {
		return nil, xerr.ErrUnauthorized
	}
	updated, err := s.repo.MarkAllRead(ctx, a.UserID, time.Now().UTC())
	if err != nil {
		zlog.Error("notification mark all read failed", zap.String("user_id", a.UserID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.MarkAllReadRespond{Updated: updated}, nil
}

func toItem(n *entity.Notification) respond.NotificationItem {
	item := respond.NotificationItem{
		NotificationId: n.NotificationId,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		ActionUrl:      n.ActionUrl,
		ReadStatus:     n.ReadStatus,
		ReadAt:         n.ReadAt,
		CreatedAt:      n.CreatedAt,
	}
	if n.MetadataJson != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(n.MetadataJson), &meta); err == nil {
			item.Metadata = meta
		}
	}
	return item
}
