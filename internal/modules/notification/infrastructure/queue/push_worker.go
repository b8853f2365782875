package queue

import (
	"context"
	"encoding/json"
	"errors"

	"FPKProgress/internal/modules/notification/domain/entity"
	"FPKProgress/internal/modules/notification/infrastructure/mq"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

// Pusher 由 ws.Hub 实现
type Pusher interface {
	SendJSON(userID string, v interface{}) (int, error)
}

// PushFrame 推送给客户端的外层结构
type PushFrame struct {
	Type string             `json:"type"`
	Data entity.PushMessage `json:"data"`
}

// PushWorker 消费通知主题并推送给在线用户，离线用户直接跳过
type PushWorker struct {
	consumer mq.Consumer
	pusher   Pusher
}

func NewPushWorker(consumer mq.Consumer, pusher Pusher) *PushWorker {
	return &PushWorker{consumer: consumer, pusher: pusher}
}

func (w *PushWorker) Run(ctx context.Context) error {
	if w == nil || w.consumer == nil {
		return errors.New("consumer is nil")
	}
	if w.pusher == nil {
		return errors.New("pusher is nil")
	}
	return w.consumer.Run(ctx, w)
}

func (w *PushWorker) Handle(ctx context.Context, msg mq.Message) error {
	var pm entity.PushMessage
	if err := json.Unmarshal(msg.Value, &pm); err != nil {
		// 无法解析的消息重试也没有意义，直接确认
		zlog.Warn("notification push invalid payload", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}
	if pm.UserId == "" {
		pm.UserId = msg.Header(mq.HeaderUserID)
	}
	if pm.UserId == "" {
		zlog.Warn("notification push missing user id", zap.String("notification_id", pm.NotificationId))
		return nil
	}

	n, err := w.pusher.SendJSON(pm.UserId, PushFrame{Type: "notification", Data: pm})
	if err != nil {
		zlog.Warn("notification push encode failed", zap.String("notification_id", pm.NotificationId), zap.Error(err))
		return nil
	}
	zlog.Debug("notification pushed", zap.String("notification_id", pm.NotificationId), zap.String("user_id", pm.UserId), zap.Int("connections", n))
	return nil
}
