package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FPKProgress/internal/modules/notification/domain/entity"
	"FPKProgress/internal/modules/notification/domain/repository"
	"FPKProgress/pkg/util"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

const notificationIDPrefix = "NT"

// Fanout 生成通知并连同 outbox 行一起落库。
// repo 绑定事务句柄时，通知与调用方的写入同时提交。
type Fanout struct {
	repo  repository.NotificationRepository
	topic string
}

func NewFanout(repo repository.NotificationRepository, topic string) *Fanout {
	return &Fanout{repo: repo, topic: strings.TrimSpace(topic)}
}

func (f *Fanout) NotifyMilestone(ctx context.Context, userID, goalID, goalTitle string, threshold int) error {
	return f.emit(ctx, userID, entity.TypeGoalMilestone,
		"Goal milestone reached",
		fmt.Sprintf("You're %d%% of the way to \"%s\". Keep going!", threshold, goalTitle),
		goalURL(goalID),
		map[string]any{"goal_id": goalID, "threshold": threshold},
	)
}

func (f *Fanout) NotifyGoalCompleted(ctx context.Context, userID, goalID, goalTitle string) error {
	return f.emit(ctx, userID, entity.TypeGoalCompleted,
		"Goal completed",
		fmt.Sprintf("You completed \"%s\". Great work!", goalTitle),
		goalURL(goalID),
		map[string]any{"goal_id": goalID, "threshold": 100},
	)
}

func (f *Fanout) NotifyLevelUp(ctx context.Context, userID string, level int) error {
	return f.emit(ctx, userID, entity.TypeLevelUp,
		"Level up!",
		fmt.Sprintf("You reached level %d.", level),
		"/progress",
		map[string]any{"level": level},
	)
}

func (f *Fanout) emit(ctx context.Context, userID, typ, title, message, actionURL string, metadata map[string]any) error {
	now := time.Now().UTC()
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	n := &entity.Notification{
		NotificationId: util.GenerateID(notificationIDPrefix),
		UserId:         userID,
		Type:           typ,
		Title:          title,
		Message:        message,
		ActionUrl:      actionURL,
		MetadataJson:   string(metaJSON),
		CreatedAt:      now,
	}

	payload, err := json.Marshal(entity.PushMessage{
		NotificationId: n.NotificationId,
		UserId:         userID,
		Type:           typ,
		Title:          title,
		Message:        message,
		ActionUrl:      actionURL,
		Metadata:       metadata,
		CreatedAt:      now,
	})
	if err != nil {
		return err
	}

	ev := &entity.OutboxEvent{
		EventType:     entity.EventTypeNotificationCreated,
		UserId:        userID,
		PayloadJson:   string(payload),
		DedupKey:      n.NotificationId,
		PublishStatus: entity.PublishStatusPending,
		KafkaTopic:    f.topic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := f.repo.CreateWithOutbox(ctx, n, ev); err != nil {
		zlog.Error("notification create failed", zap.String("user_id", userID), zap.String("type", typ), zap.Error(err))
		return fmt.Errorf("create %s notification: %w", typ, err)
	}
	return nil
}

func goalURL(goalID string) string {
	return "/goals?focus=" + goalID
}
