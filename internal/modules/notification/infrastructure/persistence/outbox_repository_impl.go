package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"FPKProgress/internal/modules/notification/domain/entity"
	"FPKProgress/internal/modules/notification/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxErrLen = 255
	// publishing 状态超过该时长视为 relay 中途退出，允许重新领取
	staleClaimAfter = 5 * time.Minute
)

type outboxRepositoryImpl struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) repository.OutboxRepository {
	return &outboxRepositoryImpl{db: db}
}

// ClaimForPublish 锁定一批到期的待投递行并标记为 publishing，多实例 relay 之间互不重复
func (r *outboxRepositoryImpl) ClaimForPublish(ctx context.Context, now time.Time, limit int) ([]entity.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var out []entity.OutboxEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var events []entity.OutboxEvent
		q := tx.Model(&entity.OutboxEvent{}).
			Where("(publish_status IN ? AND (next_retry_at IS NULL OR next_retry_at <= ?)) OR (publish_status = ? AND updated_at < ?)",
				[]int8{entity.PublishStatusPending, entity.PublishStatusFailed}, now,
				entity.PublishStatusPublishing, now.Add(-staleClaimAfter)).
			Order("id ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			out = []entity.OutboxEvent{}
			return nil
		}

		ids := make([]int64, 0, len(events))
		for i := range events {
			ids = append(ids, events[i].Id)
		}
		if err := tx.Model(&entity.OutboxEvent{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"publish_status": entity.PublishStatusPublishing, "updated_at": now}).Error; err != nil {
			return err
		}

		out = events
		return nil
	})
	return out, err
}

func (r *outboxRepositoryImpl) MarkPublished(ctx context.Context, id int64, topic string, partition int, offset int64, publishedAt time.Time) error {
	updates := map[string]any{
		"publish_status":  entity.PublishStatusPublished,
		"kafka_topic":     strings.TrimSpace(topic),
		"kafka_partition": partition,
		"kafka_offset":    offset,
		"published_at":    publishedAt,
		"last_error":      "",
		"updated_at":      time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Model(&entity.OutboxEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *outboxRepositoryImpl) MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error {
	errMsg = strings.TrimSpace(errMsg)
	if len(errMsg) > maxErrLen {
		errMsg = errMsg[:maxErrLen]
	}
	updates := map[string]any{
		"publish_status": entity.PublishStatusFailed,
		"retry_count":    gorm.Expr("retry_count + 1"),
		"next_retry_at":  nextRetryAt,
		"last_error":     errMsg,
		"updated_at":     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Model(&entity.OutboxEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *outboxRepositoryImpl) GetByDedupKey(ctx context.Context, dedupKey string) (*entity.OutboxEvent, error) {
	var ev entity.OutboxEvent
	err := r.db.WithContext(ctx).Where("dedup_key = ?", dedupKey).Take(&ev).Error
	if err == nil {
		return &ev, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}
