package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"FPKProgress/internal/modules/notification/domain/repository"
	"FPKProgress/internal/modules/notification/infrastructure/mq"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

const (
	baseRetryDelay = 500 * time.Millisecond
	maxRetryDelay  = 5 * time.Minute
	maxIdleBackoff = 30 * time.Second
)

// OutboxRelay 轮询 notification_outbox，把待投递行发布到 Kafka
type OutboxRelay struct {
	repo         repository.OutboxRepository
	pub          mq.Publisher
	defaultTopic string
	batchSize    int
	pollInterval time.Duration
}

func NewOutboxRelay(repo repository.OutboxRepository, pub mq.Publisher, defaultTopic string, batchSize int, pollInterval time.Duration) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 200
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &OutboxRelay{
		repo:         repo,
		pub:          pub,
		defaultTopic: strings.TrimSpace(defaultTopic),
		batchSize:    batchSize,
		pollInterval: pollInterval,
	}
}

func (r *OutboxRelay) Run(ctx context.Context) error {
	if r.repo == nil {
		return errors.New("outbox repo is nil")
	}
	if r.pub == nil {
		return errors.New("publisher is nil")
	}

	wait := r.pollInterval
	for {
		n, err := r.RunOnce(ctx)
		switch {
		case err != nil:
			wait *= 2
			if wait > maxIdleBackoff {
				wait = maxIdleBackoff
			}
		case n == 0:
			wait = r.pollInterval
		default:
			wait = 0
		}

		if wait == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RunOnce 处理一批，返回成功发布的条数
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	events, err := r.repo.ClaimForPublish(ctx, now, r.batchSize)
	if err != nil {
		zlog.Warn("notification outbox claim failed", zap.Error(err))
		return 0, err
	}

	published := 0
	for i := range events {
		ev := events[i]
		topic := strings.TrimSpace(ev.KafkaTopic)
		if topic == "" {
			topic = r.defaultTopic
		}
		if topic == "" {
			r.markFailed(ctx, ev.Id, now.Add(maxRetryDelay), "kafka topic is empty")
			continue
		}

		res, pubErr := r.pub.Publish(ctx, mq.OutboxMessage(topic, ev))
		if pubErr != nil {
			zlog.Warn("notification outbox publish failed", zap.Int64("id", ev.Id), zap.Int("retry", ev.RetryCount), zap.Error(pubErr))
			r.markFailed(ctx, ev.Id, computeNextRetry(now, ev.RetryCount), pubErr.Error())
			continue
		}

		if err := r.repo.MarkPublished(ctx, ev.Id, topic, int(res.Partition), res.Offset, time.Now().UTC()); err != nil {
			zlog.Warn("notification outbox mark published failed", zap.Int64("id", ev.Id), zap.Error(err))
			continue
		}
		published++
	}
	return published, nil
}

// markFailed 标记失败本身出错时只记日志，该行保持 publishing，等领取超时后重新投递
func (r *OutboxRelay) markFailed(ctx context.Context, id int64, nextRetry time.Time, reason string) {
	if err := r.repo.MarkPublishFailed(ctx, id, nextRetry, reason); err != nil {
		zlog.Warn("notification outbox mark failed failed",
			zap.Int64("id", id),
			zap.String("reason", reason),
			zap.Error(err))
	}
}

// computeNextRetry 指数退避，上限 5 分钟
func computeNextRetry(now time.Time, retryCount int) time.Time {
	if retryCount < 0 {
		retryCount = 0
	}
	d := baseRetryDelay
	for i := 0; i < retryCount && d < maxRetryDelay; i++ {
		d *= 2
	}
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return now.Add(d)
}
