package service

import (
	"context"
	"time"

	"FPKProgress/internal/modules/xp/domain/entity"
)

// Candidate 一条历史活动对应的待补发经验
type Candidate struct {
	Category   string
	SourceID   string
	EventType  string
	Amount     int
	OccurredAt time.Time
	Metadata   map[string]any
}

func (c Candidate) SourceKey() string {
	return entity.SourceKey(c.Category, c.SourceID)
}

// BackfillSource 一类历史活动；Users 列出拥有该类活动的用户，供全量回填使用
type BackfillSource interface {
	Category() string
	Candidates(ctx context.Context, userID string) ([]Candidate, error)
	Users(ctx context.Context) ([]string, error)
}

// Locker 防止同一用户的回填并发执行
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), acquired bool, err error)
}

type noopLocker struct{}

func (noopLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
