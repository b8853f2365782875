package lock

import (
	"context"
	"time"

	"FPKProgress/pkg/redis"
	"FPKProgress/pkg/util"
	"FPKProgress/pkg/zlog"

	"go.uber.org/zap"
)

// RedisLocker 基于 SET NX 的用户级互斥；未连接 Redis 时直接放行，由等级行锁与唯一索引兜底
type RedisLocker struct{}

func NewRedisLocker() *RedisLocker {
	return &RedisLocker{}
}

// TryLock key 会加上配置的命名空间
func (RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if !redis.IsConnected() {
		return func() {}, true, nil
	}
	key = redis.Key(key)
	token := util.GenerateShortUUID()
	ok, err := redis.TryLock(ctx, key, token, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	unlock := func() {
		// 释放时调用方的 ctx 可能已取消
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redis.Unlock(releaseCtx, key, token); err != nil {
			zlog.Warn("redis unlock failed", zap.String("key", key), zap.Error(err))
		}
	}
	return unlock, true, nil
}
