package initial

import (
	"context"
	"fmt"
	"time"

	"FPKProgress/internal/config"
	"FPKProgress/pkg/redis"
	"FPKProgress/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

func init() {
	conf := config.GetConfig().RedisConfig
	redis.SetKeyPrefix(conf.KeyPrefix)

	// Redis 只承载回填锁；未配置时锁退化为放行，由 xp_user_level 行锁与唯一索引兜底
	if conf.Host == "" {
		zlog.Info("redis not configured, backfill lock disabled")
		return
	}
	client, err := connectRedis(conf)
	if err != nil {
		zlog.Error("redis unavailable, backfill lock disabled", zap.Error(err))
		return
	}
	redis.SetClient(client)
	zlog.Info("redis connected", zap.String("addr", client.Options().Addr), zap.String("key_prefix", redis.Key()))
}

func connectRedis(conf config.RedisConfig) (*goredis.Client, error) {
	port := conf.Port
	if port == 0 {
		port = 6379
	}
	addr := fmt.Sprintf("%s:%d", conf.Host, port)
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     conf.Password,
		DB:           conf.DB,
		PoolSize:     conf.PoolSize,
		MinIdleConns: conf.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
