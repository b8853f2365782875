package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	client    *redis.Client
	keyPrefix string
)

// ErrNil key 不存在
var ErrNil = redis.Nil

// SetClient 设置 Redis 客户端（由 internal/initial 调用）
func SetClient(c *redis.Client) {
	client = c
}

// SetKeyPrefix 设置 key 命名空间，空串表示不加前缀
func SetKeyPrefix(prefix string) {
	keyPrefix = strings.Trim(strings.TrimSpace(prefix), ":")
}

// Key 用冒号拼接命名空间与各段
func Key(parts ...string) string {
	if keyPrefix != "" {
		parts = append([]string{keyPrefix}, parts...)
	}
	return strings.Join(parts, ":")
}

// Close 关闭 Redis 连接
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// IsConnected 检查 Redis 是否已连接
func IsConnected() bool {
	return client != nil
}

// GetClient 获取原始 Redis 客户端（高级用法）
func GetClient() *redis.Client {
	return client
}

// checkClient 检查客户端是否可用
func checkClient() error {
	if client == nil {
		return fmt.Errorf("redis not connected")
	}
	return nil
}

// Get 获取字符串值，key 不存在时返回 ErrNil
func Get(ctx context.Context, key string) (string, error) {
	if err := checkClient(); err != nil {
		return "", err
	}
	return client.Get(ctx, key).Result()
}

// Set 设置字符串值
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := checkClient(); err != nil {
		return err
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Del 删除 key
func Del(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Del(ctx, keys...).Result()
}

// IsNil 判断是否为 key 不存在
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// ==================== 分布式锁 ====================

// 只有持有者（token 匹配）才能释放锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock 尝试加锁，token 用于释放时校验持有者
func TryLock(ctx context.Context, key, token string, expiration time.Duration) (bool, error) {
	if err := checkClient(); err != nil {
		return false, err
	}
	return client.SetNX(ctx, key, token, expiration).Result()
}

// Unlock 释放锁，锁已过期或被他人持有时不做任何事
func Unlock(ctx context.Context, key, token string) error {
	if err := checkClient(); err != nil {
		return err
	}
	return unlockScript.Run(ctx, client, []string{key}, token).Err()
}
