/*
 * @module service/distributed_lock/redis_lock
 * @description Redis分布式锁实现，用于多实例环境下的定时审计防重
 * @architecture 工具层 - 提供分布式锁能力
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 获取锁 -> 执行审计 -> 释放锁/自动过期
 * @rules 使用Redis SET NX实现，锁值携带实例标识，只有持有者能释放
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/scheduler/audit_scheduler.go
 */

package distributed_lock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// DistributedLock 分布式锁接口
type DistributedLock interface {
	// TryLock 尝试获取锁，获取成功返回true
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock 释放锁，只有持有者能释放
	Unlock(ctx context.Context, key string) error
}

// 释放锁时校验持有者的Lua脚本
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// RedisLock Redis分布式锁实现
type RedisLock struct {
	client     *redis.Client
	instanceID string
}

// NewRedisLock 从环境变量创建Redis分布式锁
func NewRedisLock() (*RedisLock, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s:%d", hostname, os.Getpid())

	slog.Info("Redis分布式锁初始化成功",
		"instance_id", instanceID,
		"redis_host", host,
		"redis_port", port)

	return &RedisLock{client: client, instanceID: instanceID}, nil
}

// TryLock 尝试获取锁，使用SET NX，key不存在时才会设置成功
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, r.instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("获取锁失败: %w", err)
	}
	return ok, nil
}

// Unlock 释放锁，持有者校验在Redis端原子完成
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	if err := r.client.Eval(ctx, unlockScript, []string{key}, r.instanceID).Err(); err != nil {
		return fmt.Errorf("释放锁失败: %w", err)
	}
	return nil
}

// getEnvWithDefault 获取环境变量，不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
