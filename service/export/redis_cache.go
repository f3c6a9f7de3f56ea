/*
 * @module service/export/redis_cache
 * @description 基于Redis的导出结果缓存，多个实例共享同一份导出字节
 * @architecture 工具层 - 实现export.Cache
 * @stateFlow 视图哈希 -> Redis GET/SET(EX)
 * @rules 键带前缀与TTL；连接失败在创建时返回错误，由调用方降级为内存缓存
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/init.go
 */

package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "sales_dashboard:export:"

// RedisOptions Redis连接配置
type RedisOptions struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache Redis导出缓存
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	obs    Observer
}

// NewRedisCache 创建Redis缓存并测试连接
func NewRedisCache(opts RedisOptions, ttl time.Duration, obs Observer) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("Redis导出缓存初始化成功",
		"redis_host", opts.Host,
		"redis_port", opts.Port,
		"ttl", ttl.String())

	return &RedisCache{client: client, ttl: ttl, obs: obs}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		if c.obs != nil {
			c.obs.CacheMiss()
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.obs != nil {
		c.obs.CacheHit()
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	return c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err()
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 检查连接，用于健康检查
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
