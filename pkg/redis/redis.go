package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/dnzakizamani/simple-login/pkg/config"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/go-redis/redis/v8"
)

var (
	// Client 全局 Redis 客户端（nil表示Redis未启用）
	Client *redis.Client

	isRedisEnabled bool
)

// Init 初始化 Redis 连接
// 如果Redis未启用或连接失败，会优雅降级，登录限流退化为进程内计数
func Init(cfg *config.RedisConfig) error {
	if !cfg.Enabled {
		logger.Infof("[Redis] Redis is disabled in config - using in-process rate limiting")
		isRedisEnabled = false
		return nil
	}

	cfg.SetDefaults()

	Client = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.ConnectTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		PoolSize:     cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		Client.Close()
		Client = nil
		isRedisEnabled = false
		return fmt.Errorf("failed to connect to Redis at %s:%d: %w (will use in-process rate limiting)", cfg.Host, cfg.Port, err)
	}

	isRedisEnabled = true
	logger.Infof("[Redis] Connected to Redis at %s:%d (DB: %d, PoolSize: %d)",
		cfg.Host, cfg.Port, cfg.DB, cfg.PoolSize)
	return nil
}

// Close 关闭 Redis 连接
func Close() error {
	if Client != nil {
		err := Client.Close()
		Client = nil
		isRedisEnabled = false
		return err
	}
	return nil
}

// IsEnabled 检查 Redis 是否已启用且连接正常
func IsEnabled() bool {
	return Client != nil && isRedisEnabled
}
