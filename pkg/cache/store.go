// Package cache provides a read-through cache coordinator over pluggable stores
// Package cache 提供基于可插拔存储后端的读穿透缓存协调器
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache: miss")

// Store is a cache backend holding opaque payloads
// Store 缓存后端，保存不透明的字节负载
type Store interface {
	// Get returns ErrMiss when the key is absent or expired
	// Get 键不存在或已过期时返回 ErrMiss
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites any existing entry
	// Set 覆盖已有条目
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除指定键
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix 删除所有以 prefix 开头的键
	DeletePrefix(ctx context.Context, prefix string) error
	// Name 后端名称，用于日志与指标
	Name() string
}

// Sweeper is implemented by stores that need periodic removal of expired entries
// Sweeper 由需要定期清理过期条目的后端实现
type Sweeper interface {
	Sweep() int
}

// Config 缓存配置
type Config struct {
	// Driver memory / redis / none
	Driver string
	// MaxEntries 内存后端最大条目数
	MaxEntries int
	// Redis 连接配置
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// KeyPrefix 所有键的全局前缀（redis 多实例共享时使用）
	KeyPrefix string
}

// NewStore 根据配置创建缓存后端
func NewStore(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(cfg.MaxEntries), nil
	case "redis":
		return NewRedisStore(RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		}), nil
	case "none":
		return NopStore{}, nil
	}
	return nil, fmt.Errorf("cache: unsupported driver %q", cfg.Driver)
}

// NopStore disables caching, every Get is a miss
// NopStore 关闭缓存，所有 Get 均未命中
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error)                { return nil, ErrMiss }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Delete(context.Context, ...string) error                  { return nil }
func (NopStore) DeletePrefix(context.Context, string) error               { return nil }
func (NopStore) Name() string                                             { return "none" }
