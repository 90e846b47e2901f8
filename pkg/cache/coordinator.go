package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultOpTimeout caps every backend call so a slow cache never stalls a request
// DefaultOpTimeout 单次后端调用的最长时间，缓存慢时请求不会被拖住
const DefaultOpTimeout = 250 * time.Millisecond

// codec 使用标准兼容配置，保证相同值编码出相同字节
var codec = sonic.ConfigStd

// Coordinator read-through / invalidate-on-write cache.
// Backend failures are absorbed: reads degrade to a miss, writes and invalidations are logged and dropped.
// Coordinator 读穿透、写时失效的缓存协调器。
// 后端故障会被吸收：读降级为未命中，写入与失效失败仅记录日志。
type Coordinator struct {
	store     Store
	logger    *zap.Logger
	sf        singleflight.Group
	opTimeout time.Duration
}

// Option Coordinator 可选配置
type Option func(*Coordinator)

// WithLogger 注入日志器
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOpTimeout 设置单次后端调用超时
func WithOpTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.opTimeout = d
		}
	}
}

// NewCoordinator 创建缓存协调器；store 为 nil 时关闭缓存
func NewCoordinator(store Store, opts ...Option) *Coordinator {
	if store == nil {
		store = NopStore{}
	}
	c := &Coordinator{
		store:     store,
		logger:    zap.NewNop(),
		opTimeout: DefaultOpTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store 返回底层后端
func (c *Coordinator) Store() Store {
	return c.store
}

func (c *Coordinator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// Get decodes the cached payload into dst; false means miss, including backend or decode errors
// Get 将缓存内容解码到 dst；返回 false 表示未命中（后端或解码错误同样视为未命中）
func (c *Coordinator) Get(ctx context.Context, key string, dst interface{}) bool {
	raw, ok := c.getRaw(ctx, key)
	if !ok {
		return false
	}
	if err := codec.Unmarshal(raw, dst); err != nil {
		cacheErrors.WithLabelValues(c.store.Name(), "decode").Inc()
		c.logger.Warn("cache decode failed, treating as miss", zap.String("cacheKey", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Coordinator) getRaw(ctx context.Context, key string) ([]byte, bool) {
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	raw, err := c.store.Get(opCtx, key)
	switch {
	case err == nil:
		cacheRequests.WithLabelValues(c.store.Name(), "hit").Inc()
		return raw, true
	case errors.Is(err, ErrMiss):
		cacheRequests.WithLabelValues(c.store.Name(), "miss").Inc()
	default:
		cacheRequests.WithLabelValues(c.store.Name(), "error").Inc()
		c.logger.Warn("cache get failed, falling through", zap.String("cacheKey", key), zap.Error(err))
	}
	return nil, false
}

// Set stores v under key for ttl, overwriting any existing entry
// Set 以 ttl 写入 v，覆盖已有条目
func (c *Coordinator) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	raw, err := codec.Marshal(v)
	if err != nil {
		cacheErrors.WithLabelValues(c.store.Name(), "encode").Inc()
		c.logger.Warn("cache encode failed", zap.String("cacheKey", key), zap.Error(err))
		return
	}
	c.setRaw(ctx, key, raw, ttl)
}

func (c *Coordinator) setRaw(ctx context.Context, key string, raw []byte, ttl time.Duration) {
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.store.Set(opCtx, key, raw, ttl); err != nil {
		cacheErrors.WithLabelValues(c.store.Name(), "set").Inc()
		c.logger.Warn("cache set failed", zap.String("cacheKey", key), zap.Error(err))
	}
}

// DeleteByExactKeys 删除指定键
func (c *Coordinator) DeleteByExactKeys(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	cacheInvalidations.WithLabelValues(c.store.Name(), "exact").Inc()
	if err := c.store.Delete(opCtx, keys...); err != nil {
		cacheErrors.WithLabelValues(c.store.Name(), "delete").Inc()
		c.logger.Warn("cache delete failed, entries expire by ttl", zap.Strings("cacheKeys", keys), zap.Error(err))
	}
}

// DeleteByPattern 删除所有以 prefix 开头的键
func (c *Coordinator) DeleteByPattern(ctx context.Context, prefix string) {
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	cacheInvalidations.WithLabelValues(c.store.Name(), "prefix").Inc()
	if err := c.store.DeletePrefix(opCtx, prefix); err != nil {
		cacheErrors.WithLabelValues(c.store.Name(), "deletePrefix").Inc()
		c.logger.Warn("cache prefix delete failed, entries expire by ttl", zap.String("cacheKey", prefix), zap.Error(err))
	}
}

// Remember serves key from cache, or calls load once for all concurrent callers, caches and decodes the result into dst.
// Errors from load are returned and never cached.
// Remember 命中时直接返回；未命中时并发请求共享一次 load 调用，结果写入缓存并解码到 dst。
// load 的错误原样返回，不会写入缓存。
func (c *Coordinator) Remember(ctx context.Context, key string, ttl time.Duration, dst interface{}, load func(ctx context.Context) (interface{}, error)) error {
	if raw, ok := c.getRaw(ctx, key); ok {
		if err := codec.Unmarshal(raw, dst); err == nil {
			return nil
		}
		cacheErrors.WithLabelValues(c.store.Name(), "decode").Inc()
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := codec.Marshal(val)
		if err != nil {
			return nil, err
		}
		c.setRaw(ctx, key, raw, ttl)
		return raw, nil
	})
	if err != nil {
		return err
	}
	return codec.Unmarshal(v.([]byte), dst)
}

// Sweep removes expired entries when the backend needs it
// Sweep 对需要的后端执行过期清理
func (c *Coordinator) Sweep() int {
	sw, ok := c.store.(Sweeper)
	if !ok {
		return 0
	}
	n := sw.Sweep()
	if n > 0 {
		cacheSwept.WithLabelValues(c.store.Name()).Add(float64(n))
	}
	return n
}
