package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch SCAN 每批数量
const scanBatch = 500

// RedisOptions redis 后端配置
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore redis 后端，前缀删除使用 SCAN + DEL，不阻塞服务端
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore 创建 redis 后端
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	return &RedisStore{client: client, prefix: opts.KeyPrefix}
}

// NewRedisStoreWithClient 使用已有客户端创建 redis 后端
func NewRedisStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, prefix: keyPrefix}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	match := escapeGlob(s.prefix+prefix) + "*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping 检查连接
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭客户端
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// escapeGlob escapes redis MATCH metacharacters so a key prefix is matched literally
// escapeGlob 转义 redis MATCH 的通配字符，使前缀按字面匹配
func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\', '^', '-':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
