package limiter

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// DefaultMaxClients 客户端桶数量上限，超过后整体重置
const DefaultMaxClients = 10000

// ClientLimiter 按 (路由, 客户端) 限流，桶按需创建
// 规则以路由模板为键注册，每个客户端拿到该规则的独立副本
type ClientLimiter struct {
	mu         sync.Mutex
	rules      map[string]BucketRule
	buckets    map[string]*ratelimit.Bucket
	maxClients int
	identify   func(c *gin.Context) string
}

func newClientLimiter(maxClients int, identify func(c *gin.Context) string) *ClientLimiter {
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &ClientLimiter{
		rules:      make(map[string]BucketRule),
		buckets:    make(map[string]*ratelimit.Bucket),
		maxClients: maxClients,
		identify:   identify,
	}
}

// NewIPLimiter 创建按客户端 IP 限流的限流器
func NewIPLimiter(maxClients int) *ClientLimiter {
	return newClientLimiter(maxClients, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// NewUserLimiter creates a limiter keyed by the authenticated user; requests without a
// user fall back to the client IP
// NewUserLimiter 创建按登录用户限流的限流器，取不到用户时退回到客户端 IP
func NewUserLimiter(maxClients int, uid func(c *gin.Context) string) *ClientLimiter {
	return newClientLimiter(maxClients, func(c *gin.Context) string {
		if id := uid(c); id != "" {
			return "uid:" + id
		}
		return "ip:" + c.ClientIP()
	})
}

// Key {route}|{client}
func (l *ClientLimiter) Key(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return route + "|" + l.identify(c)
}

// GetBucket 返回客户端的令牌桶；路由没有规则时返回 false
func (l *ClientLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	route := key
	if i := strings.IndexByte(key, '|'); i >= 0 {
		route = key[:i]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rule, ok := l.rules[route]
	if !ok {
		return nil, false
	}
	if b, ok := l.buckets[key]; ok {
		return b, true
	}
	if len(l.buckets) >= l.maxClients {
		// TODO: replace the wholesale reset with per-bucket idle eviction
		l.buckets = make(map[string]*ratelimit.Bucket)
	}
	b := rule.newBucket()
	l.buckets[key] = b
	return b, true
}

func (l *ClientLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range rules {
		l.rules[r.Key] = r
	}
	return l
}
