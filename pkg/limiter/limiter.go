// Package limiter 基于令牌桶的请求限流
package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	Key          string        // 规则键，例如路由 /api/shared/:id
	FillInterval time.Duration // 放入令牌的间隔
	Capacity     int64         // 桶容量
	Quantum      int64         // 每次放入的令牌数
}

func (r BucketRule) newBucket() *ratelimit.Bucket {
	quantum := r.Quantum
	if quantum <= 0 {
		quantum = 1
	}
	return ratelimit.NewBucketWithQuantum(r.FillInterval, r.Capacity, quantum)
}
