package middleware

import (
	"sync"
	"time"

	"github.com/haierkeys/fast-note-client/pkg/app"
	"github.com/haierkeys/fast-note-client/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// LimiterBucketRule 令牌桶规则
type LimiterBucketRule struct {
	// FillInterval 每隔多久放入 Quantum 个令牌
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次放入的令牌数
	Quantum int64
}

// IPLimiter keeps one token bucket per client IP and route.
// IPLimiter 按客户端 IP + 路由划分令牌桶
type IPLimiter struct {
	rule    LimiterBucketRule
	mu      sync.Mutex
	buckets map[string]*ratelimit.Bucket
}

// NewIPLimiter 创建限流器，规则缺省值为每秒 10 个令牌，容量 20
func NewIPLimiter(rule LimiterBucketRule) *IPLimiter {
	if rule.FillInterval <= 0 {
		rule.FillInterval = time.Second
	}
	if rule.Capacity <= 0 {
		rule.Capacity = 20
	}
	if rule.Quantum <= 0 {
		rule.Quantum = 10
	}
	return &IPLimiter{rule: rule, buckets: map[string]*ratelimit.Bucket{}}
}

// Key 生成限流键
func (l *IPLimiter) Key(c *gin.Context) string {
	return app.GetRequestIP(c) + " " + c.FullPath()
}

// GetBucket 获取（或创建）键对应的令牌桶
func (l *IPLimiter) GetBucket(key string) *ratelimit.Bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = ratelimit.NewBucketWithQuantum(l.rule.FillInterval, l.rule.Capacity, l.rule.Quantum)
		l.buckets[key] = bucket
	}
	return bucket
}

// RateLimiter 创建限流中间件
func RateLimiter(l *IPLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.GetBucket(l.Key(c)).TakeAvailable(1) == 0 {
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
