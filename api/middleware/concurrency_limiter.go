package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/anoixa/photo-share/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter 限制同时处理的请求数，上传会把整张图片读入内存
type ConcurrencyLimiter struct {
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	rejected atomic.Int64
}

// NewConcurrencyLimiter 并发限制器，maxConcurrency <= 0 时使用 100
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	if maxConcurrency <= 0 {
		maxConcurrency = 100
	}
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 超出并发时立即返回 503
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			cl.rejected.Add(1)
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			return
		}
		cl.serve(c)
	}
}

// MiddlewareWithBlock 最多等待 timeout 再拒绝
func (cl *ConcurrencyLimiter) MiddlewareWithBlock(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := cl.sem.Acquire(ctx, 1); err != nil {
			cl.rejected.Add(1)
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Request timed out waiting for server resources")
			return
		}
		cl.serve(c)
	}
}

func (cl *ConcurrencyLimiter) serve(c *gin.Context) {
	cl.inFlight.Add(1)
	defer func() {
		cl.inFlight.Add(-1)
		cl.sem.Release(1)
	}()
	c.Next()
}

// Stats 当前并发与累计拒绝数
func (cl *ConcurrencyLimiter) Stats() map[string]int64 {
	return map[string]int64{
		"in_flight": cl.inFlight.Load(),
		"rejected":  cl.rejected.Load(),
	}
}
