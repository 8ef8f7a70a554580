package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter 速率限制器接口
type Limiter interface {
	Wait(ctx context.Context) error
}

// SlidingWindow 滑动窗口限流：任意 window 内最多 limit 次
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	requests []time.Time
}

// NewSlidingWindow limit<=0 时不限制
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// evictLocked 丢掉窗口外的记录
func (sw *SlidingWindow) evictLocked(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for i < len(sw.requests) && !sw.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		sw.requests = append(sw.requests[:0], sw.requests[i:]...)
	}
}

// allow 有额度则占用一次
func (sw *SlidingWindow) allow() bool {
	_, ok := sw.reserve()
	return ok
}

// reserve 成功时返回 0；失败时返回最早可用的等待时间
func (sw *SlidingWindow) reserve() (time.Duration, bool) {
	if sw.limit <= 0 {
		return 0, true
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	sw.evictLocked(now)
	if len(sw.requests) < sw.limit {
		sw.requests = append(sw.requests, now)
		return 0, true
	}
	return sw.requests[0].Add(sw.window).Sub(now), false
}

// Wait 阻塞直到拿到额度或 ctx 结束
func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for {
		wait, ok := sw.reserve()
		if ok {
			return nil
		}
		if wait <= 0 {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// remaining 当前窗口剩余次数；不限制时返回 -1
func (sw *SlidingWindow) remaining() int {
	if sw.limit <= 0 {
		return -1
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.evictLocked(sw.now())
	return sw.limit - len(sw.requests)
}
