package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind 通知类型
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL 通知默认停留时间
const DefaultTTL = 3 * time.Second

// Notice 一条瞬时通知
type Notice struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Center 通知中心：每条通知独立计时，互不影响
type Center struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	notices map[string]Notice
}

// NewCenter ttl<=0 时使用 DefaultTTL
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl:     ttl,
		now:     time.Now,
		notices: make(map[string]Notice),
	}
}

// SetClock 测试用
func (c *Center) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TTL 通知停留时间
func (c *Center) TTL() time.Duration { return c.ttl }

// Notify 追加一条通知并返回它
func (c *Center) Notify(message string, kind Kind) Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := Notice{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.notices[n.ID] = n
	return n
}

// Success 成功通知
func (c *Center) Success(message string) Notice { return c.Notify(message, KindSuccess) }

// Error 错误通知
func (c *Center) Error(message string) Notice { return c.Notify(message, KindError) }

// Dismiss 移除指定通知（不存在时返回 false）
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.notices[id]; !ok {
		return false
	}
	delete(c.notices, id)
	return true
}

// Expire 清理所有已到期的通知，返回清理条数
func (c *Center) Expire() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for id, n := range c.notices {
		if !now.Before(n.ExpiresAt) {
			delete(c.notices, id)
			removed++
		}
	}
	return removed
}

// Active 未到期的通知，按创建时间排序
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make([]Notice, 0, len(c.notices))
	for _, n := range c.notices {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len 当前保存的通知数（含尚未清理的过期通知）
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notices)
}
