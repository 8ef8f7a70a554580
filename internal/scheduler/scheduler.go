package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TaraJura/trade-bot/internal/metrics"
	"github.com/TaraJura/trade-bot/pkg/sigchan"
	"github.com/TaraJura/trade-bot/pkg/syncgroup"
)

var log = logrus.WithField("module", "scheduler")

// Resource 被轮询的后端资源
type Resource string

const (
	ResourceStatus     Resource = "status"
	ResourceStatistics Resource = "statistics"
	ResourcePositions  Resource = "positions"
	ResourceBalances   Resource = "balances"
)

// FetchFunc 拉取一次资源
type FetchFunc func(ctx context.Context) (any, error)

// Job 一个周期性资源
type Job struct {
	Resource Resource
	Interval time.Duration
	Fetch    FetchFunc
	// Immediate 启动时立即拉取一次
	Immediate bool
}

// Event 一次拉取的结果
type Event struct {
	Resource Resource
	Value    any
	Err      error
	At       time.Time
	Duration time.Duration
}

// Handler 接收拉取结果；可能在任意 goroutine 上被调用
type Handler func(Event)

// Stats 单个资源的计数
type Stats struct {
	Fetches  int64
	Failures int64
	// Skipped 因上一次仍在进行而跳过的 tick/trigger
	Skipped int64
}

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrUnknown        = errors.New("unknown resource")
)

type jobState struct {
	job      Job
	inFlight atomic.Bool
	// pending 在途期间收到 Trigger，在途结束后补一次拉取
	pending atomic.Bool
	trigger *sigchan.Chan

	fetches  atomic.Int64
	failures atomic.Int64
	skipped  atomic.Int64
}

// Scheduler 统一调度所有轮询资源
//
// 每个资源一个循环：定时 tick、Trigger 触发都走同一个 in-flight 守卫，
// 同一资源同一时刻最多只有一个请求在途。
type Scheduler struct {
	handler Handler
	timeout time.Duration

	mu      sync.Mutex
	jobs    map[Resource]*jobState
	order   []Resource
	started bool

	group *syncgroup.SyncGroup
}

// New timeout 为单次拉取的超时（<=0 不限制）
func New(handler Handler, timeout time.Duration) *Scheduler {
	if handler == nil {
		handler = func(Event) {}
	}
	return &Scheduler{
		handler: handler,
		timeout: timeout,
		jobs:    make(map[Resource]*jobState),
		group:   syncgroup.NewSyncGroup(),
	}
}

// Register 登记资源，必须在 Start 之前调用
func (s *Scheduler) Register(job Job) error {
	if job.Resource == "" {
		return errors.New("resource is required")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("%s: interval must be positive", job.Resource)
	}
	if job.Fetch == nil {
		return fmt.Errorf("%s: fetch is required", job.Resource)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	if _, ok := s.jobs[job.Resource]; ok {
		return fmt.Errorf("%s: already registered", job.Resource)
	}
	s.jobs[job.Resource] = &jobState{job: job, trigger: sigchan.New(1)}
	s.order = append(s.order, job.Resource)
	return nil
}

// Resources 已登记的资源（登记顺序）
func (s *Scheduler) Resources() []Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Resource(nil), s.order...)
}

// Start 启动所有资源循环，ctx 取消后全部退出
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	states := make([]*jobState, 0, len(s.order))
	for _, r := range s.order {
		states = append(states, s.jobs[r])
	}
	s.mu.Unlock()

	for _, js := range states {
		js := js
		s.group.Add(func() { s.loop(ctx, js) })
	}
	s.group.Run()
	log.Infof("调度器已启动，资源数=%d", len(states))
	return nil
}

// Trigger 请求立即刷新（不阻塞）；未被消费前的多次触发合并为一次
func (s *Scheduler) Trigger(resource Resource) error {
	s.mu.Lock()
	js, ok := s.jobs[resource]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", resource, ErrUnknown)
	}
	js.trigger.Emit()
	return nil
}

// Wait 等待所有循环和在途请求退出
func (s *Scheduler) Wait() {
	s.group.Wait()
}

// Stats 读取资源计数
func (s *Scheduler) Stats(resource Resource) Stats {
	s.mu.Lock()
	js, ok := s.jobs[resource]
	s.mu.Unlock()
	if !ok {
		return Stats{}
	}
	return Stats{
		Fetches:  js.fetches.Load(),
		Failures: js.failures.Load(),
		Skipped:  js.skipped.Load(),
	}
}

// 拉取原因
const (
	reasonStartup = "startup"
	reasonTick    = "tick"
	reasonTrigger = "trigger"
)

func (s *Scheduler) loop(ctx context.Context, js *jobState) {
	ticker := time.NewTicker(js.job.Interval)
	defer ticker.Stop()

	if js.job.Immediate {
		s.fire(ctx, js, reasonStartup)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx, js, reasonTick)
		case <-js.trigger.C():
			s.fire(ctx, js, reasonTrigger)
		}
	}
}

// fire 同一资源同一时刻只有一个请求在途。
// 在途期间的 tick 直接丢弃；Trigger 记为 pending，在途结束后补拉一次，
// 并且丢弃在途请求的旧结果（它可能早于刚完成的写操作）。
func (s *Scheduler) fire(ctx context.Context, js *jobState, reason string) {
	if ctx.Err() != nil {
		return
	}
	if !js.inFlight.CompareAndSwap(false, true) {
		js.skipped.Add(1)
		metrics.RecordSkip(string(js.job.Resource))
		if reason == reasonTrigger {
			js.pending.Store(true)
			// 在途请求可能恰好在 Store 之前结束
			s.flushPending(js)
		}
		log.Debugf("%s 仍在请求中，跳过本次 %s", js.job.Resource, reason)
		return
	}

	s.group.Go(func() {
		defer s.flushPending(js)
		defer js.inFlight.Store(false)

		fctx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		value, err := js.job.Fetch(fctx)
		js.fetches.Add(1)
		if err != nil {
			js.failures.Add(1)
		}
		metrics.RecordFetch(string(js.job.Resource), err)
		if ctx.Err() != nil {
			// 已关闭，丢弃结果
			return
		}
		if js.pending.Load() {
			log.Debugf("%s 在途期间被触发，丢弃旧结果", js.job.Resource)
			return
		}
		s.handler(Event{
			Resource: js.job.Resource,
			Value:    value,
			Err:      err,
			At:       time.Now(),
			Duration: time.Since(start),
		})
	})
}

// flushPending 无请求在途且有 pending 时补发一次触发
func (s *Scheduler) flushPending(js *jobState) {
	if js.inFlight.Load() {
		return
	}
	if js.pending.CompareAndSwap(true, false) {
		js.trigger.Emit()
	}
}
