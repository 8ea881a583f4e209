package xcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
)

// EventType 缓存事件类型。
type EventType string

const (
	EventHit               EventType = "hit"
	EventMiss              EventType = "miss"
	EventSet               EventType = "set"
	EventDelete            EventType = "delete"
	EventEvict             EventType = "evict"
	EventClear             EventType = "clear"
	EventInvalidatePattern EventType = "invalidate_pattern"
	EventError             EventType = "error"

	// EventAll 订阅全部事件类型。
	EventAll EventType = "*"
)

// 淘汰原因
const (
	ReasonCapacity = "capacity"
	ReasonExpired  = "expired"
)

// Event 一次缓存事件。
type Event struct {
	Type  EventType
	Cache string
	Key   string
	// Reason 淘汰原因（evict），或失效模式（invalidate_pattern）
	Reason string
	// Count 批量操作影响的条目数（clear、invalidate_pattern）
	Count int
	// Size 条目的存储字节数（set、evict）
	Size int
	// Err 仅 error 事件携带，为 *OpError
	Err  error
	Time time.Time
}

// Handler 事件处理函数。在缓存锁释放后同步调用，应保持轻量。
type Handler func(Event)

// Subscription 订阅标识，用于 Off。
type Subscription uint64

type subscriber struct {
	id    Subscription
	fn    Handler
	once  bool
	fired atomic.Bool
}

// Bus 同步回调式事件总线。handler 的 panic 被恢复并记录，不影响其余 handler 和发布方。
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]*subscriber
	nextID   atomic.Uint64
	logger   xlog.Logger
}

// NewBus 创建事件总线，logger 为 nil 时使用 xlog.Default()。
func NewBus(logger xlog.Logger) *Bus {
	if logger == nil {
		logger = xlog.Default()
	}
	return &Bus{
		handlers: make(map[EventType][]*subscriber),
		logger:   logger,
	}
}

// On 订阅事件，返回订阅标识。h 为 nil 时返回 0。
func (b *Bus) On(t EventType, h Handler) Subscription {
	return b.subscribe(t, h, false)
}

// Once 订阅事件，只触发一次。
func (b *Bus) Once(t EventType, h Handler) Subscription {
	return b.subscribe(t, h, true)
}

func (b *Bus) subscribe(t EventType, h Handler, once bool) Subscription {
	if h == nil {
		return 0
	}
	s := &subscriber{id: Subscription(b.nextID.Add(1)), fn: h, once: once}
	b.mu.Lock()
	b.handlers[t] = append(b.handlers[t], s)
	b.mu.Unlock()
	return s.id
}

// Off 取消订阅。不传 subs 时移除该类型的全部 handler。返回移除数量。
func (b *Bus) Off(t EventType, subs ...Subscription) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[t]
	if len(subs) == 0 {
		delete(b.handlers, t)
		return len(list)
	}
	kept := list[:0:0]
	for _, s := range list {
		if !containsSub(subs, s.id) {
			kept = append(kept, s)
		}
	}
	removed := len(list) - len(kept)
	if len(kept) == 0 {
		delete(b.handlers, t)
	} else {
		b.handlers[t] = kept
	}
	return removed
}

func containsSub(subs []Subscription, id Subscription) bool {
	for _, s := range subs {
		if s == id {
			return true
		}
	}
	return false
}

// Len 返回某类型的 handler 数量。
func (b *Bus) Len(t EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t])
}

// Emit 依次调用该类型和 EventAll 的 handler。
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	typed := b.handlers[e.Type]
	all := b.handlers[EventAll]
	if len(typed) == 0 && len(all) == 0 {
		b.mu.RUnlock()
		return
	}
	subs := make([]*subscriber, 0, len(typed)+len(all))
	subs = append(subs, typed...)
	subs = append(subs, all...)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.once {
			if !s.fired.CompareAndSwap(false, true) {
				continue
			}
			b.Off(e.Type, s.id)
			b.Off(EventAll, s.id)
		}
		b.call(s, e)
	}
}

func (b *Bus) call(s *subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn(context.Background(), "cache event handler panicked",
				xlog.Cache(e.Cache),
				xlog.Operation(string(e.Type)),
				xlog.Err(fmt.Errorf("panic: %v", r)),
			)
		}
	}()
	s.fn(e)
}
