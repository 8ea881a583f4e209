package xcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/util/xflight"
)

// Cache 字节预算 LRU 缓存实例。必须通过 [New] 创建，所有方法并发安全。
// Close 后读操作返回不存在，写操作静默忽略；nil *Cache 按已关闭处理。
type Cache struct {
	cfg    Config
	opts   options
	codec  *Codec
	bus    *Bus
	flight *xflight.Group
	logger xlog.Logger

	mu sync.Mutex
	st *store

	stats counters

	closed    atomic.Bool
	closeOnce sync.Once
	sweepStop context.CancelFunc
	sweepDone chan struct{}
}

type counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	sets        atomic.Uint64
	deletes     atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
	rejections  atomic.Uint64
	errors      atomic.Uint64
}

// Stats 实例的只读快照。
type Stats struct {
	Name       string `json:"name"`
	Entries    int    `json:"entries"`
	Bytes      int64  `json:"bytes"`
	MaxEntries int    `json:"max_entries"`
	MaxBytes   int64  `json:"max_bytes"`
	// Utilization Bytes/MaxBytes
	Utilization float64 `json:"utilization"`
	InFlight    int     `json:"in_flight"`

	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Sets        uint64 `json:"sets"`
	Deletes     uint64 `json:"deletes"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Rejections  uint64 `json:"rejections"`
	Errors      uint64 `json:"errors"`
}

// HitRatio 命中率，没有读取时为 0。
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New 创建缓存实例并启动后台清扫（SweepInterval < 0 时不启动）。
func New(cfg Config, opts ...Option) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	st, err := newStore(cfg.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	codec, err := NewCodec(o.codecOpts...)
	if err != nil {
		return nil, err
	}
	flight := xflight.New(xflight.WithTimeout(o.loadTimeout))

	logger := o.logger.With(xlog.Component("xcache"), xlog.Cache(cfg.Name))
	c := &Cache{
		cfg:    cfg,
		opts:   o,
		codec:  codec,
		bus:    NewBus(logger),
		flight: flight,
		logger: logger,
		st:     st,
	}
	if o.recorder != nil {
		rec := o.recorder
		c.bus.On(EventAll, func(e Event) {
			rec.Record(context.Background(), e.Cache, string(e.Type), e.Reason)
		})
	}
	c.startSweeper()
	return c, nil
}

// Name 返回实例名。
func (c *Cache) Name() string { return c.cfg.Name }

// Config 返回填充默认值后的配置。
func (c *Cache) Config() Config { return c.cfg }

// Events 返回实例的事件总线。
func (c *Cache) Events() *Bus { return c.bus }

// Get 读取 key 并解码到 dst（非 nil 指针）。
//
// 不存在、已过期、已关闭或解码失败时返回 false。过期条目在读取时移除；
// 负载损坏的条目被丢弃，同时发布 error 事件。dst 与存储的值不兼容时
// 按 miss 处理，条目保留。命中会刷新最近访问时间。
func (c *Cache) Get(key string, dst any) bool {
	e, ok := c.lookup("get", key)
	if !ok {
		return false
	}
	if err := c.codec.Decode(e.payload, dst); err != nil {
		if errors.Is(err, ErrDestination) {
			c.stats.misses.Add(1)
			c.emit(Event{Type: EventMiss, Key: key})
			return false
		}
		c.dropCorrupted(e)
		c.fail("get", key, err)
		return false
	}
	c.stats.hits.Add(1)
	c.emit(Event{Type: EventHit, Key: key})
	return true
}

// Has 报告 key 是否存在且未过期，语义同 Get 但不解码。
func (c *Cache) Has(key string) bool {
	if _, ok := c.lookup("has", key); !ok {
		return false
	}
	c.stats.hits.Add(1)
	c.emit(Event{Type: EventHit, Key: key})
	return true
}

// lookup 查找未过期条目并刷新访问时间；未命中时记录 miss（过期时先发布 evict）。
func (c *Cache) lookup(op, key string) (*entry, bool) {
	if c == nil || c.closed.Load() {
		return nil, false
	}
	if key == "" {
		c.fail(op, key, ErrEmptyKey)
		return nil, false
	}
	now := c.opts.now()

	c.mu.Lock()
	e, ok := c.st.peek(key)
	var expired *entry
	switch {
	case !ok:
	case e.expired(now):
		c.st.remove(key)
		expired, e, ok = e, nil, false
	default:
		c.st.touch(e, now)
	}
	c.mu.Unlock()

	if ok {
		return e, true
	}
	if expired != nil {
		c.stats.expirations.Add(1)
		c.emit(Event{Type: EventEvict, Key: key, Reason: ReasonExpired, Size: expired.payload.Size})
	}
	c.stats.misses.Add(1)
	c.emit(Event{Type: EventMiss, Key: key})
	return nil, false
}

// peekDecode 静默读取：不刷新顺序、不计数、不发布事件。用于 GetOrSet 的二次检查。
func (c *Cache) peekDecode(key string, dst any) bool {
	if c == nil || c.closed.Load() {
		return false
	}
	now := c.opts.now()
	c.mu.Lock()
	e, ok := c.st.peek(key)
	if ok && e.expired(now) {
		ok = false
	}
	c.mu.Unlock()
	return ok && c.codec.Decode(e.payload, dst) == nil
}

func (c *Cache) dropCorrupted(e *entry) {
	c.mu.Lock()
	if cur, ok := c.st.peek(e.key); ok && cur == e {
		c.st.remove(e.key)
	}
	c.mu.Unlock()
}

// Set 编码并写入 value，成功返回 true。
//
// 编码后大小超过 MaxBytes/10 时拒绝写入并保持状态不变。写入后按严格 LRU
// 逐个淘汰，直到条目数与字节预算都满足，每次淘汰发布一次 evict 事件。
func (c *Cache) Set(key string, value any, opts ...EntryOption) bool {
	if c == nil || c.closed.Load() {
		return false
	}
	if key == "" {
		c.fail("set", key, ErrEmptyKey)
		return false
	}
	eo := entryOptions{ttl: c.cfg.TTL, compress: c.cfg.Compress}
	for _, opt := range opts {
		if opt != nil {
			opt(&eo)
		}
	}

	p, err := c.codec.Encode(value, eo.compress)
	if err != nil {
		c.fail("set", key, err)
		return false
	}
	if limit := c.cfg.EntryLimit(); int64(p.Size) > limit {
		c.stats.rejections.Add(1)
		c.fail("set", key, fmt.Errorf("%w: %d bytes > limit %d", ErrCapacity, p.Size, limit))
		return false
	}

	now := c.opts.now()
	e := &entry{
		key:            key,
		payload:        p,
		insertedAt:     now,
		expiresAt:      now.Add(eo.ttl),
		lastAccessedAt: now,
	}

	var evicted []*entry
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return false
	}
	c.st.remove(key)
	for c.st.len() >= c.cfg.MaxEntries || c.st.bytes+int64(p.Size) > c.cfg.MaxBytes {
		victim, ok := c.st.removeOldest()
		if !ok {
			break
		}
		evicted = append(evicted, victim)
	}
	c.st.insert(e)
	c.mu.Unlock()

	for _, v := range evicted {
		c.stats.evictions.Add(1)
		c.emit(Event{Type: EventEvict, Key: v.key, Reason: ReasonCapacity, Size: v.payload.Size})
	}
	c.stats.sets.Add(1)
	c.emit(Event{Type: EventSet, Key: key, Size: p.Size})
	return true
}

// Delete 删除 key，返回是否存在。
func (c *Cache) Delete(key string) bool {
	if c == nil || c.closed.Load() {
		return false
	}
	c.mu.Lock()
	_, ok := c.st.remove(key)
	c.mu.Unlock()
	if ok {
		c.stats.deletes.Add(1)
		c.emit(Event{Type: EventDelete, Key: key})
	}
	return ok
}

// Clear 清空全部条目，字节计数归零。
func (c *Cache) Clear() {
	if c == nil || c.closed.Load() {
		return
	}
	c.mu.Lock()
	n := c.st.clear()
	c.mu.Unlock()
	c.emit(Event{Type: EventClear, Count: n})
}

// InvalidatePattern 删除所有匹配 m 的 key，返回删除数量。不匹配的 key 不受影响。
func (c *Cache) InvalidatePattern(m Matcher) int {
	if c == nil || c.closed.Load() || m == nil {
		return 0
	}
	c.mu.Lock()
	n := 0
	for _, k := range c.st.keys() {
		if m.Match(k) {
			c.st.remove(k)
			n++
		}
	}
	c.mu.Unlock()

	c.stats.deletes.Add(uint64(n))
	c.emit(Event{Type: EventInvalidatePattern, Reason: m.String(), Count: n})
	return n
}

// Keys 返回当前 key 列表（从最久到最近使用），可能包含尚未清扫的过期条目。
func (c *Cache) Keys() []string {
	if c == nil || c.closed.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.keys()
}

// Size 返回实例统计快照。
func (c *Cache) Size() Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{
		Name:       c.cfg.Name,
		MaxEntries: c.cfg.MaxEntries,
		MaxBytes:   c.cfg.MaxBytes,
	}
	if c.closed.Load() {
		return s
	}
	c.mu.Lock()
	s.Entries = c.st.len()
	s.Bytes = c.st.bytes
	c.mu.Unlock()

	s.Utilization = float64(s.Bytes) / float64(s.MaxBytes)
	s.InFlight = c.flight.Len()
	s.Hits = c.stats.hits.Load()
	s.Misses = c.stats.misses.Load()
	s.Sets = c.stats.sets.Load()
	s.Deletes = c.stats.deletes.Load()
	s.Evictions = c.stats.evictions.Load()
	s.Expirations = c.stats.expirations.Load()
	s.Rejections = c.stats.rejections.Load()
	s.Errors = c.stats.errors.Load()
	return s
}

// Close 停止清扫（最多等待 5s）、唤醒进行中的 GetOrSet 等待者并释放全部条目。幂等。
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.closed.Store(true)
	c.closeOnce.Do(func() {
		c.stopSweeper()
		_ = c.flight.Close()
		c.mu.Lock()
		c.st.clear()
		c.mu.Unlock()
		c.codec.Close()
		c.logger.Debug(context.Background(), "cache closed")
	})
}

// Closed 报告实例是否已关闭。
func (c *Cache) Closed() bool {
	return c == nil || c.closed.Load()
}

func (c *Cache) fail(op, key string, err error) {
	c.stats.errors.Add(1)
	c.emit(Event{Type: EventError, Key: key, Err: &OpError{Op: op, Cache: c.cfg.Name, Key: key, Err: err}})
}

// emit 补全公共字段、记录日志并发布。调用方不得持有 c.mu。
func (c *Cache) emit(e Event) {
	e.Cache = c.cfg.Name
	e.Time = c.opts.now()
	switch e.Type {
	case EventError:
		c.logger.Warn(context.Background(), "cache operation failed", xlog.Key(e.Key), xlog.Err(e.Err))
	case EventEvict:
		c.logger.Debug(context.Background(), "cache entry evicted", xlog.Key(e.Key), xlog.Reason(e.Reason))
	}
	c.bus.Emit(e)
}
