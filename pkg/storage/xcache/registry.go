package xcache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Registry 按名称管理一组缓存实例。实例的可选项在创建时统一注入。
type Registry struct {
	opts []Option

	mu     sync.RWMutex
	caches map[string]*Cache
	closed bool
}

// DefaultConfigs 店铺前台使用的预置实例。
func DefaultConfigs() []Config {
	return []Config{
		{Name: "products", TTL: 10 * time.Minute, MaxEntries: 5000, MaxBytes: 64 << 20, Compress: true},
		{Name: "categories", TTL: 30 * time.Minute, MaxEntries: 500, MaxBytes: 8 << 20},
		{Name: "addresses", TTL: 5 * time.Minute, MaxEntries: 10000, MaxBytes: 16 << 20},
		{Name: "carts", TTL: 2 * time.Minute, MaxEntries: 10000, MaxBytes: 32 << 20, Compress: true},
		{Name: "orders", TTL: time.Minute, MaxEntries: 5000, MaxBytes: 32 << 20, Compress: true},
	}
}

// NewRegistry 按 cfgs 创建注册表。任一实例创建失败时关闭已创建的实例并返回错误。
func NewRegistry(cfgs []Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		opts:   slices.Clone(opts),
		caches: make(map[string]*Cache, len(cfgs)),
	}
	for _, cfg := range cfgs {
		if _, err := r.Register(cfg); err != nil {
			r.closeAll()
			return nil, err
		}
	}
	return r, nil
}

// Register 创建并登记一个实例。opts 追加在注册表公共选项之后。
func (r *Registry) Register(cfg Config, opts ...Option) (*Cache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if _, ok := r.caches[cfg.Name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCache, cfg.Name)
	}
	all := append(slices.Clone(r.opts), opts...)
	c, err := New(cfg, all...)
	if err != nil {
		return nil, fmt.Errorf("register cache %q: %w", cfg.Name, err)
	}
	r.caches[cfg.Name] = c
	return c, nil
}

// Cache 按名称查找实例。
func (r *Registry) Cache(name string) (*Cache, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[name]
	return c, ok
}

// MustCache 按名称查找实例，不存在时 panic。只用于启动阶段的固定名称。
func (r *Registry) MustCache(name string) *Cache {
	c, ok := r.Cache(name)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnknownCache, name))
	}
	return c
}

// Names 返回已登记的实例名，按字典序。
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.caches))
	for name := range r.caches {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Stats 返回全部实例的统计快照，按名称排序。
func (r *Registry) Stats() []Stats {
	names := r.Names()
	out := make([]Stats, 0, len(names))
	for _, name := range names {
		if c, ok := r.Cache(name); ok {
			out = append(out, c.Size())
		}
	}
	return out
}

// Close 并发关闭全部实例。ctx 先结束时返回 ctx.Err()，剩余实例在后台继续关闭。
// 重复调用返回 nil。
func (r *Registry) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	caches := make([]*Cache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		closeCaches(caches)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close registry: %w", ctx.Err())
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	r.closed = true
	caches := make([]*Cache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.mu.Unlock()
	closeCaches(caches)
}

func closeCaches(caches []*Cache) {
	var wg sync.WaitGroup
	for _, c := range caches {
		wg.Go(c.Close)
	}
	wg.Wait()
}

type registryKey struct{}

// WithRegistry 把注册表放入 ctx。
func WithRegistry(ctx context.Context, r *Registry) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, registryKey{}, r)
}

// FromContext 取出 WithRegistry 放入的注册表。
func FromContext(ctx context.Context) (*Registry, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(registryKey{}).(*Registry)
	return r, ok && r != nil
}

