package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 默认防抖时间。
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 重载完成后调用，err 非 nil 表示重载或监视失败（此时配置保持旧值）。
// 回调中不得调用 Watcher.Close。
type WatchCallback func(cfg Config, err error)

// WatchOption 监视选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 设置防抖时间，时间窗内的多次变更只触发一次重载。d <= 0 忽略。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watcher 配置文件监视器。
type Watcher struct {
	cfg      *koanfConfig
	fs       *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	// cbWG 跟踪已触发的回调，Run 返回前等待它们结束
	cbWG sync.WaitGroup
}

// Watch 创建监视器。cfg 必须由 [New] 或 [Load] 创建。调用 Run 开始监视。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, ErrUnsupportedConfig
	}
	if kc.path == "" {
		return nil, ErrNotFromFile
	}

	o := &watchOptions{debounce: DefaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	// 监视目录而非文件：编辑器保存时常以 rename 替换文件
	dir := filepath.Dir(kc.path)
	if err := fs.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %s: %w", dir, err), fs.Close())
	}

	return &Watcher{
		cfg:      kc,
		fs:       fs,
		callback: callback,
		debounce: o.debounce,
	}, nil
}

// Run 阻塞监视直到 ctx 结束，返回 ctx.Err()。返回时已关闭底层 watcher，
// 且不会再有回调执行。Run 只能调用一次。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.shutdown()

	filename := filepath.Base(w.cfg.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) == filename && ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.notify(fmt.Errorf("xconf: watch error: %w", err))
		}
	}
}

// Close 停止监视。未调用 Run 时用于释放资源。幂等。
func (w *Watcher) Close() error {
	return w.shutdown()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.cbWG.Add(1)
	w.mu.Unlock()
	defer w.cbWG.Done()

	err := w.cfg.Reload()
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

func (w *Watcher) notify(err error) {
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

func (w *Watcher) shutdown() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.fs.Close()
	w.cbWG.Wait()
	return err
}
