package xcache

import (
	"container/heap"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// entry 单个缓存条目。除 payload 外的字段只在实例锁内读写。
type entry struct {
	key            string
	payload        Payload
	insertedAt     time.Time
	expiresAt      time.Time
	lastAccessedAt time.Time
	heapIndex      int
}

func (e *entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// expiryHeap 按 expiresAt 排序的最小堆，供清扫逐条取出最早过期的条目。
type expiryHeap []*entry

func (h expiryHeap) Len() int { return len(h) }

func (h expiryHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }

func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *expiryHeap) Push(x any) {
	e := x.(*entry)
	e.heapIndex = len(*h)
	*h = append(*h, e)
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.heapIndex = -1
	*h = old[:n-1]
	return e
}

// store 条目存储：LRU 顺序由 simplelru 维护，字节计数与过期堆在此同步。
// 非并发安全，由 Cache 的锁保护。
//
// simplelru 的容量设为 maxEntries，但淘汰总是由 Cache 先行调用 removeOldest 完成，
// 因此 Add 不会触发内部淘汰，bytes 与过期堆始终与 LRU 内容一致。
type store struct {
	lru    *simplelru.LRU[string, *entry]
	expiry expiryHeap
	bytes  int64
}

func newStore(maxEntries int) (*store, error) {
	lru, err := simplelru.NewLRU[string, *entry](maxEntries, nil)
	if err != nil {
		return nil, err
	}
	return &store{lru: lru}, nil
}

func (s *store) len() int { return s.lru.Len() }

// peek 不改变 LRU 顺序。
func (s *store) peek(key string) (*entry, bool) {
	return s.lru.Peek(key)
}

// touch 把条目移到最近使用端并更新访问时间。
func (s *store) touch(e *entry, now time.Time) {
	s.lru.Get(e.key)
	e.lastAccessedAt = now
}

func (s *store) insert(e *entry) {
	s.lru.Add(e.key, e)
	heap.Push(&s.expiry, e)
	s.bytes += int64(e.payload.Size)
}

func (s *store) remove(key string) (*entry, bool) {
	e, ok := s.lru.Peek(key)
	if !ok {
		return nil, false
	}
	s.lru.Remove(key)
	s.unindex(e)
	return e, true
}

func (s *store) removeOldest() (*entry, bool) {
	_, e, ok := s.lru.RemoveOldest()
	if !ok {
		return nil, false
	}
	s.unindex(e)
	return e, true
}

// popExpired 移除并返回一条已过期的条目，没有时返回 nil。
func (s *store) popExpired(now time.Time) *entry {
	if len(s.expiry) == 0 || !s.expiry[0].expired(now) {
		return nil
	}
	e := s.expiry[0]
	s.lru.Remove(e.key)
	s.unindex(e)
	return e
}

func (s *store) unindex(e *entry) {
	if e.heapIndex >= 0 && e.heapIndex < len(s.expiry) && s.expiry[e.heapIndex] == e {
		heap.Remove(&s.expiry, e.heapIndex)
	}
	s.bytes -= int64(e.payload.Size)
}

// keys 按从最久到最近使用的顺序返回。
func (s *store) keys() []string {
	return s.lru.Keys()
}

func (s *store) clear() int {
	n := s.lru.Len()
	s.lru.Purge()
	s.expiry = nil
	s.bytes = 0
	return n
}
