package xcache

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
)

func newBenchCache(b *testing.B, cfg Config) *Cache {
	b.Helper()
	cfg.Name = "bench"
	cfg.SweepInterval = -1
	c, err := New(cfg, WithLogger(xlog.Discard()))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(c.Close)
	return c
}

func BenchmarkGet_Hit(b *testing.B) {
	c := newBenchCache(b, Config{})
	v := product{ID: "1", Name: "Mug", Price: 999}
	c.Set("k", v)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		var got product
		for pb.Next() {
			c.Get("k", &got)
		}
	})
}

func BenchmarkSet(b *testing.B) {
	c := newBenchCache(b, Config{MaxEntries: 10000})
	v := product{ID: "1", Name: "Mug", Price: 999}
	keys := make([]string, 20000)
	for i := range keys {
		keys[i] = fmt.Sprintf("products:id=%d", i)
	}

	b.ReportAllocs()
	i := 0
	for b.Loop() {
		c.Set(keys[i%len(keys)], v)
		i++
	}
}

func BenchmarkSet_Compressed(b *testing.B) {
	c := newBenchCache(b, Config{Compress: true})
	v := product{ID: "1", Name: strings.Repeat("description ", 2000)}

	b.ReportAllocs()
	for b.Loop() {
		c.Set("k", v)
	}
}

func BenchmarkGetOrSet_Hit(b *testing.B) {
	c := newBenchCache(b, Config{})
	ctx := context.Background()
	compute := func(context.Context) (int, error) { return 1, nil }
	_, _ = GetOrSet(ctx, c, "k", compute)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = GetOrSet(ctx, c, "k", compute)
		}
	})
}
