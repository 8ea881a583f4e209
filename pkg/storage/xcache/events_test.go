package xcache

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/observability/xmetrics"
)

func TestBus_OnOff(t *testing.T) {
	b := NewBus(xlog.Discard())
	var hits, all atomic.Int32

	s1 := b.On(EventHit, func(Event) { hits.Add(1) })
	b.On(EventAll, func(Event) { all.Add(1) })
	assert.NotZero(t, s1)
	assert.Zero(t, b.On(EventHit, nil))

	b.Emit(Event{Type: EventHit})
	b.Emit(Event{Type: EventMiss})
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int32(2), all.Load())

	assert.Equal(t, 1, b.Off(EventHit, s1))
	assert.Equal(t, 0, b.Off(EventHit, s1))
	b.Emit(Event{Type: EventHit})
	assert.Equal(t, int32(1), hits.Load())

	assert.Equal(t, 1, b.Off(EventAll))
	assert.Equal(t, 0, b.Len(EventAll))
}

func TestBus_Once(t *testing.T) {
	b := NewBus(xlog.Discard())
	var n atomic.Int32
	b.Once(EventSet, func(Event) { n.Add(1) })

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() { b.Emit(Event{Type: EventSet}) })
	}
	wg.Wait()

	assert.Equal(t, int32(1), n.Load())
	assert.Equal(t, 0, b.Len(EventSet))
}

func TestBus_PanicIsolated(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := xlog.New().SetOutput(&buf).SetFormat("json").Build()
	require.NoError(t, err)

	b := NewBus(logger)
	var after atomic.Bool
	b.On(EventError, func(Event) { panic("handler bug") })
	b.On(EventError, func(Event) { after.Store(true) })

	assert.NotPanics(t, func() { b.Emit(Event{Type: EventError, Cache: "products"}) })
	assert.True(t, after.Load(), "remaining handlers still run")
	assert.Contains(t, buf.String(), "cache event handler panicked")
	assert.Contains(t, buf.String(), "handler bug")
}

func TestBus_NilLogger(t *testing.T) {
	b := NewBus(nil)
	assert.NotNil(t, b.logger)
}

func TestCache_EventFields(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, Config{Name: "carts"}, WithClock(clock.Now))
	events := recordEvents(c)

	require.True(t, c.Set("carts:user=1", sized(10)))
	var s string
	c.Get("carts:user=1", &s)
	c.Get("carts:user=2", &s)

	got := events()
	require.Len(t, got, 3)
	assert.Equal(t, Event{Type: EventSet, Cache: "carts", Key: "carts:user=1", Size: 10, Time: clock.Now()}, got[0])
	assert.Equal(t, EventHit, got[1].Type)
	assert.Equal(t, EventMiss, got[2].Type)
	assert.Equal(t, "carts:user=2", got[2].Key)
}

func TestCache_RecorderSubscribed(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	rec, err := xmetrics.NewRecorder(xmetrics.WithMeterProvider(mp))
	require.NoError(t, err)

	c := newTestCache(t, Config{Name: "orders"}, WithRecorder(rec))
	require.True(t, c.Set("k", 1))
	c.Has("k")
	c.Has("missing")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "shopcache.cache.events" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				cache, _ := dp.Attributes.Value("cache")
				event, _ := dp.Attributes.Value("event")
				counts[cache.AsString()+"/"+event.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), counts["orders/set"])
	assert.Equal(t, int64(1), counts["orders/hit"])
	assert.Equal(t, int64(1), counts["orders/miss"])
}
