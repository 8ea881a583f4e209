package admin

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/omeyang/shopcache/pkg/storage/xcache"
)

const namespace = "shopcache"

// StatsCollector 把注册表的实例统计导出为 Prometheus 指标，每次抓取时读取快照。
type StatsCollector struct {
	reg *xcache.Registry

	entries     *prometheus.Desc
	bytes       *prometheus.Desc
	maxBytes    *prometheus.Desc
	utilization *prometheus.Desc
	inFlight    *prometheus.Desc
	hits        *prometheus.Desc
	misses      *prometheus.Desc
	sets        *prometheus.Desc
	deletes     *prometheus.Desc
	evictions   *prometheus.Desc
	expirations *prometheus.Desc
	rejections  *prometheus.Desc
	errors      *prometheus.Desc
}

// NewStatsCollector 创建采集器。
func NewStatsCollector(reg *xcache.Registry) *StatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", name), help, []string{"cache"}, nil)
	}
	return &StatsCollector{
		reg:         reg,
		entries:     desc("entries", "Number of live entries."),
		bytes:       desc("bytes", "Stored bytes counted against the budget."),
		maxBytes:    desc("max_bytes", "Byte budget."),
		utilization: desc("utilization_ratio", "bytes / max_bytes."),
		inFlight:    desc("in_flight", "Computations currently in flight."),
		hits:        desc("hits_total", "Cache hits."),
		misses:      desc("misses_total", "Cache misses."),
		sets:        desc("sets_total", "Accepted writes."),
		deletes:     desc("deletes_total", "Explicit deletes."),
		evictions:   desc("evictions_total", "Capacity evictions."),
		expirations: desc("expirations_total", "TTL expirations."),
		rejections:  desc("rejections_total", "Writes rejected as oversized."),
		errors:      desc("errors_total", "Internal cache errors."),
	}
}

// Describe 实现 prometheus.Collector。
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.entries, c.bytes, c.maxBytes, c.utilization, c.inFlight,
		c.hits, c.misses, c.sets, c.deletes, c.evictions, c.expirations, c.rejections, c.errors,
	} {
		ch <- d
	}
}

// Collect 实现 prometheus.Collector。
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.reg == nil {
		return
	}
	for _, s := range c.reg.Stats() {
		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, s.Name)
		}
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), s.Name)
		}
		gauge(c.entries, float64(s.Entries))
		gauge(c.bytes, float64(s.Bytes))
		gauge(c.maxBytes, float64(s.MaxBytes))
		gauge(c.utilization, s.Utilization)
		gauge(c.inFlight, float64(s.InFlight))
		counter(c.hits, s.Hits)
		counter(c.misses, s.Misses)
		counter(c.sets, s.Sets)
		counter(c.deletes, s.Deletes)
		counter(c.evictions, s.Evictions)
		counter(c.expirations, s.Expirations)
		counter(c.rejections, s.Rejections)
		counter(c.errors, s.Errors)
	}
}

var _ prometheus.Collector = (*StatsCollector)(nil)
