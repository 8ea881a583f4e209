package storageopt

import "sync/atomic"

// HealthCounter 健康检查计数器。
type HealthCounter struct {
	pingCount  atomic.Int64
	pingErrors atomic.Int64
}

// IncPing 增加 ping 计数。
func (h *HealthCounter) IncPing() { h.pingCount.Add(1) }

// IncPingError 增加 ping 错误计数。
func (h *HealthCounter) IncPingError() { h.pingErrors.Add(1) }

// PingCount 返回 ping 计数。
func (h *HealthCounter) PingCount() int64 { return h.pingCount.Load() }

// PingErrors 返回 ping 错误计数。
func (h *HealthCounter) PingErrors() int64 { return h.pingErrors.Load() }

// QueryCounter 查询计数器。
type QueryCounter struct {
	queries atomic.Int64
	errors  atomic.Int64
	slow    atomic.Int64
}

// Observe 记录一次查询结果。
func (q *QueryCounter) Observe(err error, slow bool) {
	q.queries.Add(1)
	if err != nil {
		q.errors.Add(1)
	}
	if slow {
		q.slow.Add(1)
	}
}

// Queries 返回查询次数。
func (q *QueryCounter) Queries() int64 { return q.queries.Load() }

// Errors 返回失败查询次数。
func (q *QueryCounter) Errors() int64 { return q.errors.Load() }

// Slow 返回慢查询次数。
func (q *QueryCounter) Slow() int64 { return q.slow.Load() }
