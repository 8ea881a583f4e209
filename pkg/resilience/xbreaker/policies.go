package xbreaker

// TripPolicy 判定 Closed 状态下是否打开熔断。
type TripPolicy interface {
	ReadyToTrip(counts Counts) bool
}

// TripFunc 函数形式的 TripPolicy。
type TripFunc func(Counts) bool

func (f TripFunc) ReadyToTrip(c Counts) bool { return f(c) }

// ConsecutiveFailures 连续失败 n 次后打开。
func ConsecutiveFailures(n uint32) TripPolicy {
	return TripFunc(func(c Counts) bool {
		return c.ConsecutiveFailures >= max(n, 1)
	})
}

// FailureRatio 请求数不少于 minRequests 且失败率不低于 ratio 时打开。ratio 截断到 [0, 1]。
func FailureRatio(ratio float64, minRequests uint32) TripPolicy {
	ratio = min(max(ratio, 0), 1)
	return TripFunc(func(c Counts) bool {
		if c.Requests == 0 || c.Requests < minRequests {
			return false
		}
		return float64(c.TotalFailures)/float64(c.Requests) >= ratio
	})
}
