package xmongo

// Stats 包装器统计信息。
type Stats struct {
	PingCount   int64 `json:"ping_count"`
	PingErrors  int64 `json:"ping_errors"`
	Queries     int64 `json:"queries"`
	QueryErrors int64 `json:"query_errors"`
	SlowQueries int64 `json:"slow_queries"`

	// Sessions 活跃会话数，driver v2 不暴露连接池细节，以此近似使用中连接。
	Sessions int `json:"sessions"`
}
