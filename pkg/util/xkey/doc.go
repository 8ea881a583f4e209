// Package xkey 构造确定性的缓存键。
//
// 键的形式为 prefix:k1=v1&k2=v2，是 (prefix, params) 的纯函数：
// 相等的参数集合无论以何种顺序构造，都得到同一个键。
// 所有读写同一逻辑资源的调用方必须使用同一个构造方式，否则缓存条目会悄然分裂。
//
// 规则：
//   - 前缀只保留 [A-Za-z0-9_.:-]，参数名只保留 [A-Za-z0-9_.-]，清洗后为空的参数名被跳过
//   - nil 值（包括带类型的 nil 指针、map、slice）被跳过
//   - 标量按规范格式输出，time.Time 使用 UTC 的 RFC3339Nano
//   - 结构化值（map、slice、struct）使用 xjson.Canonical 序列化，map 键有序
//   - 值经过 URL 查询转义；超过 [MaxValueLen] 的值被截断，并追加 [TruncMarker]
//     和原值的 xxhash，使不同的长值不会碰撞
//   - 参数名按字典序排列，没有参数时使用 prefix:default
package xkey
