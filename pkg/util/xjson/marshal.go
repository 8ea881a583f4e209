package xjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMarshal 表示 JSON 序列化失败。
var ErrMarshal = errors.New("xjson: marshal failed")

// Canonical 将 v 序列化为规范化 JSON。
//
// 与 json.Marshal 的区别：不转义 <、>、&，不带结尾换行。
// map 键总是按字典序输出，因此相等的 map 得到相同的字节。
func Canonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	// Encoder 总会追加一个换行符
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// CanonicalString 与 Canonical 相同，返回字符串。
func CanonicalString(v any) (string, error) {
	data, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PrettyE 将任意值序列化为格式化的 JSON 字符串。
func PrettyE(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return string(data), nil
}

// Pretty 将任意值序列化为格式化的 JSON 字符串。
// 用于日志和调试输出。序列化失败时返回 "<marshal error: ...>"。
func Pretty(v any) string {
	s, err := PrettyE(v)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return s
}
