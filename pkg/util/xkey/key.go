package xkey

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/shopcache/pkg/util/xjson"
)

const (
	// MaxValueLen 单个编码后参数值的最大长度（不含截断后缀）。
	MaxValueLen = 128

	// TruncMarker 截断标记，后接 16 位十六进制的 xxhash。
	TruncMarker = "~"

	// DefaultSuffix 没有可用参数时使用的占位。
	DefaultSuffix = "default"

	// Separator 前缀与参数之间的分隔符。
	Separator = ":"
)

// Build 根据前缀和参数构造缓存键。
func Build(prefix string, params map[string]any) string {
	p := sanitize(prefix, true)

	pairs := make([]pair, 0, len(params))
	for name, value := range params {
		n := sanitize(name, false)
		if n == "" || isNil(value) {
			continue
		}
		pairs = append(pairs, pair{name: n, value: encodeValue(value)})
	}
	if len(pairs) == 0 {
		return p + Separator + DefaultSuffix
	}
	// 按清洗后的名字排序；不同原始名清洗后可能相同，再按值排序保证结果确定
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].name != pairs[j].name {
			return pairs[i].name < pairs[j].name
		}
		return pairs[i].value < pairs[j].value
	})

	var b strings.Builder
	b.WriteString(p)
	b.WriteString(Separator)
	for i, kv := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv.name)
		b.WriteByte('=')
		b.WriteString(kv.value)
	}
	return b.String()
}

type pair struct {
	name  string
	value string
}

// Pattern 返回匹配某前缀下全部键的 glob 模式。
func Pattern(prefix string) string {
	return sanitize(prefix, true) + Separator + "*"
}

// Prefix 返回某前缀下全部键共有的字符串前缀。
func Prefix(prefix string) string {
	return sanitize(prefix, true) + Separator
}

func sanitize(s string, allowColon bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '_', c == '.', c == '-':
			b.WriteByte(c)
		case c == ':' && allowColon:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func encodeValue(v any) string {
	enc := url.QueryEscape(stringify(v))
	if len(enc) <= MaxValueLen {
		return enc
	}
	return enc[:MaxValueLen] + TruncMarker + fmt.Sprintf("%016x", xxhash.Sum64String(enc))
}

// stringify 先解引用指针，同一个值无论按值还是按指针传入都得到相同结果。
// 解引用后的值没有匹配项时，再尝试指针本身（指针接收者的 String/MarshalText）。
func stringify(v any) string {
	if s, ok := stringifyKnown(deref(v)); ok {
		return s
	}
	if s, ok := stringifyKnown(v); ok {
		return s
	}
	return stringifyReflect(v)
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Pointer || !rv.CanInterface() {
		return v
	}
	return rv.Interface()
}

func stringifyKnown(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	case time.Duration:
		return x.String(), true
	case fmt.Stringer:
		return x.String(), true
	case encoding.TextMarshaler:
		if b, err := x.MarshalText(); err == nil {
			return string(b), true
		}
	}
	return "", false
}

// stringifyReflect 处理底层为基本类型的具名类型，其余按规范 JSON 编码。
func stringifyReflect(v any) string {
	rv := reflect.ValueOf(deref(v))
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	}

	if s, err := xjson.CanonicalString(deref(v)); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
