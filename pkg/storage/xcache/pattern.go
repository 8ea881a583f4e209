package xcache

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher 选择 InvalidatePattern 要删除的 key。String 出现在 invalidate_pattern 事件的 Reason 中。
type Matcher interface {
	Match(key string) bool
	String() string
}

type regexpMatcher struct{ re *regexp.Regexp }

func (m regexpMatcher) Match(key string) bool { return m.re.MatchString(key) }
func (m regexpMatcher) String() string        { return m.re.String() }

// Regexp 以正则匹配 key。re 为 nil 时返回 nil。
func Regexp(re *regexp.Regexp) Matcher {
	if re == nil {
		return nil
	}
	return regexpMatcher{re: re}
}

type globMatcher struct {
	g       glob.Glob
	pattern string
}

func (m globMatcher) Match(key string) bool { return m.g.Match(key) }
func (m globMatcher) String() string        { return m.pattern }

// Glob 以通配符匹配 key，例如 "products:*"。不设分隔符，* 可跨越冒号。
func Glob(pattern string) (Matcher, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: glob %q: %w", ErrInvalidConfig, pattern, err)
	}
	return globMatcher{g: g, pattern: pattern}, nil
}

// MustGlob 同 Glob，模式无效时 panic。
func MustGlob(pattern string) Matcher {
	m, err := Glob(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

type prefixMatcher string

func (p prefixMatcher) Match(key string) bool { return strings.HasPrefix(key, string(p)) }
func (p prefixMatcher) String() string        { return string(p) + "*" }

// Prefix 匹配以 prefix 开头的 key。
func Prefix(prefix string) Matcher {
	return prefixMatcher(prefix)
}

// MatchFunc 把函数适配为 Matcher，name 用于事件描述。
func MatchFunc(name string, fn func(key string) bool) Matcher {
	if fn == nil {
		return nil
	}
	return funcMatcher{name: name, fn: fn}
}

type funcMatcher struct {
	name string
	fn   func(string) bool
}

func (m funcMatcher) Match(key string) bool { return m.fn(key) }
func (m funcMatcher) String() string        { return m.name }
