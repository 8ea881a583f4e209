package xcache

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidatePattern_Regexp(t *testing.T) {
	c := newTestCache(t, Config{})
	events := recordEvents(c)
	for _, k := range []string{"products:1", "products:2", "categories:1"} {
		require.True(t, c.Set(k, k))
	}

	n := c.InvalidatePattern(Regexp(regexp.MustCompile(`^products:`)))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"categories:1"}, c.Keys())
	assert.Equal(t, int64(len(`"categories:1"`)), c.Size().Bytes)

	inv := eventsOf(events(), EventInvalidatePattern)
	require.Len(t, inv, 1)
	assert.Equal(t, 2, inv[0].Count)
	assert.Equal(t, `^products:`, inv[0].Reason)
}

func TestInvalidatePattern_Matchers(t *testing.T) {
	keys := []string{
		"products:id=1",
		"products:category=shoes&page=1",
		"products:category=shoes&page=2",
		"categories:all",
		"carts:user=42",
	}
	tests := []struct {
		name    string
		matcher Matcher
		want    int
	}{
		{"glob prefix", MustGlob("products:*"), 3},
		{"glob middle", MustGlob("products:category=shoes*"), 2},
		{"glob alternatives", MustGlob("{carts,categories}:*"), 2},
		{"prefix", Prefix("carts:"), 1},
		{"prefix empty matches all", Prefix(""), 5},
		{"func", MatchFunc("user keys", func(k string) bool { return strings.Contains(k, "user=") }), 1},
		{"regexp no match", Regexp(regexp.MustCompile(`^orders:`)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t, Config{})
			for _, k := range keys {
				require.True(t, c.Set(k, 1))
			}
			assert.Equal(t, tt.want, c.InvalidatePattern(tt.matcher))
			assert.Len(t, c.Keys(), len(keys)-tt.want)
		})
	}
}

func TestInvalidatePattern_Nil(t *testing.T) {
	c := newTestCache(t, Config{})
	require.True(t, c.Set("k", 1))

	assert.Equal(t, 0, c.InvalidatePattern(nil))
	assert.Nil(t, Regexp(nil))
	assert.Nil(t, MatchFunc("x", nil))
	assert.True(t, c.Has("k"))
}

func TestGlob_Invalid(t *testing.T) {
	_, err := Glob("products:[")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Panics(t, func() { MustGlob("products:[") })
}

func TestMatcher_String(t *testing.T) {
	assert.Equal(t, "products:*", MustGlob("products:*").String())
	assert.Equal(t, "carts:*", Prefix("carts:").String())
	assert.Equal(t, `^a$`, Regexp(regexp.MustCompile(`^a$`)).String())
}
