package xkey

import (
	"strings"
	"testing"
)

func FuzzBuild(f *testing.F) {
	f.Add("products", "page", "2", "sort", "price")
	f.Add("", "", "", "", "")
	f.Add("a:b", "q&x", "v=1&", "😀", strings.Repeat("z", 200))

	f.Fuzz(func(t *testing.T, prefix, n1, v1, n2, v2 string) {
		k1 := Build(prefix, map[string]any{n1: v1, n2: v2})
		k2 := Build(prefix, map[string]any{n2: v2, n1: v1})
		if n1 != n2 && k1 != k2 {
			t.Fatalf("order dependent: %q vs %q", k1, k2)
		}
		if !strings.Contains(k1, Separator) {
			t.Fatalf("missing separator: %q", k1)
		}
		if strings.ContainsAny(k1, " /\n") {
			t.Fatalf("unsafe characters in key: %q", k1)
		}
	})
}
