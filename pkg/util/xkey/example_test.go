package xkey_test

import (
	"fmt"

	"github.com/omeyang/shopcache/pkg/util/xkey"
)

func ExampleBuild() {
	key := xkey.Build("products:list", map[string]any{
		"page":     2,
		"category": "running shoes",
		"brand":    nil,
	})
	fmt.Println(key)
	fmt.Println(xkey.Pattern("products:list"))
	// Output:
	// products:list:category=running+shoes&page=2
	// products:list:*
}
