package xflight_test

import (
	"context"
	"fmt"

	"github.com/omeyang/shopcache/pkg/util/xflight"
)

func ExampleGroup_Do() {
	g := xflight.New()
	defer g.Close()

	v, shared, err := g.Do(context.Background(), "products:id=42", func(ctx context.Context) (any, error) {
		return "running shoes", nil
	})
	fmt.Println(v, shared, err)
	// Output:
	// running shoes false <nil>
}
