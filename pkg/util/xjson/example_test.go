package xjson_test

import (
	"fmt"

	"github.com/omeyang/shopcache/pkg/util/xjson"
)

func ExampleCanonical() {
	data, _ := xjson.Canonical(map[string]any{"size": "L", "color": "red", "tags": []string{"new"}})
	fmt.Println(string(data))
	// Output:
	// {"color":"red","size":"L","tags":["new"]}
}

func ExamplePretty() {
	type Category struct {
		Slug string `json:"slug"`
		Rank int    `json:"rank"`
	}
	fmt.Println(xjson.Pretty(Category{Slug: "shoes", Rank: 2}))
	// Output:
	// {
	//   "slug": "shoes",
	//   "rank": 2
	// }
}
