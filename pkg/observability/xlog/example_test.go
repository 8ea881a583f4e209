package xlog_test

import (
	"context"
	"os"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
)

func Example() {
	logger, cleanup, err := xlog.New().
		SetOutput(os.Stdout).
		SetFormat("json").
		SetEnrich(false).
		Build()
	if err != nil {
		panic(err)
	}
	defer cleanup()

	logger.Info(context.Background(), "cache ready", xlog.Cache("products"))
}
