// shopcachectl 运行和检查 shopcache 进程。
//
// 用法:
//
//	shopcachectl <命令> [命令参数]
//
// 命令:
//
//	serve --config <file>      启动缓存进程（运维接口、统计报告、配置热加载）
//	check --config <file>      校验配置并打印生效的缓存实例
//	key <prefix> [k=v ...]     打印规范化后的缓存键
//
// 退出码:
//
//	0: 成功
//	1: 运行失败
//	2: 参数错误
//
// 示例:
//
//	shopcachectl serve -c /etc/shopcache.yaml
//	shopcachectl check -c shopcache.yaml
//	shopcachectl key products:list category=shoes page=2 sort=-price
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "shopcachectl",
		Usage:     "shopcache 进程与工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createServeCommand(),
			createCheckCommand(),
			createKeyCommand(),
		},
		// 退出码由 run 统一映射
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := createApp(stdout, stderr).Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			return exitCoder.ExitCode()
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
