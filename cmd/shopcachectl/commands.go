package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/shopcache/internal/app"
	"github.com/omeyang/shopcache/pkg/lifecycle/xrun"
	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/util/xkey"
)

// closeTimeout 退出时释放资源的上限。
const closeTimeout = 15 * time.Second

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "配置文件路径（.yaml/.yml/.json）",
		Sources: cli.EnvVars("SHOPCACHE_CONFIG"),
	}
}

func configPath(cmd *cli.Command) (string, error) {
	path := strings.TrimSpace(cmd.String("config"))
	if path == "" {
		return "", usagef("--config is required")
	}
	return path, nil
}

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动缓存进程",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "监视配置文件并热加载日志级别",
				Value: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return cmdServe(ctx, path, cmd.Bool("watch"))
		},
	}
}

func cmdServe(ctx context.Context, path string, watch bool) error {
	cfg, src, err := app.Load(path)
	if err != nil {
		return err
	}
	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			a.Logger().Error(closeCtx, "close failed", xlog.Err(err))
		}
	}()

	if !watch {
		src = nil
	}
	svcs, err := a.Services(src)
	if err != nil {
		return err
	}
	a.Logger().Info(ctx, "shopcache serving", slog.String("addr", cfg.Admin.Addr))
	err = xrun.RunServicesWithOptions(ctx, []xrun.Option{
		xrun.WithName("shopcache"),
		xrun.WithLogger(a.Logger()),
	}, svcs...)

	var sigErr *xrun.SignalError
	if errors.As(err, &sigErr) {
		a.Logger().Info(ctx, "shutting down", xlog.Reason(sigErr.Error()))
		return nil
	}
	return err
}

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置并打印缓存实例",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return cmdCheck(cmd, path)
		},
	}
}

func cmdCheck(cmd *cli.Command, path string) error {
	cfg, _, err := app.Load(path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTTL\tMAX_ENTRIES\tMAX_BYTES\tCOMPRESS")
	for _, c := range cfg.CacheConfigs() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\n", c.Name, c.TTL, c.MaxEntries, c.MaxBytes, c.Compress)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	report := cfg.Report.Schedule
	if !cfg.Report.Enabled() {
		report = "disabled"
	}
	fmt.Fprintf(cmd.Root().Writer, "admin: %s  report: %s  log: %s\nconfig ok\n", cfg.Admin.Addr, report, cfg.Log.Level)
	return nil
}

func createKeyCommand() *cli.Command {
	return &cli.Command{
		Name:      "key",
		Usage:     "打印规范化后的缓存键",
		ArgsUsage: "<prefix> [name=value ...]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return usagef("prefix is required")
			}
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, xkey.Build(args[0], params))
			return nil
		},
	}
}

// parseParams 把 name=value 参数解析为键参数，重复的 name 以最后一次为准。
func parseParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, usagef("invalid parameter %q, want name=value", arg)
		}
		params[name] = value
	}
	return params, nil
}
