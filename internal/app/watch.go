package app

import (
	"context"

	"github.com/omeyang/shopcache/pkg/config/xconf"
	"github.com/omeyang/shopcache/pkg/lifecycle/xrun"
	"github.com/omeyang/shopcache/pkg/observability/xlog"
)

// WatchConfig 返回监视配置文件的服务。文件变更后重新校验，
// 只有日志级别会在运行中生效，其余字段需要重启。
func (a *App) WatchConfig(src xconf.Config, opts ...xconf.WatchOption) (xrun.Service, error) {
	w, err := xconf.Watch(src, a.onConfigReload, opts...)
	if err != nil {
		return nil, err
	}
	return xrun.ServiceFunc(w.Run), nil
}

func (a *App) onConfigReload(src xconf.Config, err error) {
	ctx := context.Background()
	if err != nil {
		a.logger.Warn(ctx, "config reload failed, keeping previous", xlog.Err(err))
		return
	}
	cfg, err := FromSource(src)
	if err != nil {
		a.logger.Warn(ctx, "reloaded config rejected", xlog.Err(err))
		return
	}
	level, _ := xlog.ParseLevel(cfg.Log.Level)
	if level == a.logger.GetLevel() {
		return
	}
	a.logger.SetLevel(level)
	a.logger.Warn(ctx, "log level changed", xlog.Reason(level.String()))
}
