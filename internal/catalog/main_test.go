package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRegistry(t *testing.T, cfgs ...xcache.Config) *xcache.Registry {
	t.Helper()
	if len(cfgs) == 0 {
		cfgs = xcache.DefaultConfigs()
	}
	reg, err := xcache.NewRegistry(cfgs, xcache.WithLogger(xlog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, reg.Close(context.Background())) })
	return reg
}

func newTestService(t *testing.T) (*Service, *MockSource, *xcache.Registry) {
	t.Helper()
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)
	reg := newTestRegistry(t)
	svc, err := NewService(reg, src, WithLogger(xlog.Discard()))
	require.NoError(t, err)
	return svc, src, reg
}
