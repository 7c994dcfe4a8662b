package gologger

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// QueryHook logs bun queries through a glog logger so persistence debug
// output follows the same pipeline as the engine logs.
type QueryHook struct {
	logger glog.Logger
}

func NewQueryHook(logger glog.Logger) *QueryHook {
	return &QueryHook{logger: glog.Ensure(logger)}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if h == nil || h.logger == nil || event == nil {
		return
	}
	logger := h.logger.WithContext(ctx)
	durationMS := time.Since(event.StartTime).Milliseconds()
	if event.Err != nil {
		logger.Error("query failed", "query", event.Query, "duration_ms", durationMS, "error", event.Err)
		return
	}
	logger.Info("query", "query", event.Query, "duration_ms", durationMS)
}

var _ bun.QueryHook = (*QueryHook)(nil)
