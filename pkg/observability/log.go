package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, errors at error
// level. It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnSampleStart(_ context.Context, policy string) {
	h.logger.Debug("sample start", "policy", policy)
}

func (h *LogHooks) OnSampleComplete(_ context.Context, policy string, points, skipped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("sample failed", "policy", policy, "err", err)
		return
	}
	h.logger.Debug("sample done", "policy", policy, "points", points, "skipped", skipped, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, width, height int) {
	h.logger.Debug("render start", "width", width, "height", height)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, rendered, skipped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("render failed", "err", err)
		return
	}
	h.logger.Debug("render done", "rendered", rendered, "skipped", skipped, "duration", d)
}

func (h *LogHooks) OnExportStart(_ context.Context, formats []string) {
	h.logger.Debug("export start", "formats", formats)
}

func (h *LogHooks) OnExportComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("export failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("export done", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Error("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
