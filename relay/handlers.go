package relay

import (
	"context"
	"time"

	"github.com/pithecene-io/ccshost/fsx"
	"github.com/pithecene-io/ccshost/log"
	"github.com/pithecene-io/ccshost/metrics"
	"github.com/pithecene-io/ccshost/mirror"
	"github.com/pithecene-io/ccshost/types"
)

// Handlers implements one handler per request variant.
type Handlers struct {
	writer        *fsx.Writer
	mirror        mirror.Mirror
	mirrorTimeout time.Duration
	logger        *log.Logger
	metrics       *metrics.Collector
}

// Verify Handlers covers every request variant.
var _ types.RequestVisitor = (*Handlers)(nil)

// HandlersConfig configures Handlers.
type HandlersConfig struct {
	// Writer performs local saves. Defaults to fsx.NewWriter().
	Writer *fsx.Writer
	// Mirror receives a copy of every successful save. Optional.
	Mirror mirror.Mirror
	// MirrorTimeout bounds each mirror write. Zero means no bound.
	MirrorTimeout time.Duration
	// Logger defaults to a no-op logger.
	Logger *log.Logger
	// Metrics is optional.
	Metrics *metrics.Collector
}

// NewHandlers creates the request handlers.
func NewHandlers(cfg HandlersConfig) *Handlers {
	h := &Handlers{
		writer:        cfg.Writer,
		mirror:        cfg.Mirror,
		mirrorTimeout: cfg.MirrorTimeout,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}
	if h.writer == nil {
		h.writer = fsx.NewWriter()
	}
	if h.logger == nil {
		h.logger = log.NewNop()
	}
	return h
}

// VisitSave writes the request content to disk.
// Failures become a SaveResult with success=false; they never escape.
func (h *Handlers) VisitSave(ctx context.Context, req *types.SaveRequest) types.Response {
	content := []byte(req.Content)

	fullPath, err := h.writer.Save(req.Path, content)
	if err != nil {
		h.metrics.IncSaveFailed()
		h.logger.Warn("save failed", map[string]any{
			"path":  req.Path,
			"error": err.Error(),
		})
		return types.NewSaveFailure(err.Error())
	}

	h.metrics.RecordSaveSuccess(len(content))
	h.logger.Debug("saved file", map[string]any{
		"path":  fullPath,
		"bytes": len(content),
	})

	h.mirrorSave(ctx, fullPath, content)

	return types.NewSaveSuccess(fullPath)
}

// mirrorSave copies a saved file to the mirror, if one is configured.
// The outcome is logged and counted but never alters the response.
func (h *Handlers) mirrorSave(ctx context.Context, path string, content []byte) {
	if h.mirror == nil {
		return
	}

	if h.mirrorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.mirrorTimeout)
		defer cancel()
	}

	key, err := h.mirror.Put(ctx, path, content)
	if err != nil {
		h.metrics.IncMirrorFailure()
		h.logger.Warn("mirror write failed", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return
	}

	h.metrics.IncMirrorSuccess()
	h.logger.Debug("mirrored file", map[string]any{
		"path": path,
		"key":  key,
	})
}

// VisitPing answers a liveness check.
func (h *Handlers) VisitPing(_ context.Context, _ *types.PingRequest) types.Response {
	return types.NewPong()
}
