package relay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pithecene-io/ccshost/ipc"
	"github.com/pithecene-io/ccshost/log"
	"github.com/pithecene-io/ccshost/metrics"
	"github.com/pithecene-io/ccshost/types"
)

// HostConfig configures a Host.
type HostConfig struct {
	// Input is the stream frames are read from (os.Stdin in production).
	Input io.Reader
	// Output is the stream responses are written to (os.Stdout in production).
	Output io.Writer
	// Handlers answers decoded requests.
	Handlers types.RequestVisitor
	// MaxPayloadSize limits inbound and outbound payloads. Zero uses
	// ipc.DefaultMaxPayloadSize.
	MaxPayloadSize uint32
	// Logger defaults to a no-op logger.
	Logger *log.Logger
	// Metrics is optional.
	Metrics *metrics.Collector
}

// Host owns the two stdio streams for the life of the process.
type Host struct {
	decoder  *ipc.FrameDecoder
	encoder  *ipc.FrameEncoder
	handlers types.RequestVisitor
	logger   *log.Logger
	metrics  *metrics.Collector
}

// NewHost creates a Host from cfg.
func NewHost(cfg *HostConfig) (*Host, error) {
	if cfg.Input == nil || cfg.Output == nil {
		return nil, errors.New("host requires input and output streams")
	}
	if cfg.Handlers == nil {
		return nil, errors.New("host requires handlers")
	}

	decoder := ipc.NewFrameDecoder(cfg.Input)
	encoder := ipc.NewFrameEncoder(cfg.Output)
	decoder.SetMaxPayloadSize(cfg.MaxPayloadSize)
	encoder.SetMaxPayloadSize(cfg.MaxPayloadSize)

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Host{
		decoder:  decoder,
		encoder:  encoder,
		handlers: cfg.Handlers,
		logger:   logger,
		metrics:  cfg.Metrics,
	}, nil
}

// Run serves requests until the input ends or a fatal error occurs.
//
// Returns nil when the input ends at a frame boundary. Any framing, decode
// or output error is returned without writing a response: a corrupt stream
// cannot be trusted to carry one, and a failed write means the caller is
// gone. ctx is only checked between frames; a blocked read waits for the
// browser indefinitely.
func (h *Host) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := h.serveOne(ctx)
		if err != nil {
			h.logger.Error("relay stopped", map[string]any{
				"error": err.Error(),
				"kind":  frameErrorKind(err),
			})
			return err
		}
		if done {
			if n := h.decoder.StrayBytes(); n > 0 {
				h.logger.Debug("input ended inside a length prefix", map[string]any{
					"stray_bytes": n,
				})
			}
			return nil
		}
	}
}

// serveOne handles a single read-dispatch-write cycle.
// Returns done=true on a clean end of input.
func (h *Host) serveOne(ctx context.Context) (bool, error) {
	payload, err := h.decoder.ReadFrame()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}
	h.metrics.RecordFrameRead(len(payload))

	req, err := ipc.DecodeRequest(payload)
	if err != nil {
		h.metrics.IncDecodeErrors()
		return false, fmt.Errorf("decode request: %w", err)
	}
	h.metrics.IncRequest(string(req.Action()))
	h.logger.Debug("request received", map[string]any{
		"action": string(req.Action()),
		"bytes":  len(payload),
	})

	resp := Dispatch(ctx, h.handlers, req)

	n, err := h.encoder.WriteResponse(resp)
	if err != nil {
		return false, fmt.Errorf("write response: %w", err)
	}
	h.metrics.RecordFrameWritten(n)
	h.logger.Debug("response sent", map[string]any{
		"action":  string(req.Action()),
		"success": resp.Succeeded(),
		"bytes":   n,
	})

	return false, nil
}

// frameErrorKind extracts the frame error kind for logging.
func frameErrorKind(err error) string {
	var frameErr *ipc.FrameError
	if errors.As(err, &frameErr) {
		return frameErr.Kind.String()
	}
	return "other"
}
