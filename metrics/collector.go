// Package metrics provides per-process relay counters.
//
// The Collector accumulates counters for the lifetime of the host process.
// It is a leaf package with no internal dependencies; the snapshot is logged
// when the host shuts down.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all relay counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Framing
	FramesRead    int64
	FramesWritten int64
	BytesRead     int64
	BytesWritten  int64
	DecodeErrors  int64

	// Requests, keyed by action ("save", "ping")
	Requests map[string]int64

	// Save outcomes
	SavesSucceeded int64
	SavesFailed    int64
	BytesSaved     int64

	// Mirror
	MirrorSuccess int64
	MirrorFailure int64

	// Dimensions (informational, set at construction)
	Version       string
	MirrorBackend string
}

// Collector accumulates relay counters.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	framesRead    int64
	framesWritten int64
	bytesRead     int64
	bytesWritten  int64
	decodeErrors  int64

	requests map[string]int64

	savesSucceeded int64
	savesFailed    int64
	bytesSaved     int64

	mirrorSuccess int64
	mirrorFailure int64

	version       string
	mirrorBackend string
}

// NewCollector creates a Collector with dimension labels.
// mirrorBackend is empty when no mirror is configured.
func NewCollector(version, mirrorBackend string) *Collector {
	return &Collector{
		requests:      make(map[string]int64),
		version:       version,
		mirrorBackend: mirrorBackend,
	}
}

// --- Framing ---

// RecordFrameRead records an inbound frame of n payload bytes.
func (c *Collector) RecordFrameRead(n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesRead++
	c.bytesRead += int64(n)
	c.mu.Unlock()
}

// RecordFrameWritten records an outbound frame of n payload bytes.
func (c *Collector) RecordFrameWritten(n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesWritten++
	c.bytesWritten += int64(n)
	c.mu.Unlock()
}

// IncDecodeErrors records a payload that failed request decoding.
func (c *Collector) IncDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors++
	c.mu.Unlock()
}

// --- Requests ---

// IncRequest records a dispatched request. The action is a plain string to
// keep this package free of dependencies on the types package.
func (c *Collector) IncRequest(action string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requests[action]++
	c.mu.Unlock()
}

// --- Saves ---

// RecordSaveSuccess records a successful local save of n bytes.
func (c *Collector) RecordSaveSuccess(n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.savesSucceeded++
	c.bytesSaved += int64(n)
	c.mu.Unlock()
}

// IncSaveFailed records a failed local save.
func (c *Collector) IncSaveFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.savesFailed++
	c.mu.Unlock()
}

// --- Mirror ---

// IncMirrorSuccess records a successful mirror write.
func (c *Collector) IncMirrorSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.mirrorSuccess++
	c.mu.Unlock()
}

// IncMirrorFailure records a failed mirror write.
func (c *Collector) IncMirrorFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.mirrorFailure++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	requests := make(map[string]int64, len(c.requests))
	for k, v := range c.requests {
		requests[k] = v
	}

	return Snapshot{
		FramesRead:    c.framesRead,
		FramesWritten: c.framesWritten,
		BytesRead:     c.bytesRead,
		BytesWritten:  c.bytesWritten,
		DecodeErrors:  c.decodeErrors,

		Requests: requests,

		SavesSucceeded: c.savesSucceeded,
		SavesFailed:    c.savesFailed,
		BytesSaved:     c.bytesSaved,

		MirrorSuccess: c.mirrorSuccess,
		MirrorFailure: c.mirrorFailure,

		Version:       c.version,
		MirrorBackend: c.mirrorBackend,
	}
}

// Fields flattens the snapshot into log fields.
func (s Snapshot) Fields() map[string]any {
	return map[string]any{
		"frames_read":     s.FramesRead,
		"frames_written":  s.FramesWritten,
		"bytes_read":      s.BytesRead,
		"bytes_written":   s.BytesWritten,
		"decode_errors":   s.DecodeErrors,
		"requests":        s.Requests,
		"saves_succeeded": s.SavesSucceeded,
		"saves_failed":    s.SavesFailed,
		"bytes_saved":     s.BytesSaved,
		"mirror_success":  s.MirrorSuccess,
		"mirror_failure":  s.MirrorFailure,
		"mirror_backend":  s.MirrorBackend,
		"version":         s.Version,
	}
}
