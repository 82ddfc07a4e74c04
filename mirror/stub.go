package mirror

import (
	"context"
	"sync"
)

// StubMirror records Put calls for testing.
type StubMirror struct {
	mu    sync.Mutex
	Files []StubRecord
	// Err, when set, is returned from every Put.
	Err error
}

// StubRecord is a recorded mirror write.
type StubRecord struct {
	Path    string
	Content []byte
}

// NewStubMirror creates a new stub mirror.
func NewStubMirror() *StubMirror {
	return &StubMirror{}
}

// Put implements Mirror by recording the call.
func (m *StubMirror) Put(_ context.Context, path string, content []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Files = append(m.Files, StubRecord{Path: path, Content: content})
	return "stub/" + path, nil
}

// Verify StubMirror implements Mirror.
var _ Mirror = (*StubMirror)(nil)
