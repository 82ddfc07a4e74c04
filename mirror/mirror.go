// Package mirror copies saved files to a secondary Lode store.
//
// The local write is authoritative. Mirror failures are reported to the
// caller for logging and metrics but never change the save response.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justapithecus/lode/lode"
)

// Mirror copies the content of a saved file to secondary storage.
type Mirror interface {
	// Put stores content under a key derived from path and returns the key.
	Put(ctx context.Context, path string, content []byte) (string, error)
}

// Verify LodeMirror implements Mirror.
var _ Mirror = (*LodeMirror)(nil)

// LodeMirror writes mirrored files to a Lode store.
// Objects land at saves/day=<YYYY-MM-DD>/save_id=<uuid>/<basename>, so
// repeated saves of one path never collide.
type LodeMirror struct {
	storeFactory lode.StoreFactory
	backend      string

	storeOnce sync.Once
	store     lode.Store
	storeErr  error

	now   func() time.Time
	newID func() string
}

// NewLodeMirror creates a mirror over a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewLodeMirror(factory lode.StoreFactory, backend string) *LodeMirror {
	return &LodeMirror{
		storeFactory: factory,
		backend:      backend,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// NewFSMirror creates a mirror rooted at a local directory.
func NewFSMirror(root string) *LodeMirror {
	return NewLodeMirror(lode.NewFSFactory(root), "fs")
}

// Backend returns the storage backend name ("fs", "s3", ...).
func (m *LodeMirror) Backend() string {
	return m.backend
}

// Put writes content to the store at a freshly computed key.
// Uses lazy store initialization via storeFactory.
func (m *LodeMirror) Put(ctx context.Context, path string, content []byte) (string, error) {
	store, err := m.getOrCreateStore()
	if err != nil {
		return "", WrapInitError(err, m.backend)
	}

	key := m.buildKey(path)
	if err := store.Put(ctx, key, bytes.NewReader(content)); err != nil {
		return "", WrapWriteError(err, key)
	}
	return key, nil
}

// getOrCreateStore lazily initializes the Store from the factory.
func (m *LodeMirror) getOrCreateStore() (lode.Store, error) {
	m.storeOnce.Do(func() {
		m.store, m.storeErr = m.storeFactory()
	})
	return m.store, m.storeErr
}

// buildKey computes the Hive-partitioned key for a mirrored file.
func (m *LodeMirror) buildKey(path string) string {
	return fmt.Sprintf("saves/day=%s/save_id=%s/%s",
		m.now().UTC().Format("2006-01-02"),
		m.newID(),
		filepath.Base(path),
	)
}
