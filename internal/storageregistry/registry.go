// Package storageregistry resolves a caller-assigned storage_id to the
// concrete blob store adapter that serves it. Adapters are long-lived and
// registered once at startup, then read concurrently by every upload and
// download goroutine.
package storageregistry

import (
	"fmt"
	"sync"

	"github.com/zzenonn/shardvault/internal/repository/objectstore"
)

// Registry maps storage_id to the BlobStore adapter that serves it.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]objectstore.BlobStore
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{stores: make(map[string]objectstore.BlobStore)}
}

// Register adds a blob store adapter under storageID. Re-registering the
// same storageID replaces the previous adapter, so config reloads don't
// require rebuilding the registry.
func (r *Registry) Register(storageID string, store objectstore.BlobStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[storageID] = store
}

// Resolve returns the adapter registered for storageID.
func (r *Registry) Resolve(storageID string) (objectstore.BlobStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[storageID]
	if !ok {
		return nil, fmt.Errorf("storageregistry: no handle registered for storage_id %q", storageID)
	}
	return store, nil
}
