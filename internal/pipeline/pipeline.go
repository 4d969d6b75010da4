// Package pipeline orchestrates the upload and download of a single file:
// AEAD encryption, Reed-Solomon erasure coding, Shamir key splitting, and
// their accompanying remote blob placements and metadata rows.
package pipeline

import (
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/shardvault/internal/repository/db"
	"github.com/zzenonn/shardvault/internal/storageregistry"
)

// defaultConcurrency bounds how many remote puts/gets a single upload or
// download dispatches at once when the caller doesn't override it.
const defaultConcurrency = 8

// Pipeline ties the metadata store and storage registry together to
// execute uploads and downloads.
type Pipeline struct {
	store       *db.Store
	registry    *storageregistry.Registry
	concurrency int
}

// New builds a Pipeline. concurrency <= 0 falls back to a sane default.
func New(store *db.Store, registry *storageregistry.Registry, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Pipeline{store: store, registry: registry, concurrency: concurrency}
}

// semaphore bounds concurrent goroutines to p.concurrency slots.
func (p *Pipeline) semaphore() chan struct{} {
	return make(chan struct{}, p.concurrency)
}

// fetchResult pairs a fetched fragment blob with its original shard index
// so results can be re-sorted after concurrent dispatch.
type fetchResult struct {
	index int
	data  []byte
	err   error
}

// putResult pairs a placed fragment or key-share's returned blob id with
// its original index.
type putResult struct {
	index  int
	blobID string
	err    error
}

func logSkip(kind string, index int, err error) {
	log.WithFields(log.Fields{"kind": kind, "index": index}).Warnf("skipping %s: %v", kind, err)
}
