// Package objectstore defines a uniform put/get interface over
// heterogeneous remote object stores. Routing a destination to the right
// concrete adapter is internal/storageregistry's job; this package only
// defines the interface and the concrete adapters that implement it.
package objectstore

import (
	"context"

	"github.com/zzenonn/shardvault/internal/domain"
)

// BlobStore is the uniform interface every remote storage provider
// implements.
type BlobStore interface {
	// Put uploads bytes to dest's folder, returning a provider-assigned
	// blob identifier. suggestedName is advisory only.
	Put(ctx context.Context, dest domain.DestinationDescriptor, data []byte, suggestedName string) (blobID string, err error)
	// Get downloads the full object addressed by blobID.
	Get(ctx context.Context, blobID string) (data []byte, err error)
	// StorageType reports the provider tag this adapter serves.
	StorageType() domain.StorageType
}
