// Package domain holds the persisted entities of the storage core: File,
// Fragment, and KeyShare, plus the StorageHandle and DestinationDescriptor
// value types used to address remote blob stores.
package domain

import "time"

// StorageType identifies a remote blob store provider.
type StorageType string

const (
	StorageGoogleDrive StorageType = "google_drive"
	StorageDropbox     StorageType = "dropbox"
)

// File is the root metadata row for one uploaded, erasure-coded,
// key-split object.
type File struct {
	FileID         string // UUID
	FileName       string
	OwnerAccount   string
	OwnerGroup     string
	ShardCount     int // N
	RequiredShards int // K
	KeyThreshold   int // T
	OriginalLength int64
	CreatedAt      time.Time
}

// Fragment is one Reed-Solomon shard's remote placement record.
type Fragment struct {
	ShardID      int64 // serial
	FileID       string
	ShardIndex   int
	StorageID    string
	RemoteBlobID string
	FolderID     string
	ShardSize    int64
}

// KeyShare is one Shamir share's remote placement record.
type KeyShare struct {
	KeyID        int64 // serial
	FileID       string
	ShareIndex   int
	StorageID    string
	RemoteBlobID string
}

// DestinationDescriptor names where a single fragment or key share should
// be placed. StorageID resolves to a StorageHandle via the storage
// registry; FolderID is passed through to the blob store adapter.
type DestinationDescriptor struct {
	StorageID string
	FolderID  string
	Type      StorageType
}
