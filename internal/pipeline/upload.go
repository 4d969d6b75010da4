package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/crypto/aead"
	"github.com/zzenonn/shardvault/internal/crypto/secretsplit"
	"github.com/zzenonn/shardvault/internal/domain"
	"github.com/zzenonn/shardvault/internal/erasure"
	"github.com/zzenonn/shardvault/internal/repository/db"
)

// UploadInput describes one file to be encrypted, erasure-coded, key-split,
// and scattered across N fragment destinations and M key-share
// destinations.
type UploadInput struct {
	Plaintext    []byte
	FileName     string
	OwnerAccount string
	OwnerGroup   string

	ShardCount     int // N
	RequiredShards int // K
	ShareCount     int // M
	KeyThreshold   int // T

	FragmentDestinations []domain.DestinationDescriptor // len == N
	KeyDestinations      []domain.DestinationDescriptor // len == M
}

// ShardPlacement records where one fragment landed.
type ShardPlacement struct {
	Index       int    `json:"index"`
	ShardFileID string `json:"shard_file_id"`
	FolderID    string `json:"folder_id"`
	StorageID   string `json:"storage_id"`
}

// KeySharePlacement records where one key share landed.
type KeySharePlacement struct {
	ShareIndex int    `json:"share_index"`
	KeyFileID  string `json:"key_file_id"`
	StorageID  string `json:"storage_id"`
}

// UploadResult summarizes a committed upload.
type UploadResult struct {
	FileID    string              `json:"file_id"`
	Shards    []ShardPlacement    `json:"shards"`
	KeyShares []KeySharePlacement `json:"key_shares"`
}

func (in UploadInput) validate() error {
	n, k := in.ShardCount, in.RequiredShards
	m, t := in.ShareCount, in.KeyThreshold
	switch {
	case k < 1 || k > n:
		return fmt.Errorf("%w: required_shards must satisfy 1<=K<=N, got K=%d N=%d", apperrors.ErrInvalidConfig, k, n)
	case t < 1 || t > m:
		return fmt.Errorf("%w: key_threshold must satisfy 1<=T<=M, got T=%d M=%d", apperrors.ErrInvalidConfig, t, m)
	case len(in.FragmentDestinations) != n:
		return fmt.Errorf("%w: expected %d fragment destinations, got %d", apperrors.ErrInvalidConfig, n, len(in.FragmentDestinations))
	case len(in.KeyDestinations) != m:
		return fmt.Errorf("%w: expected %d key destinations, got %d", apperrors.ErrInvalidConfig, m, len(in.KeyDestinations))
	}
	return nil
}

// Upload encrypts, erasure-codes, and key-splits in.Plaintext, then scatters
// the resulting fragments and key shares across their destinations. All
// metadata rows are written inside one transaction; any failure rolls the
// transaction back and leaves any already-landed remote blobs as orphans.
func (p *Pipeline) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if err := in.validate(); err != nil {
		return UploadResult{}, err
	}

	originalLength := int64(len(in.Plaintext))

	key, aeadBlob, err := aead.Encrypt(in.Plaintext)
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: encryption failed: %w", err)
	}
	var keyArr [32]byte
	copy(keyArr[:], key)

	rsInput := make([]byte, 4+len(aeadBlob))
	binary.BigEndian.PutUint32(rsInput[:4], uint32(originalLength))
	copy(rsInput[4:], aeadBlob)

	tx, err := p.store.Begin(ctx)
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: failed to begin metadata transaction: %w", err)
	}

	fileRow, err := tx.InsertFile(ctx, domain.File{
		FileName:       in.FileName,
		OwnerAccount:   in.OwnerAccount,
		OwnerGroup:     in.OwnerGroup,
		ShardCount:     in.ShardCount,
		RequiredShards: in.RequiredShards,
		KeyThreshold:   in.KeyThreshold,
		OriginalLength: originalLength,
	})
	if err != nil {
		_ = tx.Rollback()
		return UploadResult{}, apperrors.UploadFailed(err)
	}

	fragments, err := erasure.Encode(rsInput, in.RequiredShards, in.ShardCount)
	if err != nil {
		_ = tx.Rollback()
		return UploadResult{}, apperrors.UploadFailed(err)
	}

	shardPlacements, err := p.uploadFragments(ctx, tx, fileRow.FileID, fragments, in.FragmentDestinations, in.FileName)
	if err != nil {
		_ = tx.Rollback()
		return UploadResult{}, apperrors.UploadFailed(err)
	}

	shares, err := secretsplit.Split(keyArr, in.KeyThreshold, in.ShareCount)
	if err != nil {
		_ = tx.Rollback()
		return UploadResult{}, apperrors.UploadFailed(err)
	}

	keySharePlacements, err := p.uploadKeyShares(ctx, tx, fileRow.FileID, shares, in.KeyDestinations, in.FileName)
	if err != nil {
		_ = tx.Rollback()
		return UploadResult{}, apperrors.UploadFailed(err)
	}

	if err := tx.Commit(); err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: failed to commit metadata transaction: %w", err)
	}

	return UploadResult{
		FileID:    fileRow.FileID,
		Shards:    shardPlacements,
		KeyShares: keySharePlacements,
	}, nil
}

// uploadFragments puts every fragment to its destination concurrently and
// inserts a Fragment row for each. Every put runs to completion; rows are
// then inserted in shard order, and the first failed put or insert ends the
// batch with an error. The caller is responsible for rolling back.
func (p *Pipeline) uploadFragments(ctx context.Context, tx *db.Tx, fileID string, fragments [][]byte, destinations []domain.DestinationDescriptor, fileName string) ([]ShardPlacement, error) {
	results := make([]putResult, len(fragments))
	sem := p.semaphore()
	var wg sync.WaitGroup

	for i := range fragments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			dest := destinations[i]
			store, err := p.registry.Resolve(dest.StorageID)
			if err != nil {
				results[i] = putResult{index: i, err: err}
				return
			}
			blobID, err := store.Put(ctx, dest, fragments[i], fmt.Sprintf("%s.shard%d", fileName, i))
			results[i] = putResult{index: i, blobID: blobID, err: err}
		}(i)
	}
	wg.Wait()

	placements := make([]ShardPlacement, len(fragments))
	for i, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, r.err)
		}
		blobID := r.blobID
		if _, err := tx.InsertFragment(ctx, domain.Fragment{
			FileID:       fileID,
			ShardIndex:   i,
			StorageID:    destinations[i].StorageID,
			RemoteBlobID: blobID,
			FolderID:     destinations[i].FolderID,
			ShardSize:    int64(len(fragments[i])),
		}); err != nil {
			return nil, fmt.Errorf("fragment %d metadata insert: %w", i, err)
		}
		placements[i] = ShardPlacement{Index: i, ShardFileID: blobID, FolderID: destinations[i].FolderID, StorageID: destinations[i].StorageID}
	}
	return placements, nil
}

// uploadKeyShares puts every serialized combined share to its destination
// concurrently and inserts a KeyShare row for each.
func (p *Pipeline) uploadKeyShares(ctx context.Context, tx *db.Tx, fileID string, shares []secretsplit.Share, destinations []domain.DestinationDescriptor, fileName string) ([]KeySharePlacement, error) {
	results := make([]putResult, len(shares))
	sem := p.semaphore()
	var wg sync.WaitGroup

	for i := range shares {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			dest := destinations[i]
			store, err := p.registry.Resolve(dest.StorageID)
			if err != nil {
				results[i] = putResult{index: i, err: err}
				return
			}
			blob := secretsplit.SerializeCombinedShare(shares[i])
			blobID, err := store.Put(ctx, dest, blob, fmt.Sprintf("%s.key%d", fileName, i))
			results[i] = putResult{index: i, blobID: blobID, err: err}
		}(i)
	}
	wg.Wait()

	placements := make([]KeySharePlacement, len(shares))
	for i, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("key share %d: %w", i, r.err)
		}
		blobID := r.blobID
		if _, err := tx.InsertKeyShare(ctx, domain.KeyShare{
			FileID:       fileID,
			ShareIndex:   int(shares[i].Index),
			StorageID:    destinations[i].StorageID,
			RemoteBlobID: blobID,
		}); err != nil {
			return nil, fmt.Errorf("key share %d metadata insert: %w", i, err)
		}
		placements[i] = KeySharePlacement{ShareIndex: int(shares[i].Index), KeyFileID: blobID, StorageID: destinations[i].StorageID}
	}
	return placements, nil
}
