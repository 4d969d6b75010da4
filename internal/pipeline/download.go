package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/crypto/aead"
	"github.com/zzenonn/shardvault/internal/crypto/secretsplit"
	"github.com/zzenonn/shardvault/internal/domain"
	"github.com/zzenonn/shardvault/internal/erasure"
)

// DownloadResult is the recovered file.
type DownloadResult struct {
	FileName  string
	Plaintext []byte
}

// Download loads fileID's metadata, reconstructs its symmetric key from
// any threshold number of key shares, reconstructs its RS-input buffer
// from any K of its N fragments, and returns the decrypted plaintext.
func (p *Pipeline) Download(ctx context.Context, fileID string) (DownloadResult, error) {
	file, err := p.store.GetFile(ctx, fileID)
	if err != nil {
		return DownloadResult{}, err
	}

	fragments, err := p.store.ListFragments(ctx, fileID)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("pipeline: failed to list fragments: %w", err)
	}
	keyShares, err := p.store.ListKeyShares(ctx, fileID)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("pipeline: failed to list key shares: %w", err)
	}
	if len(fragments) == 0 || len(keyShares) == 0 {
		return DownloadResult{}, apperrors.ErrCorrupt
	}
	if len(keyShares) < file.KeyThreshold {
		return DownloadResult{}, apperrors.ErrCorrupt
	}

	shares, err := p.collectKeyShares(ctx, keyShares, file.KeyThreshold)
	if err != nil {
		return DownloadResult{}, err
	}
	keyArr, err := secretsplit.Combine(shares, file.KeyThreshold)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("%w: %v", apperrors.ErrKeyReconstructFailed, err)
	}

	fetchedFragments, fetchedIndices, err := p.collectFragments(ctx, fragments, file.RequiredShards)
	if err != nil {
		return DownloadResult{}, err
	}
	normalized := erasure.NormalizeLength(fetchedFragments)

	// The RS-input buffer is exactly prefix(4) ‖ nonce ‖ ciphertext ‖ tag;
	// its length is derivable from the stored plaintext length without a
	// separate padding count.
	rsInputLen := int(file.OriginalLength) + 4 + aead.NonceSize + aead.TagSize
	rsInput, err := erasure.Decode(normalized, fetchedIndices, file.RequiredShards, file.ShardCount, rsInputLen, 0)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("pipeline: failed to RS-decode: %w", err)
	}
	if len(rsInput) < 4+aead.NonceSize {
		return DownloadResult{}, apperrors.ErrCorrupt
	}

	// rsInput[:4] is the big-endian length prefix recorded at encode time;
	// file.OriginalLength from the metadata row is authoritative, so it is
	// skipped rather than parsed.
	aeadBlob := rsInput[4:]

	plaintext, err := aead.Decrypt(keyArr[:], aeadBlob)
	if err != nil {
		return DownloadResult{}, err
	}

	return DownloadResult{FileName: file.FileName, Plaintext: plaintext}, nil
}

// collectKeyShares fetches and parses KeyShare blobs concurrently,
// skipping rows that fail to fetch or parse. Once threshold valid shares
// have accumulated it cancels the remaining fetches, then waits for every
// launched goroutine to return.
func (p *Pipeline) collectKeyShares(ctx context.Context, rows []domain.KeyShare, threshold int) ([]secretsplit.Share, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		got     []secretsplit.Share
		wg      sync.WaitGroup
		success int32
	)
	sem := p.semaphore()

	for _, row := range rows {
		wg.Add(1)
		go func(row domain.KeyShare) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}

			store, err := p.registry.Resolve(row.StorageID)
			if err != nil {
				logSkip("key share", row.ShareIndex, err)
				return
			}
			blob, err := store.Get(ctx, row.RemoteBlobID)
			if err != nil {
				logSkip("key share", row.ShareIndex, err)
				return
			}
			share, err := secretsplit.ParseCombinedShare(blob)
			if err != nil {
				logSkip("key share", row.ShareIndex, err)
				return
			}

			mu.Lock()
			got = append(got, share)
			mu.Unlock()
			if atomic.AddInt32(&success, 1) >= int32(threshold) {
				cancel()
			}
		}(row)
	}
	wg.Wait()

	if len(got) < threshold {
		return nil, apperrors.ErrKeyShareShortfall
	}
	return got, nil
}

// collectFragments fetches Fragment blobs concurrently, skipping rows that
// fail to fetch. Once k fragments have been obtained it cancels the
// remaining fetches, then waits for every launched goroutine to return. The
// returned slices hold the k lowest-indexed fetched fragments, sorted by
// original shard index.
func (p *Pipeline) collectFragments(ctx context.Context, rows []domain.Fragment, k int) ([][]byte, []int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		results []fetchResult
		wg      sync.WaitGroup
		success int32
	)
	sem := p.semaphore()

	for _, row := range rows {
		wg.Add(1)
		go func(row domain.Fragment) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}

			store, err := p.registry.Resolve(row.StorageID)
			if err != nil {
				logSkip("fragment", row.ShardIndex, err)
				return
			}
			blob, err := store.Get(ctx, row.RemoteBlobID)
			if err != nil {
				logSkip("fragment", row.ShardIndex, err)
				return
			}

			mu.Lock()
			results = append(results, fetchResult{index: row.ShardIndex, data: blob})
			mu.Unlock()
			if atomic.AddInt32(&success, 1) >= int32(k) {
				cancel()
			}
		}(row)
	}
	wg.Wait()

	if len(results) < k {
		return nil, nil, apperrors.ErrFragmentShortfall
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	results = results[:k]

	data := make([][]byte, k)
	indices := make([]int, k)
	for i, r := range results {
		data[i] = r.data
		indices[i] = r.index
	}
	return data, indices, nil
}
