package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/domain"
)

// GetFile loads the File row by file_id, returning ErrFileNotFound if
// absent.
func (s *Store) GetFile(ctx context.Context, fileID string) (domain.File, error) {
	const q = `
		SELECT file_id, file_name, owner_account, owner_group, shard_count, required_shards, key_threshold, original_length, created_at
		FROM files WHERE file_id = $1`
	var f domain.File
	err := s.DB.QueryRowContext(ctx, q, fileID).Scan(
		&f.FileID, &f.FileName, &f.OwnerAccount, &f.OwnerGroup, &f.ShardCount, &f.RequiredShards, &f.KeyThreshold, &f.OriginalLength, &f.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.File{}, apperrors.ErrFileNotFound
	}
	if err != nil {
		return domain.File{}, fmt.Errorf("db: failed to load file %s: %w", fileID, err)
	}
	return f, nil
}

// ListFragments returns every Fragment row for fileID ordered by
// shard_index, the order the download pipeline fetches them in.
func (s *Store) ListFragments(ctx context.Context, fileID string) ([]domain.Fragment, error) {
	const q = `
		SELECT shard_id, file_id, shard_index, storage_id, remote_blob_id, folder_id, shard_size
		FROM fragments WHERE file_id = $1 ORDER BY shard_index ASC`
	rows, err := s.DB.QueryContext(ctx, q, fileID)
	if err != nil {
		return nil, fmt.Errorf("db: failed to list fragments for %s: %w", fileID, err)
	}
	defer rows.Close()

	var out []domain.Fragment
	for rows.Next() {
		var frag domain.Fragment
		if err := rows.Scan(&frag.ShardID, &frag.FileID, &frag.ShardIndex, &frag.StorageID, &frag.RemoteBlobID, &frag.FolderID, &frag.ShardSize); err != nil {
			return nil, fmt.Errorf("db: failed to scan fragment row: %w", err)
		}
		out = append(out, frag)
	}
	return out, rows.Err()
}

// ListKeyShares returns every KeyShare row for fileID in storage
// (insertion) order, the order the download pipeline consumes them in.
func (s *Store) ListKeyShares(ctx context.Context, fileID string) ([]domain.KeyShare, error) {
	const q = `
		SELECT key_id, file_id, share_index, storage_id, remote_blob_id
		FROM key_shares WHERE file_id = $1 ORDER BY key_id ASC`
	rows, err := s.DB.QueryContext(ctx, q, fileID)
	if err != nil {
		return nil, fmt.Errorf("db: failed to list key shares for %s: %w", fileID, err)
	}
	defer rows.Close()

	var out []domain.KeyShare
	for rows.Next() {
		var ks domain.KeyShare
		if err := rows.Scan(&ks.KeyID, &ks.FileID, &ks.ShareIndex, &ks.StorageID, &ks.RemoteBlobID); err != nil {
			return nil, fmt.Errorf("db: failed to scan key share row: %w", err)
		}
		out = append(out, ks)
	}
	return out, rows.Err()
}
