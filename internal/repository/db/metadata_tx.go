package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/zzenonn/shardvault/internal/domain"
)

// Tx is a single metadata transaction. Insert* calls execute immediately
// against the open *sql.Tx; Postgres's own MVCC snapshot isolation keeps
// those rows invisible to other connections until Commit. Commit and
// Rollback delegate straight to the database driver.
type Tx struct {
	tx *sql.Tx
}

// Begin opens a new metadata transaction. The caller must Commit or
// Rollback it exactly once.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db: failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// InsertFile creates the File row for a new upload, assigning it a fresh
// UUID, before any remote blob has been written, so a rollback at any
// later step leaves no orphan metadata.
func (t *Tx) InsertFile(ctx context.Context, f domain.File) (domain.File, error) {
	f.FileID = uuid.NewString()
	const q = `
		INSERT INTO files (file_id, file_name, owner_account, owner_group, shard_count, required_shards, key_threshold, original_length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
	err := t.tx.QueryRowContext(ctx, q,
		f.FileID, f.FileName, f.OwnerAccount, f.OwnerGroup, f.ShardCount, f.RequiredShards, f.KeyThreshold, f.OriginalLength,
	).Scan(&f.CreatedAt)
	if err != nil {
		return domain.File{}, fmt.Errorf("db: failed to insert file row: %w", err)
	}
	return f, nil
}

// InsertFragment records a fragment's remote placement after its upload
// has already succeeded.
func (t *Tx) InsertFragment(ctx context.Context, frag domain.Fragment) (domain.Fragment, error) {
	const q = `
		INSERT INTO fragments (file_id, shard_index, storage_id, remote_blob_id, folder_id, shard_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING shard_id`
	err := t.tx.QueryRowContext(ctx, q,
		frag.FileID, frag.ShardIndex, frag.StorageID, frag.RemoteBlobID, frag.FolderID, frag.ShardSize,
	).Scan(&frag.ShardID)
	if err != nil {
		return domain.Fragment{}, fmt.Errorf("db: failed to insert fragment row: %w", err)
	}
	return frag, nil
}

// InsertKeyShare records a key share's remote placement after its upload
// has already succeeded.
func (t *Tx) InsertKeyShare(ctx context.Context, ks domain.KeyShare) (domain.KeyShare, error) {
	const q = `
		INSERT INTO key_shares (file_id, share_index, storage_id, remote_blob_id)
		VALUES ($1, $2, $3, $4)
		RETURNING key_id`
	err := t.tx.QueryRowContext(ctx, q,
		ks.FileID, ks.ShareIndex, ks.StorageID, ks.RemoteBlobID,
	).Scan(&ks.KeyID)
	if err != nil {
		return domain.KeyShare{}, fmt.Errorf("db: failed to insert key share row: %w", err)
	}
	return ks, nil
}

// Commit finalizes the transaction. Only after this returns nil are the
// File, Fragment, and KeyShare rows visible to other readers.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback discards every row added in this transaction. Already-uploaded
// remote blobs are not touched; the caller is responsible for any cleanup.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
