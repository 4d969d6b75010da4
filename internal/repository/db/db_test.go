package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/domain"
	"github.com/zzenonn/shardvault/internal/repository/migrate"
)

// openTestStore requires a live PostgreSQL instance addressed by
// ZSTORE_TEST_DSN; it is skipped otherwise.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("ZSTORE_TEST_DSN")
	if dsn == "" {
		t.Skip("ZSTORE_TEST_DSN not set, skipping integration test")
	}
	store, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := migrate.Up(context.Background(), store.DB); err != nil {
		t.Fatalf("migrate.Up() error = %v", err)
	}
	return store
}

func TestInsertFileFragmentKeyShareCommit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	file, err := tx.InsertFile(ctx, domain.File{
		FileName: "t.bin", OwnerAccount: "alice", OwnerGroup: "engineering",
		ShardCount: 4, RequiredShards: 2, KeyThreshold: 1, OriginalLength: 1024,
	})
	if err != nil {
		t.Fatalf("InsertFile() error = %v", err)
	}
	if file.FileID == "" {
		t.Fatal("InsertFile() did not assign a FileID")
	}

	if _, err := tx.InsertFragment(ctx, domain.Fragment{
		FileID: file.FileID, ShardIndex: 0, StorageID: "drive-a", RemoteBlobID: "blob-0", FolderID: "f", ShardSize: 256,
	}); err != nil {
		t.Fatalf("InsertFragment() error = %v", err)
	}
	if _, err := tx.InsertKeyShare(ctx, domain.KeyShare{
		FileID: file.FileID, ShareIndex: 1, StorageID: "drive-a", RemoteBlobID: "key-1",
	}); err != nil {
		t.Fatalf("InsertKeyShare() error = %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, err := store.GetFile(ctx, file.FileID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if got.FileName != "t.bin" {
		t.Errorf("FileName = %q, want %q", got.FileName, "t.bin")
	}

	frags, err := store.ListFragments(ctx, file.FileID)
	if err != nil {
		t.Fatalf("ListFragments() error = %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("len(ListFragments()) = %d, want 1", len(frags))
	}

	shares, err := store.ListKeyShares(ctx, file.FileID)
	if err != nil {
		t.Fatalf("ListKeyShares() error = %v", err)
	}
	if len(shares) != 1 {
		t.Fatalf("len(ListKeyShares()) = %d, want 1", len(shares))
	}
}

func TestRollbackLeavesNoMetadata(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	file, err := tx.InsertFile(ctx, domain.File{
		FileName: "rollback.bin", ShardCount: 2, RequiredShards: 1, KeyThreshold: 1, OriginalLength: 10,
	})
	if err != nil {
		t.Fatalf("InsertFile() error = %v", err)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if _, err := store.GetFile(ctx, file.FileID); !errors.Is(err, apperrors.ErrFileNotFound) {
		t.Errorf("GetFile() after rollback error = %v, want %v", err, apperrors.ErrFileNotFound)
	}
}

func TestGetFileNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetFile(context.Background(), "00000000-0000-0000-0000-000000000000"); !errors.Is(err, apperrors.ErrFileNotFound) {
		t.Errorf("GetFile() error = %v, want %v", err, apperrors.ErrFileNotFound)
	}
}
