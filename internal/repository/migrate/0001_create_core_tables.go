// Package migrate applies and rolls back the metadata store's schema.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

const CoreTablesVersion = "20250801000000_create_core_tables"

// CreateCoreTables creates the files, fragments, and key_shares tables.
type CreateCoreTables struct{}

func (m *CreateCoreTables) Version() string { return CoreTablesVersion }

func (m *CreateCoreTables) Up(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS files (
			file_id         UUID PRIMARY KEY,
			file_name       TEXT NOT NULL,
			owner_account   TEXT NOT NULL,
			owner_group     TEXT NOT NULL,
			shard_count     INTEGER NOT NULL,
			required_shards INTEGER NOT NULL,
			key_threshold   INTEGER NOT NULL,
			original_length BIGINT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK (required_shards <= shard_count),
			CHECK (original_length >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			shard_id       SERIAL PRIMARY KEY,
			file_id        UUID NOT NULL REFERENCES files(file_id) ON DELETE CASCADE,
			shard_index    INTEGER NOT NULL,
			storage_id     TEXT NOT NULL,
			remote_blob_id TEXT NOT NULL,
			folder_id      TEXT NOT NULL,
			shard_size     BIGINT NOT NULL,
			UNIQUE (file_id, shard_index)
		)`,
		`CREATE TABLE IF NOT EXISTS key_shares (
			key_id         SERIAL PRIMARY KEY,
			file_id        UUID NOT NULL REFERENCES files(file_id) ON DELETE CASCADE,
			share_index    INTEGER NOT NULL,
			storage_id     TEXT NOT NULL,
			remote_blob_id TEXT NOT NULL,
			UNIQUE (file_id, share_index)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %s: %w", m.Version(), err)
		}
	}
	return nil
}

func (m *CreateCoreTables) Down(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`DROP TABLE IF EXISTS key_shares`,
		`DROP TABLE IF EXISTS fragments`,
		`DROP TABLE IF EXISTS files`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %s: %w", m.Version(), err)
		}
	}
	return nil
}
