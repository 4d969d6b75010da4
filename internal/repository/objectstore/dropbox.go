package objectstore

import (
	"context"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/domain"
)

// DropboxStore implements BlobStore against a real, authenticated Dropbox
// SDK client, but Put and Get deliberately return ErrUnsupported without
// making a network call: upload and download are not wired up yet.
type DropboxStore struct {
	client files.Client
}

// NewDropboxStore constructs a Dropbox files client from an OAuth token.
func NewDropboxStore(token string) *DropboxStore {
	cfg := dropbox.Config{
		Token:    token,
		LogLevel: dropbox.LogOff,
	}
	return &DropboxStore{client: files.New(cfg)}
}

func (s *DropboxStore) StorageType() domain.StorageType { return domain.StorageDropbox }

func (s *DropboxStore) Put(ctx context.Context, dest domain.DestinationDescriptor, data []byte, suggestedName string) (string, error) {
	return "", apperrors.ErrUnsupported
}

func (s *DropboxStore) Get(ctx context.Context, blobID string) ([]byte, error) {
	return nil, apperrors.ErrUnsupported
}
