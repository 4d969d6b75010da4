package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/domain"
)

func TestDropboxStorePutIsUnsupported(t *testing.T) {
	s := NewDropboxStore("fake-token")
	_, err := s.Put(context.Background(), domain.DestinationDescriptor{}, []byte("data"), "name")
	if !errors.Is(err, apperrors.ErrUnsupported) {
		t.Errorf("Put() error = %v, want %v", err, apperrors.ErrUnsupported)
	}
}

func TestDropboxStoreGetIsUnsupported(t *testing.T) {
	s := NewDropboxStore("fake-token")
	_, err := s.Get(context.Background(), "some-blob-id")
	if !errors.Is(err, apperrors.ErrUnsupported) {
		t.Errorf("Get() error = %v, want %v", err, apperrors.ErrUnsupported)
	}
}

func TestDropboxStoreType(t *testing.T) {
	s := NewDropboxStore("fake-token")
	if got := s.StorageType(); got != domain.StorageDropbox {
		t.Errorf("StorageType() = %v, want %v", got, domain.StorageDropbox)
	}
}

var _ BlobStore = (*DropboxStore)(nil)
var _ BlobStore = (*GoogleDriveStore)(nil)
