package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/domain"
)

// GoogleDriveStore implements BlobStore over the Google Drive API v3. Put
// inserts a new file under the destination folder; Get downloads by file
// id. Neither retries on failure; the caller decides whether to retry.
type GoogleDriveStore struct {
	svc   *drive.Service
	quiet bool
}

// NewGoogleDriveStore builds a Drive adapter from an already-authenticated
// HTTP client. Acquiring and refreshing that client's OAuth token is the
// caller's responsibility; this constructor only dials the Drive API with
// the handle it is given. When quiet is false, Put and Get render a
// progress bar to stderr.
func NewGoogleDriveStore(ctx context.Context, authedClient *http.Client, quiet bool) (*GoogleDriveStore, error) {
	svc, err := drive.NewService(ctx, option.WithHTTPClient(authedClient))
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to construct drive client: %w", err)
	}
	return &GoogleDriveStore{svc: svc, quiet: quiet}, nil
}

func (s *GoogleDriveStore) StorageType() domain.StorageType { return domain.StorageGoogleDrive }

// Put uploads data as a new file named suggestedName under dest.FolderID.
func (s *GoogleDriveStore) Put(ctx context.Context, dest domain.DestinationDescriptor, data []byte, suggestedName string) (string, error) {
	f := &drive.File{
		Name:     suggestedName,
		MimeType: "application/octet-stream",
	}
	if dest.FolderID != "" {
		f.Parents = []string{dest.FolderID}
	}

	var media io.Reader = bytes.NewReader(data)
	if !s.quiet {
		bar := progressbar.DefaultBytes(int64(len(data)), "uploading "+suggestedName)
		pbReader := progressbar.NewReader(media, bar)
		media = &pbReader
	}

	created, err := s.svc.Files.Create(f).
		Media(media).
		Context(ctx).
		Fields("id").
		Do()
	if err != nil {
		return "", apperrors.RemoteUnavailable(err)
	}
	log.Debugf("uploaded %s to google_drive file id %s", suggestedName, created.Id)
	return created.Id, nil
}

// Get downloads the file identified by blobID in full.
func (s *GoogleDriveStore) Get(ctx context.Context, blobID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(blobID).Context(ctx).Download()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.RemoteUnavailable(err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if !s.quiet && resp.ContentLength > 0 {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+blobID)
		pbReader := progressbar.NewReader(body, bar)
		body = &pbReader
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperrors.RemoteUnavailable(err)
	}
	return data, nil
}
