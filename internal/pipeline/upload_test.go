package pipeline

import (
	"errors"
	"testing"

	"github.com/zzenonn/shardvault/internal/apperrors"
	"github.com/zzenonn/shardvault/internal/domain"
)

func destinations(n int) []domain.DestinationDescriptor {
	out := make([]domain.DestinationDescriptor, n)
	for i := range out {
		out[i] = domain.DestinationDescriptor{StorageID: "primary", Type: domain.StorageGoogleDrive}
	}
	return out
}

func TestUploadInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      UploadInput
		wantErr bool
	}{
		{
			name: "valid",
			in: UploadInput{
				ShardCount: 6, RequiredShards: 4, ShareCount: 5, KeyThreshold: 3,
				FragmentDestinations: destinations(6), KeyDestinations: destinations(5),
			},
			wantErr: false,
		},
		{
			name: "required shards exceeds shard count",
			in: UploadInput{
				ShardCount: 4, RequiredShards: 6, ShareCount: 5, KeyThreshold: 3,
				FragmentDestinations: destinations(4), KeyDestinations: destinations(5),
			},
			wantErr: true,
		},
		{
			name: "zero required shards",
			in: UploadInput{
				ShardCount: 4, RequiredShards: 0, ShareCount: 5, KeyThreshold: 3,
				FragmentDestinations: destinations(4), KeyDestinations: destinations(5),
			},
			wantErr: true,
		},
		{
			name: "key threshold exceeds share count",
			in: UploadInput{
				ShardCount: 4, RequiredShards: 2, ShareCount: 3, KeyThreshold: 5,
				FragmentDestinations: destinations(4), KeyDestinations: destinations(3),
			},
			wantErr: true,
		},
		{
			name: "fragment destination count mismatch",
			in: UploadInput{
				ShardCount: 4, RequiredShards: 2, ShareCount: 3, KeyThreshold: 2,
				FragmentDestinations: destinations(2), KeyDestinations: destinations(3),
			},
			wantErr: true,
		},
		{
			name: "key destination count mismatch",
			in: UploadInput{
				ShardCount: 4, RequiredShards: 2, ShareCount: 3, KeyThreshold: 2,
				FragmentDestinations: destinations(4), KeyDestinations: destinations(1),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidConfig) {
				t.Errorf("validate() error = %v, want wrapping %v", err, apperrors.ErrInvalidConfig)
			}
		})
	}
}
