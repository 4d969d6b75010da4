package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zzenonn/shardvault/internal/domain"
	"github.com/zzenonn/shardvault/internal/pipeline"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Encrypt, erasure-code, and key-split a file across remote destinations",
	Args:  cobra.ExactArgs(1),
	Run:   runUpload,
}

var downloadCmd = &cobra.Command{
	Use:   "download <file-id> <output-path>",
	Short: "Reconstruct and decrypt a previously uploaded file",
	Args:  cobra.ExactArgs(2),
	Run:   runDownload,
}

func init() {
	uploadCmd.Flags().String("owner-account", "", "owning account identifier")
	uploadCmd.Flags().String("owner-group", "", "owning group identifier")
	uploadCmd.Flags().Int("n", 0, "total fragment count (N)")
	uploadCmd.Flags().Int("k", 0, "fragments required to reconstruct (K)")
	uploadCmd.Flags().Int("m", 0, "total key share count (M)")
	uploadCmd.Flags().Int("t", 0, "shares required to reconstruct the key (T)")
	uploadCmd.Flags().StringArray("fragment-dest", nil, "storage_id:type:folder_id, repeated N times in shard order")
	uploadCmd.Flags().StringArray("key-dest", nil, "storage_id:type:folder_id, repeated M times in share order")
}

// parseDestination parses the "storage_id:type:folder_id" flag format.
func parseDestination(raw string) (domain.DestinationDescriptor, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return domain.DestinationDescriptor{}, fmt.Errorf("destination %q must be storage_id:type[:folder_id]", raw)
	}
	d := domain.DestinationDescriptor{
		StorageID: parts[0],
		Type:      domain.StorageType(parts[1]),
	}
	if len(parts) == 3 {
		d.FolderID = parts[2]
	}
	return d, nil
}

func parseDestinations(raw []string) ([]domain.DestinationDescriptor, error) {
	out := make([]domain.DestinationDescriptor, len(raw))
	for i, r := range raw {
		d, err := parseDestination(r)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func runUpload(cmd *cobra.Command, args []string) {
	path := args[0]

	plaintext, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	ownerAccount, _ := cmd.Flags().GetString("owner-account")
	ownerGroup, _ := cmd.Flags().GetString("owner-group")
	n, _ := cmd.Flags().GetInt("n")
	k, _ := cmd.Flags().GetInt("k")
	m, _ := cmd.Flags().GetInt("m")
	t, _ := cmd.Flags().GetInt("t")
	rawFragmentDests, _ := cmd.Flags().GetStringArray("fragment-dest")
	rawKeyDests, _ := cmd.Flags().GetStringArray("key-dest")

	fragmentDests, err := parseDestinations(rawFragmentDests)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	keyDests, err := parseDestinations(rawKeyDests)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	result, err := pl.Upload(context.Background(), uploadInput(plaintext, path, ownerAccount, ownerGroup, n, k, m, t, fragmentDests, keyDests))
	if err != nil {
		fmt.Printf("Error uploading file: %v\n", err)
		os.Exit(1)
	}

	enc, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(enc))
}

func uploadInput(plaintext []byte, path, ownerAccount, ownerGroup string, n, k, m, t int, fragmentDests, keyDests []domain.DestinationDescriptor) pipeline.UploadInput {
	return pipeline.UploadInput{
		Plaintext:            plaintext,
		FileName:             filepath.Base(path),
		OwnerAccount:         ownerAccount,
		OwnerGroup:           ownerGroup,
		ShardCount:           n,
		RequiredShards:       k,
		ShareCount:           m,
		KeyThreshold:         t,
		FragmentDestinations: fragmentDests,
		KeyDestinations:      keyDests,
	}
}

func runDownload(cmd *cobra.Command, args []string) {
	fileID, outputPath := args[0], args[1]

	result, err := pl.Download(context.Background(), fileID)
	if err != nil {
		fmt.Printf("Error downloading file: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, result.Plaintext, 0o644); err != nil {
		fmt.Printf("Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("File %s (%s) downloaded successfully to %s\n", fileID, result.FileName, outputPath)
}
