package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/zzenonn/shardvault/internal/config"
	"github.com/zzenonn/shardvault/internal/logging"
	"github.com/zzenonn/shardvault/internal/pipeline"
	"github.com/zzenonn/shardvault/internal/repository/db"
	"github.com/zzenonn/shardvault/internal/repository/migrate"
	"github.com/zzenonn/shardvault/internal/repository/objectstore"
	"github.com/zzenonn/shardvault/internal/storageregistry"
)

var (
	cfg        *config.Config
	store      *db.Store
	registry   *storageregistry.Registry
	pl         *pipeline.Pipeline
	configPath string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "shardvault",
	Short: "Cryptographically split file storage across multiple clouds",
	Long:  "A CLI for encrypting, erasure-coding, and key-splitting files across independent remote storage handles",
}

func init() {
	cobra.OnInitialize(initConfig)
	setupFlags()
	addCommands()
}

func setupFlags() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress bars")
}

func addCommands() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the metadata store schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Run: func(cmd *cobra.Command, args []string) {
		if err := migrate.Up(context.Background(), store.DB); err != nil {
			fmt.Printf("Error applying migrations: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Metadata store schema is up to date")
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	Run: func(cmd *cobra.Command, args []string) {
		if err := migrate.Down(context.Background(), store.DB); err != nil {
			fmt.Printf("Error rolling back migrations: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Metadata store schema rolled back")
	},
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration for debugging",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Configuration:\n")
		fmt.Printf("  Log Level: %s\n", cfg.LogLevel)
		fmt.Printf("  Database DSN host: %s\n", dsnHost(cfg.DatabaseDSN))
		fmt.Printf("\nStorage Handles:\n")
		for _, h := range cfg.StorageHandles {
			fmt.Printf("  %s:\n", h.StorageID)
			fmt.Printf("    Type: %s\n", h.Type)
			fmt.Printf("    Folder: %s\n", h.FolderID)
		}
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(configPath, rootCmd)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logging.InitLogger(cfg)

	store, err = db.Open(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to metadata store: %v", err)
	}

	registry = buildRegistry(context.Background(), cfg.StorageHandles)
	pl = pipeline.New(store, registry, 0)
}

// buildRegistry constructs a blob store adapter for every configured
// storage handle it can authenticate, logging and skipping the rest.
func buildRegistry(ctx context.Context, handles []config.StorageHandleConfig) *storageregistry.Registry {
	reg := storageregistry.New()
	for _, h := range handles {
		switch h.Type {
		case "google_drive":
			client, err := googleDriveClient(ctx, h.CredentialsPath)
			if err != nil {
				log.Warnf("skipping storage handle %s: %v", h.StorageID, err)
				continue
			}
			s, err := objectstore.NewGoogleDriveStore(ctx, client, quiet)
			if err != nil {
				log.Warnf("skipping storage handle %s: %v", h.StorageID, err)
				continue
			}
			reg.Register(h.StorageID, s)
		case "dropbox":
			token, err := os.ReadFile(h.CredentialsPath)
			if err != nil {
				log.Warnf("skipping storage handle %s: %v", h.StorageID, err)
				continue
			}
			reg.Register(h.StorageID, objectstore.NewDropboxStore(strings.TrimSpace(string(token))))
		default:
			log.Warnf("skipping storage handle %s: unsupported type %q", h.StorageID, h.Type)
		}
	}
	return reg
}

// googleDriveClient loads a service-account JSON key from path and returns
// an HTTP client authorized for the Drive scope.
func googleDriveClient(ctx context.Context, credentialsPath string) (*http.Client, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, "https://www.googleapis.com/auth/drive.file")
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}

// dsnHost extracts just the host[:port]/dbname portion of a DSN, dropping
// any embedded credentials.
func dsnHost(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "(unparseable)"
	}
	return u.Host + u.Path
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
