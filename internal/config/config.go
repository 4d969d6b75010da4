// Package config loads process configuration for the storage core from
// environment variables (and an optional config.yaml), following the
// viper + cobra wiring style used across the CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// StorageHandleConfig describes one externally-provisioned remote storage
// destination. Credentials themselves are owned by the external
// collaborator; this only records how to locate them.
type StorageHandleConfig struct {
	StorageID       string `mapstructure:"storage_id"`
	Type            string `mapstructure:"type"` // "google_drive" | "dropbox"
	CredentialsPath string `mapstructure:"credentials_path"`
	FolderID        string `mapstructure:"folder_id"`
}

// Config holds the application configuration.
type Config struct {
	LogLevel       string
	DatabaseDSN    string
	StorageHandles []StorageHandleConfig
}

// LoadConfig loads configuration from an optional config file, environment
// variables (ZSTORE_* prefix), and cobra persistent flags, in that ascending
// order of precedence.
func LoadConfig(configPath string, rootCmd *cobra.Command) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("database_dsn", "postgres://localhost:5432/shardvault?sslmode=disable")

	v.SetEnvPrefix("zstore")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // config.yaml is optional
	}

	if rootCmd != nil {
		if flag := rootCmd.PersistentFlags().Lookup("log-level"); flag != nil {
			_ = v.BindPFlag("log_level", flag)
		}
	}

	var handles []StorageHandleConfig
	if err := v.UnmarshalKey("storage_handles", &handles); err != nil {
		return nil, fmt.Errorf("invalid storage_handles configuration: %w", err)
	}

	return &Config{
		LogLevel:       strings.ToLower(v.GetString("log_level")),
		DatabaseDSN:    v.GetString("database_dsn"),
		StorageHandles: handles,
	}, nil
}
