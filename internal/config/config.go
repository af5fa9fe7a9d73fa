// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "MEMESCOPE"

type Config struct {
	DebugLogging    bool          `mapstructure:"debug_logging"`
	LogFile         string        `mapstructure:"log_file"`
	RPCURL          string        `mapstructure:"rpc_url"`
	ExcludeAccounts []string      `mapstructure:"exclude_accounts"`
	SnapshotFile    string        `mapstructure:"snapshot_file"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Workers         int           `mapstructure:"workers"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	ExportDir       string        `mapstructure:"export_dir"`
	ExportFormat    string        `mapstructure:"export_format"`
	LicenseKey      string        `mapstructure:"license_key"`
	KeygenAccount   string        `mapstructure:"keygen_account"`
	KeygenProduct   string        `mapstructure:"keygen_product"`
	KeygenToken     string        `mapstructure:"keygen_token"`
}

const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultWorkers         = 5
	DefaultSQLitePath      = "memescope.db"
	DefaultExportDir       = "exports"
	DefaultExportFormat    = "csv"
)

var keys = []string{
	"debug_logging", "log_file", "rpc_url", "exclude_accounts", "snapshot_file",
	"refresh_interval", "workers", "sqlite_path", "export_dir", "export_format",
	"license_key", "keygen_account", "keygen_product", "keygen_token",
}

// LoadConfig reads path (JSON or YAML) and applies MEMESCOPE_* overrides.
// An empty path uses defaults and the environment only.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	defaults := map[string]interface{}{
		"refresh_interval": DefaultRefreshInterval,
		"workers":          DefaultWorkers,
		"sqlite_path":      DefaultSQLitePath,
		"export_dir":       DefaultExportDir,
		"export_format":    DefaultExportFormat,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal видит только известные ключи, поэтому env-переменные привязываем явно.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ExcludeAccounts = splitList(cfg.ExcludeAccounts)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LicenseConfigured reports whether Keygen credentials are present.
func (c *Config) LicenseConfigured() bool {
	return c.LicenseKey != "" && c.KeygenAccount != "" && c.KeygenProduct != ""
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL != "" {
		if err := validateURL(cfg.RPCURL, "http"); err != nil {
			return fmt.Errorf("invalid rpc_url: %w", err)
		}
	}
	if cfg.RefreshInterval <= 0 {
		return errors.New("invalid refresh_interval")
	}
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	switch strings.ToLower(cfg.ExportFormat) {
	case "csv", "json":
	default:
		return fmt.Errorf("invalid export_format %q", cfg.ExportFormat)
	}
	if cfg.LicenseKey != "" && (cfg.KeygenAccount == "" || cfg.KeygenProduct == "") {
		return errors.New("license_key requires keygen_account and keygen_product")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// splitList flattens comma separated entries coming from the environment.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if clean := strings.TrimSpace(part); clean != "" {
				out = append(out, clean)
			}
		}
	}
	return out
}
