package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultSQLitePath, cfg.SQLitePath)
	assert.Equal(t, DefaultExportDir, cfg.ExportDir)
	assert.Equal(t, DefaultExportFormat, cfg.ExportFormat)
	assert.False(t, cfg.LicenseConfigured())
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
debug_logging: true
rpc_url: https://api.mainnet-beta.solana.com
exclude_accounts:
  - 5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1
snapshot_file: data/trending.json
refresh_interval: 45s
workers: 8
export_format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.DebugLogging)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCURL)
	assert.Equal(t, []string{"5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"}, cfg.ExcludeAccounts)
	assert.Equal(t, "data/trending.json", cfg.SnapshotFile)
	assert.Equal(t, 45*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "json", cfg.ExportFormat)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.json", `{"workers": 2, "sqlite_path": "file.db"}`)

	t.Setenv("MEMESCOPE_WORKERS", "12")
	t.Setenv("MEMESCOPE_EXCLUDE_ACCOUNTS", "AccountA, AccountB")
	t.Setenv("MEMESCOPE_LICENSE_KEY", "KEY-123")
	t.Setenv("MEMESCOPE_KEYGEN_ACCOUNT", "acct")
	t.Setenv("MEMESCOPE_KEYGEN_PRODUCT", "prod")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, "file.db", cfg.SQLitePath)
	assert.Equal(t, []string{"AccountA", "AccountB"}, cfg.ExcludeAccounts)
	assert.True(t, cfg.LicenseConfigured())
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad rpc scheme", `rpc_url: ws://localhost:8900`},
		{"rpc without host", `rpc_url: "http://"`},
		{"zero workers", `workers: 0`},
		{"negative interval", `refresh_interval: -5s`},
		{"unknown export format", `export_format: xml`},
		{"license without keygen account", `license_key: KEY-1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, "config.yaml", tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
