package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/tds-go/pkg/client"
)

const home = "/home/tds"

// setup swaps in an in-memory filesystem and a clean environment.
func setup(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	old := AppFs
	AppFs = fs
	t.Cleanup(func() { AppFs = old })

	homedir.DisableCache = true
	t.Setenv("HOME", home)
	for _, k := range append(keys, "DATABASE_URL") {
		name := k
		if k != "DATABASE_URL" {
			name = "TDS_" + strings.ToUpper(k)
		}
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return fs
}

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	setup(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Provider)
	assert.Equal(t, client.VersionAuto, cfg.TDSVersion)
	assert.Equal(t, 32768, cfg.TextSize)
	assert.Equal(t, 10*time.Second, cfg.LoginTimeout)
	assert.Empty(t, cfg.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	fs := setup(t)
	write(t, fs, filepath.Join(home, ".tds.yaml"), `
provider: mysql
host: db.local
port: 3307
database: pubs2
username: sa
tds_version: "5.0"
timeout: 30s
`)
	t.Setenv("TDS_HOST", "override.local")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tds.yaml"), cfg.File)
	assert.Equal(t, "mysql", cfg.Provider)
	assert.Equal(t, "override.local", cfg.Host)
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, "pubs2", cfg.Database)
	assert.Equal(t, "5.0", cfg.TDSVersion)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadExplicitFile(t *testing.T) {
	fs := setup(t)
	write(t, fs, "/etc/tds/prod.yaml", "url: postgres://app@pg.local/shop\n")

	cfg, err := Load("/etc/tds/prod.yaml")
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@pg.local/shop", cfg.URL)

	_, err = Load("/etc/tds/missing.yaml")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	fs := setup(t)
	write(t, fs, ".env", "TDS_DATABASE=from-env-file\nTDS_USERNAME=sa\nDATABASE_URL=sqlite3://app.db\n")
	write(t, fs, ".env.local", "TDS_USERNAME=local\n")
	t.Setenv("TDS_DATABASE", "from-shell")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-shell", cfg.Database)
	assert.Equal(t, "local", cfg.Username)
	assert.Equal(t, "sqlite3://app.db", cfg.URL)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{Provider: "pg", TDSVersion: "7.4"}).Validate())
	assert.Error(t, (&Config{Provider: "oracle"}).Validate())
	assert.Error(t, (&Config{Provider: "mysql", TDSVersion: "9.9"}).Validate())
	assert.Error(t, (&Config{URL: "nope"}).Validate())
}

func TestOptions(t *testing.T) {
	setup(t)

	cfg := &Config{URL: "mysql://sa:pw@db:3307/pubs2?charset=latin1&timeout=5s", TDSVersion: "5.0", TextSize: 1024}
	opts, err := cfg.Options()
	require.NoError(t, err)

	got := client.DefaultConfig()
	client.ApplyOptions(got, opts...)
	assert.Equal(t, "mysql", got.Provider)
	assert.Equal(t, "db", got.Host)
	assert.Equal(t, 3307, got.Port)
	assert.Equal(t, "pubs2", got.Database)
	assert.Equal(t, "sa", got.Username)
	assert.Equal(t, "pw", got.Password)
	assert.Equal(t, "latin1", got.Charset)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.Equal(t, 1024, got.TextSize)
	assert.Equal(t, "5.0", got.TDSVersion)

	cfg = &Config{Provider: "sqlite3", Database: "~/data/app.db"}
	opts, err = cfg.Options()
	require.NoError(t, err)
	got = client.DefaultConfig()
	client.ApplyOptions(got, opts...)
	assert.Equal(t, "sqlite", got.Provider)
	assert.Equal(t, filepath.Join(home, "data/app.db"), got.Database)
}

func TestSave(t *testing.T) {
	fs := setup(t)

	path, err := Save(&Config{Provider: "postgres", Host: "pg.local", Database: "shop", Username: "app", Password: "secret", TDSVersion: "auto", Timeout: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tds", ".tds.yaml"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pg.local")
	assert.NotContains(t, string(data), "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Provider)
	assert.Equal(t, "shop", cfg.Database)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestValidateMinVersion(t *testing.T) {
	assert.NoError(t, (&Config{Provider: "sqlite", MinVersion: "0.0.1"}).Validate())
	assert.Error(t, (&Config{Provider: "sqlite", MinVersion: "99.0"}).Validate())
	assert.Error(t, (&Config{Provider: "sqlite", MinVersion: "latest"}).Validate())
}
