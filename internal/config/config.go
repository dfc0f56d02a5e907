// Package config loads connection settings for the tds command from
// .tds.yaml, TDS_* environment variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/tds-go/internal/adapters/wire/sqlwire"
	"github.com/satishbabariya/tds-go/internal/version"
	"github.com/satishbabariya/tds-go/pkg/client"
)

// AppFs is the filesystem config and .env files are read from.
var AppFs = afero.NewOsFs()

const (
	configName = ".tds"
	envPrefix  = "TDS"
)

// Config holds the connection configuration.
type Config struct {
	// URL is a provider URL. When set it takes precedence over the
	// individual fields below.
	URL string `mapstructure:"url"`

	Provider     string        `mapstructure:"provider"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ServerName   string        `mapstructure:"server_name"`
	Database     string        `mapstructure:"database"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	Charset      string        `mapstructure:"charset"`
	TDSVersion   string        `mapstructure:"tds_version"`
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TextSize     int           `mapstructure:"text_size"`
	Debug        bool          `mapstructure:"debug"`

	// MinVersion is the oldest tds release the file works with.
	MinVersion string `mapstructure:"min_version"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

var keys = []string{
	"url", "provider", "host", "port", "server_name", "database", "username",
	"password", "charset", "tds_version", "login_timeout", "timeout",
	"text_size", "debug", "min_version",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("provider", "sqlite")
	v.SetDefault("tds_version", client.VersionAuto)
	v.SetDefault("text_size", sqlwire.DefaultTextSize)
	v.SetDefault("login_timeout", 10*time.Second)
	v.SetDefault("debug", false)
	return v
}

// Load reads the configuration. An explicit file must exist; otherwise
// .tds.yaml is looked up in the working directory, $HOME and
// $HOME/.config/tds. Environment variables override the file.
func Load(file string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	for _, k := range keys {
		// AutomaticEnv only covers keys viper already knows about.
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "tds"))

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.URL == "" {
		cfg.URL = os.Getenv("DATABASE_URL")
	}
	return cfg, cfg.Validate()
}

// loadDotEnv applies .env without overriding the environment, then
// .env.local with priority.
func loadDotEnv() error {
	for _, f := range []struct {
		name      string
		overwrite bool
	}{{".env", false}, {".env.local", true}} {
		file, err := AppFs.Open(f.name)
		if err != nil {
			continue
		}
		vars, err := godotenv.Parse(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
		for k, val := range vars {
			if _, set := os.LookupEnv(k); set && !f.overwrite {
				continue
			}
			os.Setenv(k, val)
		}
	}
	return nil
}

// Validate checks the provider, the protocol version and the minimum CLI
// version.
func (c *Config) Validate() error {
	if c.URL != "" {
		if _, err := sqlwire.ParseURL(c.URL); err != nil {
			return err
		}
	} else if _, err := sqlwire.ParseProvider(c.Provider); err != nil {
		return err
	}
	if _, err := client.ParseTDSVersion(c.TDSVersion); err != nil {
		return err
	}
	if c.MinVersion != "" {
		ok, err := version.Get().AtLeast(c.MinVersion)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("config requires tds %s or newer, running %s", c.MinVersion, version.Version)
		}
	}
	return nil
}

// Options converts the configuration into client options.
func (c *Config) Options() ([]client.Option, error) {
	opts := []client.Option{
		client.WithTDSVersion(c.TDSVersion),
		client.WithTextSize(c.TextSize),
	}

	if c.URL != "" {
		u, err := sqlwire.ParseURL(c.URL)
		if err != nil {
			return nil, err
		}
		db, err := expandPath(u.Provider, u.Database)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			client.WithProvider(string(u.Provider)),
			client.WithHost(u.Host),
			client.WithPort(u.Port),
			client.WithDatabase(db),
			client.WithUsername(u.User),
			client.WithPassword(u.Password),
			client.WithCharset(u.Charset),
			client.WithLoginTimeout(c.LoginTimeout),
			client.WithTimeout(c.Timeout),
		)
		if u.LoginTimeout > 0 {
			opts = append(opts, client.WithLoginTimeout(u.LoginTimeout))
		}
		if u.Timeout > 0 {
			opts = append(opts, client.WithTimeout(u.Timeout))
		}
		if u.TextSize > 0 {
			opts = append(opts, client.WithTextSize(u.TextSize))
		}
		return opts, nil
	}

	provider, err := sqlwire.ParseProvider(c.Provider)
	if err != nil {
		return nil, err
	}
	db, err := expandPath(provider, c.Database)
	if err != nil {
		return nil, err
	}
	return append(opts,
		client.WithProvider(string(provider)),
		client.WithHost(c.Host),
		client.WithPort(c.Port),
		client.WithServerName(c.ServerName),
		client.WithDatabase(db),
		client.WithUsername(c.Username),
		client.WithPassword(c.Password),
		client.WithCharset(c.Charset),
		client.WithLoginTimeout(c.LoginTimeout),
		client.WithTimeout(c.Timeout),
	), nil
}

// expandPath resolves ~ in SQLite file paths.
func expandPath(p sqlwire.Provider, db string) (string, error) {
	if p != sqlwire.SQLite || db == "" {
		return db, nil
	}
	path, err := homedir.Expand(db)
	if err != nil {
		return "", fmt.Errorf("invalid database path %q: %w", db, err)
	}
	return path, nil
}

// Save writes the connection settings, without the password, to
// $HOME/.config/tds/.tds.yaml and returns the file path.
func Save(cfg *Config) (string, error) {
	v := newViper()
	v.Set("url", cfg.URL)
	v.Set("provider", cfg.Provider)
	v.Set("host", cfg.Host)
	v.Set("port", cfg.Port)
	v.Set("server_name", cfg.ServerName)
	v.Set("database", cfg.Database)
	v.Set("username", cfg.Username)
	v.Set("charset", cfg.Charset)
	v.Set("tds_version", cfg.TDSVersion)
	v.Set("login_timeout", cfg.LoginTimeout.String())
	v.Set("timeout", cfg.Timeout.String())
	v.Set("text_size", cfg.TextSize)

	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(home, ".config", "tds")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return "", err
	}

	configFile := filepath.Join(configPath, configName+".yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", configFile, err)
	}
	return configFile, nil
}
