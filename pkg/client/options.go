// Package client provides client configuration options.
package client

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/satishbabariya/tds-go/internal/adapters/wire/sqlwire"
)

// DefaultServerPort is the port assumed for a ServerName without one.
const DefaultServerPort = 5000

// Config contains all connection options.
type Config struct {
	// Provider selects the backing database: mysql, postgres or sqlite.
	// Default: sqlite
	Provider string

	// Host and Port address the server. A zero Port selects the provider's
	// usual port.
	Host string
	Port int

	// ServerName is an alternative to Host and Port in host[:port] form.
	// The port defaults to DefaultServerPort.
	ServerName string

	// Database is the initial database, or the file path for SQLite.
	Database string

	Username string
	Password string

	// Charset is the client character set.
	Charset string

	// TDSVersion is the protocol version to negotiate.
	// Default: auto
	TDSVersion string

	// LoginTimeout bounds connecting.
	LoginTimeout time.Duration

	// Timeout bounds every command. Zero means no limit.
	Timeout time.Duration

	// TextSize is the widest text or image value fetched.
	// Default: 32768
	TextSize int

	// MessageHandler sees each diagnostic as it arrives.
	MessageHandler MessageHandler

	// Middleware wraps every command, outermost first.
	Middleware []Middleware

	// Logger receives execution logs. Defaults to the debug logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:   string(sqlwire.SQLite),
		TDSVersion: VersionAuto,
		TextSize:   sqlwire.DefaultTextSize,
	}
}

// Option is a function that configures a connection.
type Option func(*Config)

// WithProvider sets the backing database.
func WithProvider(provider string) Option {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithHost sets the server host.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}

// WithPort sets the server port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithServerName sets the server as host[:port].
func WithServerName(name string) Option {
	return func(c *Config) {
		c.ServerName = name
	}
}

// WithDatabase sets the initial database.
func WithDatabase(db string) Option {
	return func(c *Config) {
		c.Database = db
	}
}

// WithUsername sets the login name.
func WithUsername(user string) Option {
	return func(c *Config) {
		c.Username = user
	}
}

// WithPassword sets the login password.
func WithPassword(password string) Option {
	return func(c *Config) {
		c.Password = password
	}
}

// WithCharset sets the client character set.
func WithCharset(charset string) Option {
	return func(c *Config) {
		c.Charset = charset
	}
}

// WithTDSVersion sets the protocol version.
func WithTDSVersion(v string) Option {
	return func(c *Config) {
		c.TDSVersion = v
	}
}

// WithLoginTimeout sets the connect timeout.
func WithLoginTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.LoginTimeout = d
	}
}

// WithTimeout sets the command timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithTextSize sets the widest text or image value fetched.
func WithTextSize(n int) Option {
	return func(c *Config) {
		c.TextSize = n
	}
}

// WithMessageHandler sets the diagnostic handler.
func WithMessageHandler(h MessageHandler) Option {
	return func(c *Config) {
		c.MessageHandler = h
	}
}

// WithMiddleware appends command middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Config) {
		c.Middleware = append(c.Middleware, mw...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// ApplyOptions applies options to a config.
func ApplyOptions(config *Config, opts ...Option) {
	for _, opt := range opts {
		opt(config)
	}
}

// sessionConfig resolves the options into a session configuration.
func (c *Config) sessionConfig() (sqlwire.Config, error) {
	provider, err := sqlwire.ParseProvider(c.Provider)
	if err != nil {
		return sqlwire.Config{}, err
	}
	if _, err := ParseTDSVersion(c.TDSVersion); err != nil {
		return sqlwire.Config{}, err
	}

	host, port := c.Host, c.Port
	if host == "" && c.ServerName != "" {
		host, port, err = splitServerName(c.ServerName)
		if err != nil {
			return sqlwire.Config{}, err
		}
		if c.Port != 0 {
			port = c.Port
		}
	}

	return sqlwire.Config{
		Provider:     provider,
		Host:         host,
		Port:         port,
		Database:     c.Database,
		User:         c.Username,
		Password:     c.Password,
		Charset:      c.Charset,
		LoginTimeout: c.LoginTimeout,
		Timeout:      c.Timeout,
		TextSize:     c.TextSize,
	}, nil
}

func splitServerName(name string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(name)
	if err != nil {
		// no port
		return name, DefaultServerPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid server name %q: %w", name, err)
	}
	return host, port, nil
}
