// Package sqlwire implements wire.Session on top of database/sql drivers for
// MySQL, PostgreSQL and SQLite. Each command is run on one pinned connection
// and its result sets are buffered in the session's wire layouts so the
// engine can describe, bind and fetch them like a native result stream.
package sqlwire

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Provider names a backing database.
type Provider string

// Supported providers.
const (
	MySQL    Provider = "mysql"
	Postgres Provider = "postgres"
	SQLite   Provider = "sqlite"
)

// DefaultTextSize bounds unbounded text and image columns, like @@textsize.
const DefaultTextSize = 32768

// ParseProvider accepts the provider names and their common aliases.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3", "file":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported provider %q", name)
}

// DefaultPort returns the provider's usual port.
func (p Provider) DefaultPort() int {
	switch p {
	case MySQL:
		return 3306
	case Postgres:
		return 5432
	}
	return 0
}

// Config describes one session.
type Config struct {
	Provider Provider
	Host     string
	Port     int
	// Database is the database name, or the file path for SQLite.
	Database string
	User     string
	Password string
	// Charset is the client character set. Only MySQL accepts a non UTF-8
	// charset; text it returns is transcoded to UTF-8.
	Charset      string
	LoginTimeout time.Duration
	// Timeout bounds each command.
	Timeout  time.Duration
	TextSize int
	// Params are passed to the driver verbatim.
	Params map[string]string
}

func (c Config) withDefaults() Config {
	if c.Host == "" && c.Provider != SQLite {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = c.Provider.DefaultPort()
	}
	if c.TextSize <= 0 {
		c.TextSize = DefaultTextSize
	}
	return c
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParseURL reads a provider URL such as mysql://user:pw@host:3306/db,
// postgres://user@host/db?sslmode=disable or sqlite3://path/to/file.db.
// Query parameters other than charset, timeout, login_timeout and textsize
// become driver Params.
func ParseURL(raw string) (Config, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Config{}, fmt.Errorf("invalid url %q: missing scheme", raw)
	}
	p, err := ParseProvider(scheme)
	if err != nil {
		return Config{}, err
	}

	if p == SQLite {
		path, query, _ := strings.Cut(rest, "?")
		cfg := Config{Provider: SQLite, Database: path}
		values, err := url.ParseQuery(query)
		if err != nil {
			return Config{}, fmt.Errorf("invalid url query: %w", err)
		}
		if err := cfg.applyQuery(values); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid url: %w", err)
	}
	cfg := Config{
		Provider: p,
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
	}
	if port := u.Port(); port != "" {
		if cfg.Port, err = strconv.Atoi(port); err != nil {
			return Config{}, fmt.Errorf("invalid port %q: %w", port, err)
		}
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	if err := cfg.applyQuery(u.Query()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyQuery(values url.Values) error {
	for key := range values {
		v := values.Get(key)
		switch key {
		case "charset":
			c.Charset = v
		case "timeout", "login_timeout":
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			if key == "timeout" {
				c.Timeout = d
			} else {
				c.LoginTimeout = d
			}
		case "textsize":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid textsize %q: %w", v, err)
			}
			c.TextSize = n
		default:
			if c.Params == nil {
				c.Params = make(map[string]string)
			}
			c.Params[key] = v
		}
	}
	return nil
}

// mysqlConfig builds the go-sql-driver configuration. Multiple statements
// are enabled so a batch can return several result sets.
func (c Config) mysqlConfig() (*mysql.Config, error) {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.addr()
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.MultiStatements = true
	mc.Loc = time.UTC
	mc.Timeout = c.LoginTimeout
	mc.ReadTimeout = c.Timeout
	mc.WriteTimeout = c.Timeout

	if c.Charset != "" {
		cs, err := lookupCharset(c.Charset)
		if err != nil {
			return nil, err
		}
		if err := mc.Apply(mysql.Charset(cs.mysql, "")); err != nil {
			return nil, fmt.Errorf("failed to set charset: %w", err)
		}
	}
	for k, v := range c.Params {
		if mc.Params == nil {
			mc.Params = make(map[string]string)
		}
		mc.Params[k] = v
	}
	return mc, nil
}

// postgresDSN builds a lib/pq key=value connection string.
func (c Config) postgresDSN() (string, error) {
	if c.Charset != "" {
		cs, err := lookupCharset(c.Charset)
		if err != nil {
			return "", err
		}
		if cs.enc != nil {
			return "", fmt.Errorf("charset %q is not supported by postgres sessions", c.Charset)
		}
	}

	kv := map[string]string{
		"host":    c.Host,
		"port":    strconv.Itoa(c.Port),
		"sslmode": "disable",
	}
	if c.Database != "" {
		kv["dbname"] = c.Database
	}
	if c.User != "" {
		kv["user"] = c.User
	}
	if c.Password != "" {
		kv["password"] = c.Password
	}
	if c.LoginTimeout > 0 {
		kv["connect_timeout"] = strconv.Itoa(max(int(c.LoginTimeout/time.Second), 1))
	}
	for k, v := range c.Params {
		kv[k] = v
	}
	return joinPairs(kv, quotePQ), nil
}

// sqliteDSN returns the database path with go-sqlite3 options appended.
func (c Config) sqliteDSN() (string, error) {
	if c.Charset != "" {
		cs, err := lookupCharset(c.Charset)
		if err != nil {
			return "", err
		}
		if cs.enc != nil {
			return "", fmt.Errorf("charset %q is not supported by sqlite sessions", c.Charset)
		}
	}

	values := url.Values{}
	values.Set("_loc", "UTC")
	if c.Timeout > 0 {
		values.Set("_busy_timeout", strconv.FormatInt(c.Timeout.Milliseconds(), 10))
	}
	for k, v := range c.Params {
		values.Set(k, v)
	}
	path := c.Database
	if path == "" {
		path = ":memory:"
	}
	return path + "?" + values.Encode(), nil
}

func joinPairs(kv map[string]string, quote func(string) string) string {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quote(kv[k]))
	}
	return strings.Join(parts, " ")
}

func quotePQ(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
