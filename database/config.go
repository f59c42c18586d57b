package database

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	sqliteMemory = ":memory:"
)

// Config defines the configuration options for database connections.
type Config struct {
	// Driver selects the backend: "postgres" or "sqlite".
	Driver string `yaml:"driver" default:"postgres" validate:"oneof=postgres sqlite"`

	// Debug logs every query. Failed queries are logged regardless.
	Debug bool `yaml:"debug" default:"false"`

	// SlowQueryThreshold logs queries at warn level when they take at least
	// this long. Zero disables it.
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" default:"200ms"`

	// Schema overrides the schema that repositories qualify table names with.
	// Defaults to the search path for postgres and "main" for sqlite.
	Schema string `yaml:"schema"`

	// Host specifies the PostgreSQL server hostname or IP address.
	Host string `yaml:"host"     validate:"required_if=Driver postgres"`
	// Port specifies the PostgreSQL server port number.
	Port int `yaml:"port"     validate:"required_if=Driver postgres"`
	// User specifies the database user name.
	User string `yaml:"user"     validate:"required_if=Driver postgres"`
	// Password specifies the database user password.
	Password string `yaml:"password" validate:"required_if=Driver postgres" mask:"true"`
	// Database specifies the database name to connect to.
	Database string `yaml:"database" validate:"required_if=Driver postgres"`

	// SSLMode specifies the SSL mode for the connection.
	// Valid values: disable, allow, prefer, require, verify-ca, verify-full.
	SSLMode string `yaml:"sslmode"         default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	// SearchPath specifies the schema search path.
	SearchPath string `yaml:"search_path"     default:"public"`
	// ConnectTimeout specifies the maximum time to wait when connecting to the server.
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`

	// PoolMaxConns specifies the maximum number of connections in the pool.
	PoolMaxConns int32 `yaml:"pool_max_conns"          default:"4"`
	// PoolMinConns specifies the minimum number of connections in the pool.
	PoolMinConns int32 `yaml:"pool_min_conns"          default:"1"`
	// PoolMaxConnLifetime specifies the maximum lifetime of a connection.
	PoolMaxConnLifetime time.Duration `yaml:"pool_max_conn_lifetime"  default:"1h"`
	// PoolMaxConnIdleTime specifies how long a connection can remain idle in the pool.
	PoolMaxConnIdleTime time.Duration `yaml:"pool_max_conn_idle_time" default:"30m"`

	// Path is the sqlite database file. ":memory:" keeps the database in memory
	// for the lifetime of the connection.
	Path string `yaml:"path" default:":memory:"`
	// BusyTimeout is how long sqlite waits on a locked database file.
	BusyTimeout time.Duration `yaml:"busy_timeout" default:"5s"`
}

// SchemaName returns the schema repositories should qualify tables with.
func (c Config) SchemaName() string {
	if c.Schema != "" {
		return c.Schema
	}
	if c.Driver == DriverSQLite {
		return "main"
	}
	if c.SearchPath != "" {
		return c.SearchPath
	}
	return "public"
}

// dsn returns a PostgreSQL connection string built from the configuration.
func (c Config) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s connect_timeout=%d",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
		c.SearchPath,
		int(c.ConnectTimeout.Seconds()),
	)
}

// migrationURL returns the postgres connection in URL form with the given scheme.
func (c Config) migrationURL(scheme string) string {
	u := &url.URL{
		Scheme: scheme,
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.SearchPath)
	q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

// sqliteDSN returns the modernc sqlite data source name.
func (c Config) sqliteDSN() string {
	if c.Path == "" || c.Path == sqliteMemory {
		return sqliteMemory
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + c.Path + "?" + q.Encode()
}
