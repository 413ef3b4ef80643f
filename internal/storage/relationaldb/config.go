package relationaldb

import (
	"errors"
	"time"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains trade index connection settings.
type Config struct {
	// Driver is "sqlite" or "postgres"
	Driver string `json:"driver" mapstructure:"driver"`

	// ConnectionString is the driver-specific DSN. For sqlite this is
	// the database file path.
	ConnectionString string `json:"connection_string" mapstructure:"connection_string"`

	// Connection pool settings
	MaxOpenConns    int           `json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`

	// DefaultTimeout bounds individual queries
	DefaultTimeout time.Duration `json:"default_timeout" mapstructure:"default_timeout"`
}

// DefaultConfig returns a file-backed sqlite configuration.
func DefaultConfig(path string) Config {
	return Config{
		Driver:           DriverSQLite,
		ConnectionString: path,
		MaxOpenConns:     4,
		MaxIdleConns:     2,
		ConnMaxLifetime:  time.Hour,
		DefaultTimeout:   5 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.New("relationaldb: driver must be sqlite or postgres")
	}
	if c.ConnectionString == "" {
		return errors.New("relationaldb: connection string is required")
	}
	return nil
}
