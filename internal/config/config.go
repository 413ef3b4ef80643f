// Package config loads the daemon configuration from a TOML file,
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	"github.com/solcards/gocardsd/internal/storage/nodestore"
	"github.com/solcards/gocardsd/internal/storage/relationaldb"
)

// Supported node database backends.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Config is the full daemon configuration.
type Config struct {
	// Standalone runs the node without peers; ledgers advance via
	// the ledger_accept RPC.
	Standalone bool `mapstructure:"standalone"`

	// NetworkID identifies the network this node serves.
	NetworkID uint32 `mapstructure:"network_id"`

	// DataDir is the base directory for all on-disk state.
	DataDir string `mapstructure:"data_dir"`

	Server     ServerConfig     `mapstructure:"server"`
	NodeDB     NodeDBConfig     `mapstructure:"node_db"`
	Genesis    GenesisConfig    `mapstructure:"genesis"`
	TradeIndex TradeIndexConfig `mapstructure:"trade_index"`
}

// ServerConfig holds the RPC listener settings.
type ServerConfig struct {
	IP   string `mapstructure:"ip"`
	Port int    `mapstructure:"port"`
}

// ListenAddr returns the address the RPC server binds to.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.IP, s.Port)
}

// NodeDBConfig holds the ledger store settings.
type NodeDBConfig struct {
	// Type selects the key-value backend: pebble, leveldb or memory.
	Type string `mapstructure:"type"`

	// Path is the backend directory. Relative paths resolve against
	// DataDir. Ignored by the memory backend.
	Path string `mapstructure:"path"`

	// CacheSize is the number of decoded values kept in memory.
	CacheSize int `mapstructure:"cache_size"`

	// Compression names the value compressor ("lz4" or "none").
	Compression string `mapstructure:"compression"`

	// CompressionThreshold is the minimum value size, in bytes,
	// worth compressing.
	CompressionThreshold int `mapstructure:"compression_threshold"`
}

// GenesisConfig holds the ledger chain parameters.
type GenesisConfig struct {
	// TotalSupply is the lamport supply created at genesis.
	TotalSupply uint64 `mapstructure:"total_supply"`

	// BaseFee is the reference transaction fee in lamports.
	BaseFee uint64 `mapstructure:"base_fee"`

	// ReserveBase is the base account reserve in lamports.
	ReserveBase uint64 `mapstructure:"reserve_base"`

	// ReserveIncrement is the per-object reserve in lamports.
	ReserveIncrement uint64 `mapstructure:"reserve_increment"`
}

// TradeIndexConfig holds the trade index settings.
type TradeIndexConfig struct {
	// Enabled turns the trade index on.
	Enabled bool `mapstructure:"enabled"`

	// Database holds the connection settings. For sqlite a relative
	// connection string resolves against DataDir.
	Database relationaldb.Config `mapstructure:",squash"`
}

// GenesisParams converts the genesis section into the ledger's
// genesis configuration.
func (c *Config) GenesisParams() genesis.Config {
	g := genesis.DefaultConfig()
	if c.Genesis.TotalSupply != 0 {
		g.TotalSupply = c.Genesis.TotalSupply
	}
	if c.Genesis.BaseFee != 0 {
		g.BaseFee = c.Genesis.BaseFee
	}
	if c.Genesis.ReserveBase != 0 {
		g.ReserveBase = c.Genesis.ReserveBase
	}
	if c.Genesis.ReserveIncrement != 0 {
		g.ReserveIncrement = c.Genesis.ReserveIncrement
	}
	return g
}

// NodeDBPath returns the resolved backend directory.
func (c *Config) NodeDBPath() string {
	if filepath.IsAbs(c.NodeDB.Path) {
		return c.NodeDB.Path
	}
	return filepath.Join(c.DataDir, c.NodeDB.Path)
}

// NodestoreParams converts the node_db section into a nodestore
// configuration.
func (c *Config) NodestoreParams() nodestore.Config {
	cfg := nodestore.DefaultConfig()
	if c.NodeDB.CacheSize != 0 {
		cfg.CacheSize = c.NodeDB.CacheSize
	}
	if c.NodeDB.Compression != "" {
		cfg.Compressor = c.NodeDB.Compression
	}
	if c.NodeDB.CompressionThreshold != 0 {
		cfg.CompressionThreshold = c.NodeDB.CompressionThreshold
	}
	return cfg
}

// TradeIndexParams returns the resolved trade index connection
// settings.
func (c *Config) TradeIndexParams() relationaldb.Config {
	cfg := c.TradeIndex.Database
	if cfg.Driver == relationaldb.DriverSQLite && !filepath.IsAbs(cfg.ConnectionString) {
		cfg.ConnectionString = filepath.Join(c.DataDir, cfg.ConnectionString)
	}
	return cfg
}

// Validate checks the complete configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}

	switch c.NodeDB.Type {
	case BackendPebble, BackendLevelDB, BackendMemory:
	default:
		return fmt.Errorf("config: unknown node_db type %q", c.NodeDB.Type)
	}

	if c.NodeDB.Type != BackendMemory && c.DataDir == "" && !filepath.IsAbs(c.NodeDB.Path) {
		return errors.New("config: data_dir is required for on-disk backends")
	}

	if c.Genesis.BaseFee == 0 {
		return errors.New("config: base_fee must be positive")
	}

	if c.TradeIndex.Enabled {
		cfg := c.TradeIndexParams()
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	return nil
}
