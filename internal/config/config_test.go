package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	"github.com/solcards/gocardsd/internal/storage/relationaldb"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cardsd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.True(t, cfg.Standalone)
	require.Equal(t, BackendMemory, cfg.NodeDB.Type)
	require.Equal(t, "127.0.0.1:5005", cfg.Server.ListenAddr())
	require.False(t, cfg.TradeIndex.Enabled)

	g := cfg.GenesisParams()
	require.Equal(t, genesis.DefaultConfig().BaseFee, g.BaseFee)
	require.Equal(t, genesis.DefaultConfig().TotalSupply, g.TotalSupply)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
standalone = true
data_dir = "/var/lib/cardsd"

[server]
ip = "0.0.0.0"
port = 6006

[node_db]
type = "pebble"
path = "nodestore"
compression = "none"

[genesis]
base_fee = 10

[trade_index]
enabled = true
driver = "sqlite"
connection_string = "trades.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:6006", cfg.Server.ListenAddr())
	require.Equal(t, BackendPebble, cfg.NodeDB.Type)
	require.Equal(t, "/var/lib/cardsd/nodestore", cfg.NodeDBPath())
	require.Equal(t, uint64(10), cfg.GenesisParams().BaseFee)
	require.Equal(t, "none", cfg.NodestoreParams().Compressor)

	trades := cfg.TradeIndexParams()
	require.Equal(t, relationaldb.DriverSQLite, trades.Driver)
	require.Equal(t, "/var/lib/cardsd/trades.db", trades.ConnectionString)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CARDSD_SERVER_PORT", "7100")
	t.Setenv("CARDSD_NODE_DB_TYPE", "leveldb")
	t.Setenv("CARDSD_DATA_DIR", "/tmp/cardsd")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7100, cfg.Server.Port)
	require.Equal(t, BackendLevelDB, cfg.NodeDB.Type)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad backend", func(c *Config) { c.NodeDB.Type = "rocksdb" }},
		{"zero base fee", func(c *Config) { c.Genesis.BaseFee = 0 }},
		{"disk backend without data dir", func(c *Config) {
			c.NodeDB.Type = BackendPebble
			c.DataDir = ""
			c.NodeDB.Path = "nodestore"
		}},
		{"bad trade index driver", func(c *Config) {
			c.TradeIndex.Enabled = true
			c.TradeIndex.Database.Driver = "oracle"
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
