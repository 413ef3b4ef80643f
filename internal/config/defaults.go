package config

import (
	"github.com/spf13/viper"

	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	"github.com/solcards/gocardsd/internal/storage/relationaldb"
)

// setDefaults installs the built-in defaults. Every key the Config
// struct knows has a default so a bare config file still yields a
// runnable node.
func setDefaults(v *viper.Viper) {
	g := genesis.DefaultConfig()

	v.SetDefault("standalone", true)
	v.SetDefault("network_id", 0)
	v.SetDefault("data_dir", "")

	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.port", 5005)

	v.SetDefault("node_db.type", BackendMemory)
	v.SetDefault("node_db.path", "nodestore")
	v.SetDefault("node_db.cache_size", 16384)
	v.SetDefault("node_db.compression", "lz4")
	v.SetDefault("node_db.compression_threshold", 128)

	v.SetDefault("genesis.total_supply", g.TotalSupply)
	v.SetDefault("genesis.base_fee", g.BaseFee)
	v.SetDefault("genesis.reserve_base", g.ReserveBase)
	v.SetDefault("genesis.reserve_increment", g.ReserveIncrement)

	v.SetDefault("trade_index.enabled", false)
	v.SetDefault("trade_index.driver", relationaldb.DriverSQLite)
	v.SetDefault("trade_index.connection_string", "trades.db")
	v.SetDefault("trade_index.max_open_conns", 4)
	v.SetDefault("trade_index.max_idle_conns", 2)
	v.SetDefault("trade_index.conn_max_lifetime", "1h")
	v.SetDefault("trade_index.default_timeout", "5s")
}
