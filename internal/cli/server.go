package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/solcards/gocardsd/internal/config"
	"github.com/solcards/gocardsd/internal/node"
	"github.com/solcards/gocardsd/internal/rpc"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb/leveldb"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb/memory"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb/pebble"
	"github.com/solcards/gocardsd/internal/storage/nodestore"
	"github.com/solcards/gocardsd/internal/storage/relationaldb"
	"github.com/solcards/gocardsd/internal/storage/relationaldb/sqldb"
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the card marketplace daemon",
	Long: `Start the gocardsd server: the transaction engine, the ledger
store and the HTTP JSON-RPC API.

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, args)
	}

	serverCmd.Flags().Int("port", 0, "override the RPC listen port")
	serverCmd.Flags().String("bind", "", "override the RPC bind address")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}

	nodeCfg := node.Config{
		Standalone: cfg.Standalone,
		Genesis:    cfg.GenesisParams(),
		NetworkID:  cfg.NetworkID,
	}

	if backend != nil {
		store, err := nodestore.New(backend, cfg.NodestoreParams())
		if err != nil {
			return fmt.Errorf("open nodestore: %w", err)
		}
		defer store.Close()
		nodeCfg.NodeStore = store
	}

	var tradeIndex relationaldb.Database
	if cfg.TradeIndex.Enabled {
		tradeIndex, err = sqldb.NewDatabase(cfg.TradeIndexParams())
		if err != nil {
			return fmt.Errorf("open trade index: %w", err)
		}
		if err := tradeIndex.Open(cmd.Context()); err != nil {
			return fmt.Errorf("open trade index: %w", err)
		}
		defer tradeIndex.Close()
		nodeCfg.TradeIndex = tradeIndex
	}

	svc := node.New(nodeCfg)
	if err := svc.Start(); err != nil {
		return fmt.Errorf("start ledger service: %w", err)
	}

	rpcServer := rpc.NewServer(svc, 30*time.Second)

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"gocardsd"}`))
	})

	listenAddr := cfg.Server.ListenAddr()
	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: mux,
	}

	if !quiet {
		fmt.Println("Starting gocardsd")
		fmt.Printf("  - HTTP JSON-RPC: http://%s/\n", listenAddr)
		fmt.Printf("  - Health check:  http://%s/health\n", listenAddr)
		fmt.Printf("  - Master account: %s\n", svc.MasterAccount())
		if cfg.Standalone {
			fmt.Println("  - Mode: standalone (advance ledgers with ledger_accept)")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadServerConfig loads the configuration and applies flag overrides.
func loadServerConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if standalone, _ := cmd.Root().PersistentFlags().GetBool("standalone"); standalone {
		cfg.Standalone = true
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
		cfg.Server.IP = bind
	}

	return cfg, cfg.Validate()
}

// openBackend opens the configured key-value backend. A nil backend
// means ledgers stay in memory only.
func openBackend(cfg *config.Config) (keyValueDb.DB, error) {
	switch cfg.NodeDB.Type {
	case config.BackendPebble:
		db, err := pebble.Open(cfg.NodeDBPath())
		if err != nil {
			return nil, fmt.Errorf("open pebble backend: %w", err)
		}
		return db, nil
	case config.BackendLevelDB:
		db, err := leveldb.Open(cfg.NodeDBPath())
		if err != nil {
			return nil, fmt.Errorf("open leveldb backend: %w", err)
		}
		return db, nil
	case config.BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown node_db type %q", cfg.NodeDB.Type)
	}
}
