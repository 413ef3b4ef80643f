// Package cli implements the cardsd command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cardsd",
	Short: "gocardsd - meme card marketplace ledger daemon",
	Long: `gocardsd is a ledger daemon for a collectible meme-card marketplace.
It processes card mints, listings and purchases against a replicated
ledger, enforces creator royalties on every sale, and serves the
resulting state over an HTTP JSON-RPC API.`,
	Version: "0.1.0-dev",
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
	rootCmd.PersistentFlags().Bool("standalone", false, "run with no peers")
}
