// Package cli defines the breadbot command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"breadbot/internal/config"
	"breadbot/internal/domain"
	"breadbot/internal/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "breadbot",
	Short: "Chat bot running a small bread economy",
	Long: `breadbot runs a group-chat economy: players claim bread on a
cooldown, rob each other with a bit of luck, and compete on a per-group
ranking. State lives in a JSON file or SQLite database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "breadbot.toml", "path to the TOML config file")
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore builds the configured ledger store. The caller must call
// the returned close function.
func openStore(cfg config.Storage) (domain.Store, func() error, error) {
	switch cfg.Backend {
	case "", "file":
		db, err := storage.NewFileDB(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() error { return nil }, nil
	case "sqlite":
		db, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (want file or sqlite)", cfg.Backend)
	}
}
