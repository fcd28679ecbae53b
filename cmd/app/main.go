package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/config"
	"github.com/wichananm65/fakturera/internal/logging"
)

// app carries what every subcommand needs once the root has loaded it.
type app struct {
	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fakturera",
		Short: "Fakturera price list server and client",
		Long: `Fakturera serves a bilingual (English/Swedish) product price list behind a
login, and ships a command line client for it.

Server commands:
  serve   - Start the HTTP API
  migrate - Apply or inspect database migrations

Client commands:
  login, logout, products, edit, terms`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newProductsCmd(a),
		newEditCmd(a),
		newTermsCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
