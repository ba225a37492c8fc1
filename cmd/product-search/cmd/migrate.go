package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/product-search/internal/config"
	"github.com/donaldgifford/product-search/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run snapshot store migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Snapshots.Backend == config.BackendNone {
		log.Info("snapshots disabled, nothing to migrate")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	log.Info("running migrations", "backend", cfg.Snapshots.Backend)

	// openStore migrates before returning.
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	st.Close()

	log.Info("migrations complete")
	return nil
}
